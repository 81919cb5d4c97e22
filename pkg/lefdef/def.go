package lefdef

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Orient is a DEF component orientation: N, S, E, W, FN, FS, FE or FW.
type Orient string

var orients = map[Orient]bool{
	"N": true, "S": true, "E": true, "W": true,
	"FN": true, "FS": true, "FE": true, "FW": true,
}

// Design is the content of a DEF file. Coordinates are in database units
// of the design's UNITS DISTANCE MICRONS value.
type Design struct {
	Name       string      `json:"name"`
	DBU        int         `json:"dbu"`
	DieArea    []Point     `json:"die_area,omitempty"`
	Components []Component `json:"components,omitempty"`
	Nets       []Net       `json:"nets,omitempty"`
}

// Component is a placed macro instance.
type Component struct {
	Name   string `json:"name"`
	Macro  string `json:"macro"`
	Status string `json:"status"`
	At     Point  `json:"at"`
	Orient Orient `json:"orient"`
}

// Net is a regular or special net with its routed wires. Use is the
// USE value, e.g. SIGNAL, POWER or GROUND.
type Net struct {
	Name    string `json:"name"`
	Special bool   `json:"special,omitempty"`
	Use     string `json:"use,omitempty"`
	Wires   []Wire `json:"wires,omitempty"`
}

// Constant reports whether the net is a power or ground supply.
func (n Net) Constant() bool {
	return n.Use == "POWER" || n.Use == "GROUND"
}

// Wire is one routed segment chain on a layer. Width is zero for regular
// nets, which take the default width of the layer.
type Wire struct {
	Layer  string  `json:"layer"`
	Width  float64 `json:"width,omitempty"`
	Points []Point `json:"points"`
}

// defSections are sections that are skipped up to END <keyword>.
var defSections = map[string]bool{
	"VIAS": true, "PINS": true, "BLOCKAGES": true, "REGIONS": true,
	"GROUPS": true, "FILLS": true, "SCANCHAINS": true, "NONDEFAULTRULES": true,
	"STYLES": true, "PINPROPERTIES": true, "PROPERTYDEFINITIONS": true,
	"SLOTS": true,
}

// ParseDEF reads a DEF file. Unplaced components are dropped with a warning
// on logger, which may be nil.
func ParseDEF(name string, r io.Reader, logger *log.Logger) (*Design, error) {
	s, err := scan(name, r)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	p := defParser{s: s, logger: logger, design: &Design{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	if p.design.Name == "" {
		return nil, s.errorf("missing DESIGN statement")
	}
	if p.design.DBU == 0 {
		p.design.DBU = 100
	}
	return p.design, nil
}

type defParser struct {
	s      *scanner
	logger *log.Logger
	design *Design
}

func (p *defParser) parse() error {
	s := p.s
	for !s.done() {
		kw, err := s.word()
		if err != nil {
			return err
		}
		kw = strings.ToUpper(kw)
		switch {
		case kw == "END":
			if s.accept("DESIGN") {
				return nil
			}
			return s.errorf("unexpected END")
		case kw == "DESIGN":
			var args []string
			if args, err = s.rest(); err == nil {
				if len(args) != 1 {
					return s.errorf("DESIGN takes one name")
				}
				p.design.Name = args[0]
			}
		case kw == "UNITS":
			err = p.units()
		case kw == "DIEAREA":
			err = p.dieArea()
		case kw == "COMPONENTS":
			err = p.components()
		case kw == "NETS":
			err = p.nets(false)
		case kw == "SPECIALNETS":
			err = p.nets(true)
		case defSections[kw]:
			err = s.skipBlock(kw)
		default:
			err = s.skipStatement()
		}
		if err != nil {
			return err
		}
	}
	return s.errorf("missing END DESIGN")
}

func (p *defParser) units() error {
	s := p.s
	for _, kw := range []string{"DISTANCE", "MICRONS"} {
		if err := s.expect(kw); err != nil {
			return err
		}
	}
	n, err := s.integer()
	if err != nil {
		return err
	}
	if n <= 0 {
		return s.errorf("UNITS DISTANCE MICRONS must be positive, got %d", n)
	}
	p.design.DBU = int(n)
	return s.expect(";")
}

func (p *defParser) dieArea() error {
	s := p.s
	for !s.accept(";") {
		pt, err := p.point(nil)
		if err != nil {
			return err
		}
		p.design.DieArea = append(p.design.DieArea, pt)
	}
	if n := len(p.design.DieArea); n != 2 && n < 4 {
		return s.errorf("DIEAREA needs 2 or at least 4 points, got %d", n)
	}
	return nil
}

// point reads "( x y )". A "*" repeats the matching axis of prev. Any
// trailing extension value before ")" is ignored.
func (p *defParser) point(prev *Point) (Point, error) {
	s := p.s
	if err := s.expect("("); err != nil {
		return Point{}, err
	}
	var pt Point
	for i, v := range []*float64{&pt.X, &pt.Y} {
		if s.accept("*") {
			if prev == nil {
				return Point{}, s.errorf("\"*\" without a previous point")
			}
			*v = [2]float64{prev.X, prev.Y}[i]
			continue
		}
		n, err := s.number()
		if err != nil {
			return Point{}, err
		}
		*v = n
	}
	if !s.is(")") {
		if _, err := s.word(); err != nil {
			return Point{}, err
		}
	}
	return pt, s.expect(")")
}

// count reads the "n ;" after a section keyword.
func (p *defParser) count() error {
	if _, err := p.s.integer(); err != nil {
		return err
	}
	return p.s.expect(";")
}

func (p *defParser) components() error {
	s := p.s
	if err := p.count(); err != nil {
		return err
	}
	for !s.accept("END") {
		if err := s.expect("-"); err != nil {
			return err
		}
		name, err := s.word()
		if err != nil {
			return err
		}
		macro, err := s.word()
		if err != nil {
			return err
		}
		c := Component{Name: name, Macro: macro}
		for !s.accept(";") {
			if s.done() {
				return s.errorf("missing \";\" after component %s", name)
			}
			if !s.accept("+") {
				s.next()
				continue
			}
			switch kw := strings.ToUpper(s.next().Value); kw {
			case "PLACED", "FIXED", "COVER":
				c.Status = kw
				if c.At, err = p.point(nil); err != nil {
					return err
				}
				o, err := s.word()
				if err != nil {
					return err
				}
				c.Orient = Orient(strings.ToUpper(o))
				if !orients[c.Orient] {
					return s.errorf("unknown orientation %q for component %s", o, name)
				}
			case "UNPLACED":
				c.Status = kw
			}
		}
		if c.Orient == "" {
			p.logger.Warn("skipping unplaced component", "component", name, "macro", macro)
			continue
		}
		p.design.Components = append(p.design.Components, c)
	}
	return s.expect("COMPONENTS")
}

func (p *defParser) nets(special bool) error {
	s := p.s
	section := "NETS"
	if special {
		section = "SPECIALNETS"
	}
	if err := p.count(); err != nil {
		return err
	}
	for !s.accept("END") {
		if err := s.expect("-"); err != nil {
			return err
		}
		name, err := s.word()
		if err != nil {
			return err
		}
		n := Net{Name: name, Special: special}
		if err := p.net(&n); err != nil {
			return err
		}
		p.design.Nets = append(p.design.Nets, n)
	}
	return s.expect(section)
}

// net reads the body of one net up to its ";".
func (p *defParser) net(n *Net) error {
	s := p.s
	for !s.accept(";") {
		if s.done() {
			return s.errorf("missing \";\" after net %s", n.Name)
		}
		switch {
		case s.is("("):
			// Pin connection: ( component pin [+ SYNTHESIZED] ).
			if err := s.skipUntil(")"); err != nil {
				return err
			}
		case s.accept("+"):
			kw := strings.ToUpper(s.next().Value)
			switch kw {
			case "ROUTED", "FIXED", "COVER", "NOSHIELD":
				if err := p.routing(n); err != nil {
					return err
				}
			case "USE":
				u, err := s.word()
				if err != nil {
					return err
				}
				n.Use = strings.ToUpper(u)
			}
		default:
			s.next()
		}
	}
	return nil
}

// routing reads a wiring statement: segments separated by NEW, each a layer,
// a width for special nets and a chain of points with optional via names.
// It stops before the "+" or ";" that ends the statement.
func (p *defParser) routing(n *Net) error {
	s := p.s
	for {
		layer, err := s.word()
		if err != nil {
			return err
		}
		w := Wire{Layer: layer}
		if n.Special && !s.is("(") && !s.is("+") {
			if w.Width, err = s.number(); err != nil {
				return err
			}
		}
		for !s.is("NEW") && !s.is(";") {
			if s.done() {
				return s.errorf("unterminated wiring in net %s", n.Name)
			}
			if s.is("+") {
				// SHAPE, STYLE and MASK options sit inside a special wire.
				if !isWireOption(s.lookahead(1).Value) {
					break
				}
				s.next()
				s.next()
				s.next()
				continue
			}
			switch {
			case s.is("("):
				var prev *Point
				if k := len(w.Points); k > 0 {
					prev = &w.Points[k-1]
				}
				pt, err := p.point(prev)
				if err != nil {
					return err
				}
				w.Points = append(w.Points, pt)
			case s.accept("RECT"):
				if err := s.skipUntil(")"); err != nil {
					return err
				}
			case s.accept("VIRTUAL"):
				if _, err := p.point(nil); err != nil {
					return err
				}
			case s.accept("MASK"), s.accept("STYLE"), s.accept("TAPERRULE"):
				s.next()
			default:
				// Via names and TAPER.
				s.next()
			}
		}
		if len(w.Points) > 0 {
			n.Wires = append(n.Wires, w)
		}
		if !s.accept("NEW") {
			return nil
		}
	}
}

func isWireOption(kw string) bool {
	switch strings.ToUpper(kw) {
	case "SHAPE", "STYLE", "MASK":
		return true
	}
	return false
}
