package lefdef

import (
	"io"
	"strconv"
	"strings"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// Point is a LEF/DEF coordinate in microns (LEF) or database units (DEF).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShapeKind names the geometry statement a macro shape came from.
type ShapeKind string

const (
	ShapeRect    ShapeKind = "rect"
	ShapePolygon ShapeKind = "polygon"
	ShapePath    ShapeKind = "path"
)

// Tech is the content of one LEF file.
type Tech struct {
	// DBU is the DATABASE MICRONS value, zero when the file has no UNITS.
	DBU    int     `json:"dbu,omitempty"`
	Layers []Layer `json:"layers,omitempty"`
	Macros []Macro `json:"macros,omitempty"`
}

// Layer is a LEF LAYER definition.
type Layer struct {
	Name  string  `json:"name"`
	Type  string  `json:"type,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Macro is a LEF MACRO: a cell footprint with pin and obstruction geometry.
type Macro struct {
	Name   string       `json:"name"`
	Class  string       `json:"class,omitempty"`
	Origin Point        `json:"origin"`
	Size   Point        `json:"size"`
	Pins   []Pin        `json:"pins,omitempty"`
	Shapes []MacroShape `json:"shapes,omitempty"`
}

// Pin is a macro pin. Use is the USE value, e.g. SIGNAL or POWER.
type Pin struct {
	Name string `json:"name"`
	Use  string `json:"use,omitempty"`
}

// MacroShape is one RECT, POLYGON or PATH statement of a PORT or OBS block.
// Pin is empty for obstructions. Rects hold their two corners.
type MacroShape struct {
	Layer  string    `json:"layer"`
	Pin    string    `json:"pin,omitempty"`
	Kind   ShapeKind `json:"kind"`
	Points []Point   `json:"points"`
	Width  float64   `json:"width,omitempty"`
}

// Macro returns the first macro called name.
func (t *Tech) Macro(name string) (*Macro, bool) {
	for i := range t.Macros {
		if t.Macros[i].Name == name {
			return &t.Macros[i], true
		}
	}
	return nil, false
}

// lefBlocks are named top-level blocks closed by END <name>.
var lefBlocks = map[string]bool{
	"SITE": true, "VIA": true, "VIARULE": true, "NONDEFAULTRULE": true,
}

// lefSections are top-level sections closed by END <keyword>.
var lefSections = map[string]bool{
	"PROPERTYDEFINITIONS": true, "SPACING": true, "IRDROP": true,
	"NOISETABLE": true, "CORRECTIONTABLE": true, "ARRAY": true,
}

// ParseLEF reads a LEF file. Unknown statements and blocks are skipped.
// Syntax errors are reported with ErrCodeParse and the file and position
// of the offending token.
func ParseLEF(name string, r io.Reader) (*Tech, error) {
	s, err := scan(name, r)
	if err != nil {
		return nil, err
	}
	p := lefParser{s: s, tech: &Tech{}}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.tech, nil
}

type lefParser struct {
	s    *scanner
	tech *Tech
}

func (p *lefParser) parse() error {
	s := p.s
	for !s.done() {
		kw, err := s.word()
		if err != nil {
			return err
		}
		kw = strings.ToUpper(kw)
		switch {
		case kw == "END":
			if s.accept("LIBRARY") {
				return nil
			}
			return s.errorf("unexpected END")
		case kw == "UNITS":
			err = p.units()
		case kw == "LAYER":
			err = p.layer()
		case kw == "MACRO":
			err = p.macro()
		case kw == "BEGINEXT":
			err = s.skipUntil("ENDEXT")
		case lefBlocks[kw]:
			var name string
			if name, err = s.word(); err == nil {
				err = s.skipBlock(name)
			}
		case lefSections[kw]:
			err = s.skipBlock(kw)
		default:
			err = s.skipStatement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *lefParser) units() error {
	s := p.s
	for !s.accept("END") {
		if s.done() {
			return s.errorf("missing END UNITS")
		}
		if s.accept("DATABASE") {
			if err := s.expect("MICRONS"); err != nil {
				return err
			}
			n, err := s.integer()
			if err != nil {
				return err
			}
			if n <= 0 {
				return s.errorf("DATABASE MICRONS must be positive, got %d", n)
			}
			p.tech.DBU = int(n)
		}
		if err := s.skipStatement(); err != nil {
			return err
		}
	}
	return s.expect("UNITS")
}

func (p *lefParser) layer() error {
	s := p.s
	name, err := s.word()
	if err != nil {
		return err
	}
	l := Layer{Name: name}
	for {
		if s.done() {
			return s.errorf("missing END %s", name)
		}
		if s.accept("END") {
			if err := s.expect(name); err != nil {
				return err
			}
			break
		}
		args, err := s.rest()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			continue
		}
		switch strings.ToUpper(args[0]) {
		case "TYPE":
			if len(args) > 1 {
				l.Type = strings.ToUpper(args[1])
			}
		case "WIDTH":
			if len(args) > 1 {
				if l.Width, err = parseFloat(s, args[1]); err != nil {
					return err
				}
			}
		}
	}
	p.tech.Layers = append(p.tech.Layers, l)
	return nil
}

func (p *lefParser) macro() error {
	s := p.s
	name, err := s.word()
	if err != nil {
		return err
	}
	m := Macro{Name: name}
	for {
		if s.done() {
			return s.errorf("missing END %s", name)
		}
		if s.accept("END") {
			if err := s.expect(name); err != nil {
				return err
			}
			break
		}
		switch {
		case s.accept("CLASS"):
			args, err := s.rest()
			if err != nil {
				return err
			}
			m.Class = strings.ToUpper(strings.Join(args, " "))
		case s.accept("ORIGIN"):
			if m.Origin, err = p.point(); err != nil {
				return err
			}
			err = s.expect(";")
		case s.accept("SIZE"):
			if m.Size.X, err = s.number(); err != nil {
				return err
			}
			if err = s.expect("BY"); err != nil {
				return err
			}
			if m.Size.Y, err = s.number(); err != nil {
				return err
			}
			err = s.expect(";")
		case s.accept("PIN"):
			err = p.pin(&m)
		case s.accept("OBS"):
			err = p.geometry(&m, "")
		case s.accept("DENSITY"):
			err = s.skipUntil("END")
		default:
			err = s.skipStatement()
		}
		if err != nil {
			return err
		}
	}
	p.tech.Macros = append(p.tech.Macros, m)
	return nil
}

func (p *lefParser) pin(m *Macro) error {
	s := p.s
	name, err := s.word()
	if err != nil {
		return err
	}
	pin := Pin{Name: name}
	for {
		if s.done() {
			return s.errorf("missing END %s", name)
		}
		if s.accept("END") {
			if err := s.expect(name); err != nil {
				return err
			}
			break
		}
		switch {
		case s.accept("PORT"):
			err = p.geometry(m, name)
		case s.accept("USE"):
			var args []string
			if args, err = s.rest(); err == nil && len(args) > 0 {
				pin.Use = strings.ToUpper(args[0])
			}
		default:
			err = s.skipStatement()
		}
		if err != nil {
			return err
		}
	}
	m.Pins = append(m.Pins, pin)
	return nil
}

// geometry reads the statements of a PORT or OBS block up to its bare END.
func (p *lefParser) geometry(m *Macro, pin string) error {
	s := p.s
	layer := ""
	width := 0.0
	for !s.accept("END") {
		if s.done() {
			return s.errorf("missing END")
		}
		var err error
		switch {
		case s.accept("LAYER"):
			var args []string
			if args, err = s.rest(); err == nil {
				if len(args) == 0 {
					return s.errorf("LAYER without a name")
				}
				layer, width = args[0], 0
			}
		case s.accept("WIDTH"):
			if width, err = s.number(); err == nil {
				err = s.expect(";")
			}
		case s.accept("RECT"):
			err = p.shape(m, pin, layer, ShapeRect, 0)
		case s.accept("POLYGON"):
			err = p.shape(m, pin, layer, ShapePolygon, 0)
		case s.accept("PATH"):
			err = p.shape(m, pin, layer, ShapePath, width)
		default:
			err = s.skipStatement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *lefParser) shape(m *Macro, pin, layer string, kind ShapeKind, width float64) error {
	s := p.s
	if layer == "" {
		return s.errorf("%s before any LAYER in macro %s", strings.ToUpper(string(kind)), m.Name)
	}
	if s.accept("MASK") {
		if _, err := s.integer(); err != nil {
			return err
		}
	}
	if s.is("ITERATE") {
		return s.skipStatement()
	}
	var pts []Point
	for !s.accept(";") {
		if s.is("ITERATE") {
			// Stepped copies are not modelled; keep the first one.
			if err := s.skipStatement(); err != nil {
				return err
			}
			break
		}
		pt, err := p.point()
		if err != nil {
			return err
		}
		pts = append(pts, pt)
	}
	switch {
	case kind == ShapeRect && len(pts) != 2:
		return s.errorf("RECT needs 2 points, got %d", len(pts))
	case kind == ShapePolygon && len(pts) < 3:
		return s.errorf("POLYGON needs at least 3 points, got %d", len(pts))
	case kind == ShapePath && len(pts) < 1:
		return s.errorf("PATH needs at least 1 point")
	}
	m.Shapes = append(m.Shapes, MacroShape{Layer: layer, Pin: pin, Kind: kind, Points: pts, Width: width})
	return nil
}

// point reads "x y", optionally wrapped in parentheses.
func (p *lefParser) point() (Point, error) {
	s := p.s
	paren := s.accept("(")
	x, err := s.number()
	if err != nil {
		return Point{}, err
	}
	y, err := s.number()
	if err != nil {
		return Point{}, err
	}
	if paren {
		if err := s.expect(")"); err != nil {
			return Point{}, err
		}
	}
	return Point{X: x, Y: y}, nil
}

func parseFloat(s *scanner, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeParse, err, "invalid number %q", v).For(s.file)
	}
	return f, nil
}
