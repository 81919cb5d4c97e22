package gds

import (
	"fmt"
	"io"
	"os"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/geom"
)

// Load reads a library from a file.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path).For(path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lib, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lib, nil
}

// Read decodes a library from a stream. Reading stops at ENDLIB; trailing
// padding is ignored.
func Read(r io.Reader) (*Library, error) {
	rr := newRecordReader(r)
	lib := &Library{}

	rec, err := rr.expect(recHeader)
	if err != nil {
		return nil, err
	}
	if v := rec.int16s(); len(v) > 0 {
		lib.Version = v[0]
	}

	if rec, err = rr.expect(recBgnLib); err != nil {
		return nil, err
	}
	lib.Dates = rec.int16s()

	for {
		if rec, err = rr.next(); err != nil {
			return nil, eofAsParse(err, "LIBNAME")
		}
		if rec.Type == recLibName {
			lib.Name = rec.str()
			break
		}
		lib.PreName = append(lib.PreName, rec)
	}

	for {
		if rec, err = rr.next(); err != nil {
			return nil, eofAsParse(err, "UNITS")
		}
		if rec.Type == recUnits {
			if u := rec.reals(); len(u) == 2 {
				lib.Units = Units{UserPerDB: u[0], MetersPerDB: u[1]}
			} else {
				return nil, errors.New(errors.ErrCodeParse, "UNITS carries %d reals, want 2", len(u))
			}
			break
		}
		lib.PostName = append(lib.PostName, rec)
	}

	for {
		if rec, err = rr.next(); err != nil {
			return nil, eofAsParse(err, "ENDLIB")
		}
		switch rec.Type {
		case recEndLib:
			return lib, nil
		case recBgnStr:
			s, err := readStruct(rr, rec)
			if err != nil {
				return nil, err
			}
			lib.Structs = append(lib.Structs, s)
		default:
			return nil, errors.New(errors.ErrCodeParse, "unexpected record 0x%02x between structs", rec.Type)
		}
	}
}

func eofAsParse(err error, want string) error {
	if err == io.EOF {
		return errors.New(errors.ErrCodeParse, "unexpected end of stream, want %s", want)
	}
	return err
}

func readStruct(rr *recordReader, bgn Record) (*Struct, error) {
	s := &Struct{Dates: bgn.int16s()}

	rec, err := rr.expect(recStrName)
	if err != nil {
		return nil, err
	}
	s.Name = rec.str()

	for {
		if rec, err = rr.next(); err != nil {
			return nil, eofAsParse(err, "ENDSTR")
		}
		switch rec.Type {
		case recEndStr:
			return s, nil
		case recStrClass:
			v := uint16(0)
			if d := rec.int16s(); len(d) > 0 {
				v = uint16(d[0])
			}
			s.Class = &v
		case recBoundary, recPath, recSRef, recARef, recText, recNode, recBox:
			el, err := readElement(rr, rec.Type)
			if err != nil {
				return nil, fmt.Errorf("struct %s: %w", s.Name, err)
			}
			s.Elements = append(s.Elements, el)
		default:
			return nil, errors.New(errors.ErrCodeParse, "unexpected record 0x%02x in struct %s", rec.Type, s.Name).For(s.Name)
		}
	}
}

// elementFields collects every record an element may carry before the
// element is assembled by kind.
type elementFields struct {
	layer, datatype, texttype, nodetype, boxtype int16
	pathtype                                     *int16
	width, bgnExtn, endExtn, plex                *int32
	elflags, presentation                        *uint16
	sname, text                                  string
	strans                                       *Strans
	colrow                                       []int16
	xy                                           []Record
	props                                        []Property
}

func readElement(rr *recordReader, kind uint8) (Element, error) {
	var f elementFields
	var pendingAttr *int16

	for {
		rec, err := rr.next()
		if err != nil {
			return nil, eofAsParse(err, "ENDEL")
		}
		first16 := func() int16 {
			if v := rec.int16s(); len(v) > 0 {
				return v[0]
			}
			return 0
		}
		first32 := func() *int32 {
			v := int32(0)
			if d := rec.int32s(); len(d) > 0 {
				v = d[0]
			}
			return &v
		}

		switch rec.Type {
		case recEndEl:
			return f.assemble(kind)
		case recElFlags:
			v := uint16(first16())
			f.elflags = &v
		case recPlex:
			f.plex = first32()
		case recLayer:
			f.layer = first16()
		case recDatatype:
			f.datatype = first16()
		case recTextType:
			f.texttype = first16()
		case recNodeType:
			f.nodetype = first16()
		case recBoxType:
			f.boxtype = first16()
		case recPathType:
			v := first16()
			f.pathtype = &v
		case recWidth:
			f.width = first32()
		case recBgnExtn:
			f.bgnExtn = first32()
		case recEndExtn:
			f.endExtn = first32()
		case recPresentation:
			v := uint16(first16())
			f.presentation = &v
		case recSName:
			f.sname = rec.str()
		case recString:
			f.text = rec.str()
		case recColRow:
			f.colrow = rec.int16s()
		case recStrans:
			flags := uint16(first16())
			f.strans = &Strans{
				Reflected: flags&stransReflected != 0,
				AbsMag:    flags&stransAbsMag != 0,
				AbsAngle:  flags&stransAbsAngle != 0,
			}
		case recMag, recAngle:
			if f.strans == nil {
				f.strans = &Strans{}
			}
			var v Real
			if r := rec.reals(); len(r) > 0 {
				v = r[0]
			}
			if rec.Type == recMag {
				f.strans.Mag = &v
			} else {
				f.strans.Angle = &v
			}
		case recXY:
			f.xy = append(f.xy, rec)
		case recPropAttr:
			v := first16()
			pendingAttr = &v
		case recPropValue:
			if pendingAttr == nil {
				return nil, errors.New(errors.ErrCodeParse, "PROPVALUE without PROPATTR")
			}
			f.props = append(f.props, Property{Attr: *pendingAttr, Value: rec.str()})
			pendingAttr = nil
		default:
			return nil, errors.New(errors.ErrCodeParse, "unsupported record 0x%02x inside element", rec.Type)
		}
	}
}

func (f *elementFields) assemble(kind uint8) (Element, error) {
	if len(f.xy) != 1 {
		return nil, errors.New(errors.ErrCodeParse, "element carries %d XY records, want 1", len(f.xy))
	}
	pts := f.xy[0].points()

	switch kind {
	case recBoundary:
		return &Boundary{Layer: f.layer, Datatype: f.datatype, XY: pts,
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recPath:
		return &Path{Layer: f.layer, Datatype: f.datatype, PathType: f.pathtype, Width: f.width,
			BeginExtn: f.bgnExtn, EndExtn: f.endExtn, XY: pts,
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recNode:
		return &Node{Layer: f.layer, NodeType: f.nodetype, XY: pts,
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recSRef:
		if len(pts) != 1 {
			return nil, errors.New(errors.ErrCodeParse, "SREF %s has %d points, want 1", f.sname, len(pts)).For(f.sname)
		}
		return &StructRef{Name: f.sname, Strans: f.strans, XY: pts[0],
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recARef:
		if len(pts) != 3 || len(f.colrow) != 2 {
			return nil, errors.New(errors.ErrCodeParse, "AREF %s is malformed", f.sname).For(f.sname)
		}
		return &ArrayRef{Name: f.sname, Strans: f.strans, Cols: f.colrow[0], Rows: f.colrow[1],
			XY: [3]geom.Point{pts[0], pts[1], pts[2]}, ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recText:
		if len(pts) != 1 {
			return nil, errors.New(errors.ErrCodeParse, "TEXT has %d points, want 1", len(pts))
		}
		return &Text{Layer: f.layer, TextType: f.texttype, Presentation: f.presentation,
			PathType: f.pathtype, Width: f.width, Strans: f.strans, XY: pts[0], String: f.text,
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	case recBox:
		if len(pts) != 5 {
			return nil, errors.New(errors.ErrCodeParse, "BOX has %d points, want 5", len(pts))
		}
		var xy [5]geom.Point
		copy(xy[:], pts)
		return &Box{Layer: f.layer, BoxType: f.boxtype, XY: xy,
			ElFlags: f.elflags, Plex: f.plex, Properties: f.props}, nil
	}
	return nil, errors.New(errors.ErrCodeInternal, "unknown element kind 0x%02x", kind)
}
