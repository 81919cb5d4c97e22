package gds

import (
	"fmt"
	"io"
	"os"
)

// Save writes a library to a file, replacing it if it exists.
func Save(path string, lib *Library) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, lib); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Write encodes a library as a stream.
func Write(w io.Writer, lib *Library) error {
	rw := newRecordWriter(w)

	rw.int16s(recHeader, lib.Version)
	rw.int16s(recBgnLib, dates(lib.Dates)...)
	for _, rec := range lib.PreName {
		rw.raw(rec)
	}
	rw.str(recLibName, lib.Name)
	for _, rec := range lib.PostName {
		rw.raw(rec)
	}
	rw.reals(recUnits, lib.Units.UserPerDB, lib.Units.MetersPerDB)

	for _, s := range lib.Structs {
		writeStruct(rw, s)
	}

	rw.none(recEndLib)
	return rw.flush()
}

func dates(d []int16) []int16 {
	if len(d) == 0 {
		return make([]int16, 12)
	}
	return d
}

func writeStruct(rw *recordWriter, s *Struct) {
	rw.int16s(recBgnStr, dates(s.Dates)...)
	rw.str(recStrName, s.Name)
	if s.Class != nil {
		rw.bits(recStrClass, *s.Class)
	}
	for _, el := range s.Elements {
		writeElement(rw, el)
	}
	rw.none(recEndStr)
}

func writeElement(rw *recordWriter, el Element) {
	switch e := el.(type) {
	case *Boundary:
		rw.none(recBoundary)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.int16s(recLayer, e.Layer)
		rw.int16s(recDatatype, e.Datatype)
		rw.points(e.XY...)
		writeProps(rw, e.Properties)

	case *Path:
		rw.none(recPath)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.int16s(recLayer, e.Layer)
		rw.int16s(recDatatype, e.Datatype)
		if e.PathType != nil {
			rw.int16s(recPathType, *e.PathType)
		}
		if e.Width != nil {
			rw.int32s(recWidth, *e.Width)
		}
		if e.BeginExtn != nil {
			rw.int32s(recBgnExtn, *e.BeginExtn)
		}
		if e.EndExtn != nil {
			rw.int32s(recEndExtn, *e.EndExtn)
		}
		rw.points(e.XY...)
		writeProps(rw, e.Properties)

	case *StructRef:
		rw.none(recSRef)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.str(recSName, e.Name)
		writeStrans(rw, e.Strans)
		rw.points(e.XY)
		writeProps(rw, e.Properties)

	case *ArrayRef:
		rw.none(recARef)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.str(recSName, e.Name)
		writeStrans(rw, e.Strans)
		rw.int16s(recColRow, e.Cols, e.Rows)
		rw.points(e.XY[:]...)
		writeProps(rw, e.Properties)

	case *Text:
		rw.none(recText)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.int16s(recLayer, e.Layer)
		rw.int16s(recTextType, e.TextType)
		if e.Presentation != nil {
			rw.bits(recPresentation, *e.Presentation)
		}
		if e.PathType != nil {
			rw.int16s(recPathType, *e.PathType)
		}
		if e.Width != nil {
			rw.int32s(recWidth, *e.Width)
		}
		writeStrans(rw, e.Strans)
		rw.points(e.XY)
		rw.str(recString, e.String)
		writeProps(rw, e.Properties)

	case *Node:
		rw.none(recNode)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.int16s(recLayer, e.Layer)
		rw.int16s(recNodeType, e.NodeType)
		rw.points(e.XY...)
		writeProps(rw, e.Properties)

	case *Box:
		rw.none(recBox)
		writeHeader(rw, e.ElFlags, e.Plex)
		rw.int16s(recLayer, e.Layer)
		rw.int16s(recBoxType, e.BoxType)
		rw.points(e.XY[:]...)
		writeProps(rw, e.Properties)

	default:
		if rw.err == nil {
			rw.err = fmt.Errorf("unsupported element %T", el)
		}
		return
	}
	rw.none(recEndEl)
}

func writeHeader(rw *recordWriter, elflags *uint16, plex *int32) {
	if elflags != nil {
		rw.bits(recElFlags, *elflags)
	}
	if plex != nil {
		rw.int32s(recPlex, *plex)
	}
}

func writeStrans(rw *recordWriter, s *Strans) {
	if s == nil {
		return
	}
	var flags uint16
	if s.Reflected {
		flags |= stransReflected
	}
	if s.AbsMag {
		flags |= stransAbsMag
	}
	if s.AbsAngle {
		flags |= stransAbsAngle
	}
	rw.bits(recStrans, flags)
	if s.Mag != nil {
		rw.reals(recMag, *s.Mag)
	}
	if s.Angle != nil {
		rw.reals(recAngle, *s.Angle)
	}
}

func writeProps(rw *recordWriter, props []Property) {
	for _, p := range props {
		rw.int16s(recPropAttr, p.Attr)
		rw.str(recPropValue, p.Value)
	}
}
