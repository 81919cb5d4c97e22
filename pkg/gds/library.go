// Package gds reads and writes GDSII stream files.
//
// A [Library] holds [Struct]s; each struct holds drawing and reference
// [Element]s. The model keeps every record the engine does not interpret in
// its encoded form, so that a Read followed by a Write reproduces dates,
// version, units and optional header records bit for bit.
//
// # Usage
//
//	lib, err := gds.Load("in.gds")
//	if err != nil {
//	    return err
//	}
//	top := lib.Struct("TOP")
//	// ... modify ...
//	err = gds.Save("out.gds", lib)
package gds

import (
	"strings"
	"time"
)

// DefaultVersion is the stream version written for new libraries.
const DefaultVersion int16 = 600

// Units holds the two UNITS reals: user units per database unit and metres
// per database unit.
type Units struct {
	UserPerDB   Real `json:"user_per_db"`
	MetersPerDB Real `json:"meters_per_db"`
}

// UnitsForDBU returns the units of a library whose user unit is the micron
// and that has dbu database units per micron.
func UnitsForDBU(dbu int) Units {
	if dbu <= 0 {
		dbu = 1000
	}
	return Units{
		UserPerDB:   RealOf(1 / float64(dbu)),
		MetersPerDB: RealOf(1e-6 / float64(dbu)),
	}
}

// Library is a stream-format library.
type Library struct {
	Version int16     `json:"version"`
	Dates   []int16   `json:"dates"`
	Name    string    `json:"name"`
	Units   Units     `json:"units"`
	Structs []*Struct `json:"structs"`

	// PreName and PostName keep optional header records (LIBDIRSIZE,
	// SRFNAME, LIBSECUR before LIBNAME; REFLIBS, FONTS, ATTRTABLE,
	// GENERATIONS, FORMAT after it) exactly as read.
	PreName  []Record `json:"pre_name,omitempty"`
	PostName []Record `json:"post_name,omitempty"`
}

// NewLibrary creates an empty library with default version and units of
// 1000 database units per micron. A zero timestamp leaves all dates zero.
func NewLibrary(name string, stamp time.Time) *Library {
	return &Library{
		Version: DefaultVersion,
		Dates:   Dates(stamp),
		Name:    name,
		Units:   UnitsForDBU(1000),
	}
}

// Struct returns the first struct with the given name, or nil.
func (l *Library) Struct(name string) *Struct {
	for _, s := range l.Structs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// StructsWithPrefix returns every struct whose name starts with prefix, in
// library order.
func (l *Library) StructsWithPrefix(prefix string) []*Struct {
	var out []*Struct
	for _, s := range l.Structs {
		if strings.HasPrefix(s.Name, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// Struct is a named cell definition.
type Struct struct {
	Dates    []int16   `json:"dates"`
	Name     string    `json:"name"`
	Class    *uint16   `json:"class,omitempty"`
	Elements []Element `json:"elements"`
}

// NewStruct creates an empty struct stamped with the given time.
func NewStruct(name string, stamp time.Time) *Struct {
	return &Struct{Dates: Dates(stamp), Name: name}
}

// Dates encodes a timestamp as the twelve date words of BGNLIB and BGNSTR
// (modification time then access time). The zero time yields zeros.
func Dates(t time.Time) []int16 {
	d := make([]int16, 12)
	if t.IsZero() {
		return d
	}
	one := []int16{
		int16(t.Year()), int16(t.Month()), int16(t.Day()),
		int16(t.Hour()), int16(t.Minute()), int16(t.Second()),
	}
	copy(d, one)
	copy(d[6:], one)
	return d
}
