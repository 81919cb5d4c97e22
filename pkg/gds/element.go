package gds

import "github.com/cloudcalvin/gdsutil/pkg/geom"

// Element is one of Boundary, Path, StructRef, ArrayRef, Text, Node or Box.
type Element interface {
	// Kind returns the lower-case record name of the element.
	Kind() string

	element()
}

// Property is a PROPATTR/PROPVALUE pair attached to an element.
type Property struct {
	Attr  int16  `json:"attr"`
	Value string `json:"value"`
}

// InstanceNameAttr is the property attribute carrying an instance name.
const InstanceNameAttr int16 = 1

// Strans is the reflection, magnification and rotation of a reference or text.
type Strans struct {
	Reflected bool  `json:"reflected"`
	AbsMag    bool  `json:"abs_mag,omitempty"`
	AbsAngle  bool  `json:"abs_angle,omitempty"`
	Mag       *Real `json:"mag,omitempty"`
	Angle     *Real `json:"angle,omitempty"`
}

// Magnification returns the magnification, 1 if unset.
func (s *Strans) Magnification() float64 {
	if s == nil || s.Mag == nil {
		return 1
	}
	return s.Mag.Float()
}

// Degrees returns the rotation angle, 0 if unset.
func (s *Strans) Degrees() float64 {
	if s == nil || s.Angle == nil {
		return 0
	}
	return s.Angle.Float()
}

// IsReflected reports whether the reflection bit is set.
func (s *Strans) IsReflected() bool {
	return s != nil && s.Reflected
}

// Boundary is a closed polygon. XY repeats the first point as the last.
type Boundary struct {
	Layer      int16        `json:"layer"`
	Datatype   int16        `json:"datatype"`
	XY         []geom.Point `json:"xy"`
	ElFlags    *uint16      `json:"elflags,omitempty"`
	Plex       *int32       `json:"plex,omitempty"`
	Properties []Property   `json:"properties,omitempty"`
}

// Path pathtype codes.
const (
	PathTypeFlat     int16 = 0
	PathTypeRound    int16 = 1
	PathTypeSquare   int16 = 2
	PathTypeExtended int16 = 4
)

// Path is a wire with a center-line, width and end style.
type Path struct {
	Layer      int16        `json:"layer"`
	Datatype   int16        `json:"datatype"`
	PathType   *int16       `json:"pathtype,omitempty"`
	Width      *int32       `json:"width,omitempty"`
	BeginExtn  *int32       `json:"begin_extn,omitempty"`
	EndExtn    *int32       `json:"end_extn,omitempty"`
	XY         []geom.Point `json:"xy"`
	ElFlags    *uint16      `json:"elflags,omitempty"`
	Plex       *int32       `json:"plex,omitempty"`
	Properties []Property   `json:"properties,omitempty"`
}

// StructRef places a single copy of a struct.
type StructRef struct {
	Name       string     `json:"name"`
	Strans     *Strans    `json:"strans,omitempty"`
	XY         geom.Point `json:"xy"`
	ElFlags    *uint16    `json:"elflags,omitempty"`
	Plex       *int32     `json:"plex,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// ArrayRef places a rectangular array of a struct. XY holds the origin, the
// column-displacement point and the row-displacement point.
type ArrayRef struct {
	Name       string        `json:"name"`
	Strans     *Strans       `json:"strans,omitempty"`
	Cols       int16         `json:"cols"`
	Rows       int16         `json:"rows"`
	XY         [3]geom.Point `json:"xy"`
	ElFlags    *uint16       `json:"elflags,omitempty"`
	Plex       *int32        `json:"plex,omitempty"`
	Properties []Property    `json:"properties,omitempty"`
}

// Text is a text label.
type Text struct {
	Layer        int16      `json:"layer"`
	TextType     int16      `json:"texttype"`
	Presentation *uint16    `json:"presentation,omitempty"`
	PathType     *int16     `json:"pathtype,omitempty"`
	Width        *int32     `json:"width,omitempty"`
	Strans       *Strans    `json:"strans,omitempty"`
	XY           geom.Point `json:"xy"`
	String       string     `json:"string"`
	ElFlags      *uint16    `json:"elflags,omitempty"`
	Plex         *int32     `json:"plex,omitempty"`
	Properties   []Property `json:"properties,omitempty"`
}

// Node is an electrical net marker.
type Node struct {
	Layer      int16        `json:"layer"`
	NodeType   int16        `json:"nodetype"`
	XY         []geom.Point `json:"xy"`
	ElFlags    *uint16      `json:"elflags,omitempty"`
	Plex       *int32       `json:"plex,omitempty"`
	Properties []Property   `json:"properties,omitempty"`
}

// Box is a five-point rectangle outline.
type Box struct {
	Layer      int16         `json:"layer"`
	BoxType    int16         `json:"boxtype"`
	XY         [5]geom.Point `json:"xy"`
	ElFlags    *uint16       `json:"elflags,omitempty"`
	Plex       *int32        `json:"plex,omitempty"`
	Properties []Property    `json:"properties,omitempty"`
}

func (*Boundary) Kind() string  { return "boundary" }
func (*Path) Kind() string      { return "path" }
func (*StructRef) Kind() string { return "sref" }
func (*ArrayRef) Kind() string  { return "aref" }
func (*Text) Kind() string      { return "text" }
func (*Node) Kind() string      { return "node" }
func (*Box) Kind() string       { return "box" }

func (*Boundary) element()  {}
func (*Path) element()      {}
func (*StructRef) element() {}
func (*ArrayRef) element()  {}
func (*Text) element()      {}
func (*Node) element()      {}
func (*Box) element()       {}
