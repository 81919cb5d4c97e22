package gds

import (
	"encoding/json"
	"io"
)

type jsonElement struct {
	Type    string  `json:"type"`
	Element Element `json:"element"`
}

type jsonStruct struct {
	Name     string        `json:"name"`
	Dates    []int16       `json:"dates"`
	Class    *uint16       `json:"class,omitempty"`
	Elements []jsonElement `json:"elements"`
}

// MarshalJSON tags each element with its kind.
func (s *Struct) MarshalJSON() ([]byte, error) {
	out := jsonStruct{
		Name:     s.Name,
		Dates:    s.Dates,
		Class:    s.Class,
		Elements: make([]jsonElement, len(s.Elements)),
	}
	for i, el := range s.Elements {
		out.Elements[i] = jsonElement{Type: el.Kind(), Element: el}
	}
	return json.Marshal(out)
}

// WriteJSON encodes lib as indented JSON and writes it to w.
// The output is meant for inspection; it is not read back.
func WriteJSON(w io.Writer, lib *Library) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lib)
}
