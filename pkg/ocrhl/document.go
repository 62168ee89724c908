package ocrhl

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldValue is the value of a document field.
// Multi records whether the backend sent an array, so the value is
// written back in the same shape.
type FieldValue struct {
	Values []string
	Multi  bool
}

// Single creates a single-valued field
func Single(v string) FieldValue {
	return FieldValue{Values: []string{v}}
}

// Multiple creates a multi-valued field
func Multiple(vs ...string) FieldValue {
	return FieldValue{Values: vs, Multi: true}
}

// First returns the first value or an empty string
func (f FieldValue) First() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Map returns a copy of the field with fn applied to every value
func (f FieldValue) Map(fn func(string) string) FieldValue {
	out := FieldValue{Values: make([]string, len(f.Values)), Multi: f.Multi}
	for i, v := range f.Values {
		out.Values[i] = fn(v)
	}
	return out
}

// MarshalJSON writes a string for single values and an array otherwise
func (f FieldValue) MarshalJSON() ([]byte, error) {
	if f.Multi {
		if f.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.Values)
	}
	return json.Marshal(f.First())
}

// UnmarshalJSON accepts a string, a scalar or an array of scalars
func (f *FieldValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*f = FieldValue{}
	case []any:
		vals := make([]string, 0, len(v))
		for _, item := range v {
			vals = append(vals, scalarString(item))
		}
		*f = FieldValue{Values: vals, Multi: true}
	default:
		*f = Single(scalarString(v))
	}
	return nil
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Document is a matched document with its display fields.
// Field order is preserved from the backend response.
type Document struct {
	ID     string
	Source string
	fields map[string]FieldValue
	order  []string
}

// NewDocument creates an empty document
func NewDocument(id, source string) *Document {
	return &Document{ID: id, Source: source, fields: make(map[string]FieldValue)}
}

// Field returns a field by name
func (d *Document) Field(name string) (FieldValue, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// First returns the first value of a field or an empty string
func (d *Document) First(name string) string {
	return d.fields[name].First()
}

// SetField adds or replaces a field, keeping its original position
func (d *Document) SetField(name string, value FieldValue) {
	if d.fields == nil {
		d.fields = make(map[string]FieldValue)
	}
	if _, ok := d.fields[name]; !ok {
		d.order = append(d.order, name)
	}
	d.fields[name] = value
}

// FieldNames returns field names in backend order
func (d *Document) FieldNames() []string {
	names := make([]string, len(d.order))
	copy(names, d.order)
	return names
}

// Clone returns a copy that can be mutated independently
func (d *Document) Clone() *Document {
	c := NewDocument(d.ID, d.Source)
	for _, name := range d.order {
		v := d.fields[name]
		c.SetField(name, FieldValue{Values: append([]string(nil), v.Values...), Multi: v.Multi})
	}
	return c
}

// MarshalJSON writes id and source first, then the fields in order
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeMember := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := writeMember("id", d.ID); err != nil {
		return nil, err
	}
	if d.Source != "" {
		if err := writeMember("source", d.Source); err != nil {
			return nil, err
		}
	}
	for _, name := range d.order {
		if err := writeMember(name, d.fields[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object, keeping member order
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("document must be a JSON object")
	}

	*d = Document{fields: make(map[string]FieldValue)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected document key %v", tok)
		}
		var value FieldValue
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		switch key {
		case "id":
			d.ID = value.First()
		case "source":
			d.Source = value.First()
		default:
			d.SetField(key, value)
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML writes the same ordered mapping as MarshalJSON
func (d *Document) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}
	scalar := func(v string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	}

	add("id", scalar(d.ID))
	if d.Source != "" {
		add("source", scalar(d.Source))
	}
	for _, name := range d.order {
		v := d.fields[name]
		if !v.Multi {
			add(name, scalar(v.First()))
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Values {
			seq.Content = append(seq.Content, scalar(item))
		}
		add(name, seq)
	}
	return node, nil
}
