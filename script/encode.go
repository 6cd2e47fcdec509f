package script

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Nodes encode to JSON and YAML as plain data: scalars as native values,
// lists as arrays, tagged values as a one-key object and blocks as objects
// in field order. A Multiple slot encodes as an array of its values.

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.native())
}

// MarshalYAML implements yaml.Marshaler.
func (s Scalar) MarshalYAML() (any, error) {
	return s.native(), nil
}

func (s Scalar) native() any {
	switch s.Kind {
	case ScalarInt:
		return s.Int
	case ScalarFloat:
		return s.Float
	case ScalarBool:
		return s.Bool
	default:
		return s.Text
	}
}

// MarshalJSON implements json.Marshaler.
func (l *List) MarshalJSON() ([]byte, error) {
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// MarshalYAML implements yaml.Marshaler.
func (l *List) MarshalYAML() (any, error) {
	if l.Items == nil {
		return []Node{}, nil
	}
	return l.Items, nil
}

// MarshalJSON implements json.Marshaler.
func (t *Tagged) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Node{t.Tag: t.Value})
}

// MarshalYAML implements yaml.Marshaler.
func (t *Tagged) MarshalYAML() (any, error) {
	return map[string]Node{t.Tag: t.Value}, nil
}

// MarshalJSON implements json.Marshaler, preserving field order.
func (b *Block) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range b.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(mergedData(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler, preserving field order.
func (b *Block) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range b.fields {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key.String()}
		val := &yaml.Node{}
		if err := val.Encode(mergedData(f.Value)); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, key, val)
	}
	return n, nil
}

func mergedData(m Merged) any {
	if s, ok := m.(Single); ok {
		return s.Node
	}
	return m.Values()
}

type entryData struct {
	Name  string        `json:"name" yaml:"name"`
	Scope *CountryScope `json:"scope,omitempty" yaml:"scope,omitempty"`
	Body  *Block        `json:"body" yaml:"body"`
}

// MarshalJSON implements json.Marshaler.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryData{Name: e.Name, Scope: e.Scope, Body: e.Body})
}

// MarshalYAML implements yaml.Marshaler.
func (e *Entry) MarshalYAML() (any, error) {
	return entryData{Name: e.Name, Scope: e.Scope, Body: e.Body}, nil
}
