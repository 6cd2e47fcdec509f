// Package script provides the parsed representation of Clausewitz script
// files: documents, blocks with duplicate-key merge semantics, scalars,
// lists, and the diagnostics produced while reading them.
//
// Every Node is one of Scalar, *Block, *List or *Tagged. A Block field
// holds a Merged value, which is either Single or Multiple; consumers
// type-switch on it rather than assuming an arity.
package script

import (
	"strconv"
)

// Node is a parsed value.
type Node interface {
	node()
}

// ScalarKind identifies the type of a Scalar.
type ScalarKind uint8

const (
	ScalarIdent ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarString
	ScalarBool
	ScalarDate
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarIdent:
		return "ident"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarString:
		return "string"
	case ScalarBool:
		return "bool"
	case ScalarDate:
		return "date"
	default:
		return "ScalarKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Scalar is a leaf value. Text always holds the source spelling
// (without quotes for strings); Int, Float and Bool hold the decoded
// value for the matching kind.
type Scalar struct {
	Kind  ScalarKind
	Text  string
	Int   int64
	Float float64
	Bool  bool
}

func (Scalar) node() {}

// IdentValue returns an identifier scalar.
func IdentValue(s string) Scalar { return Scalar{Kind: ScalarIdent, Text: s} }

// StringValue returns a string scalar.
func StringValue(s string) Scalar { return Scalar{Kind: ScalarString, Text: s} }

// DateValue returns a date scalar.
func DateValue(s string) Scalar { return Scalar{Kind: ScalarDate, Text: s} }

// IntValue returns an integer scalar.
func IntValue(n int64) Scalar {
	return Scalar{Kind: ScalarInt, Text: strconv.FormatInt(n, 10), Int: n}
}

// FloatValue returns a floating-point scalar.
func FloatValue(f float64) Scalar {
	return Scalar{Kind: ScalarFloat, Text: strconv.FormatFloat(f, 'f', -1, 64), Float: f}
}

// BoolValue returns a yes/no scalar.
func BoolValue(b bool) Scalar {
	text := "no"
	if b {
		text = "yes"
	}
	return Scalar{Kind: ScalarBool, Text: text, Bool: b}
}

// String returns the source spelling of the scalar.
func (s Scalar) String() string {
	return s.Text
}

// IsNumber reports whether the scalar is an integer or a float.
func (s Scalar) IsNumber() bool {
	return s.Kind == ScalarInt || s.Kind == ScalarFloat
}

// Float64 returns the numeric value of an integer or float scalar.
func (s Scalar) Float64() (float64, bool) {
	switch s.Kind {
	case ScalarInt:
		return float64(s.Int), true
	case ScalarFloat:
		return s.Float, true
	}
	return 0, false
}

// Int64 returns the value of an integer scalar, or of a float scalar
// with no fractional part.
func (s Scalar) Int64() (int64, bool) {
	switch s.Kind {
	case ScalarInt:
		return s.Int, true
	case ScalarFloat:
		if s.Float == float64(int64(s.Float)) {
			return int64(s.Float), true
		}
	}
	return 0, false
}

// List is a bare value sequence such as { 1 2 3 }.
type List struct {
	Items []Node
}

func (*List) node() {}

// NewList returns a list holding items.
func NewList(items ...Node) *List {
	return &List{Items: items}
}

// Tagged is a value prefixed by an identifier, such as rgb { 1 2 3 }.
type Tagged struct {
	Tag   string
	Value Node
}

func (*Tagged) node() {}

// Clone returns a deep copy of n. Scalars are returned as is.
func Clone(n Node) Node {
	switch v := n.(type) {
	case *Block:
		return v.Clone()
	case *List:
		items := make([]Node, len(v.Items))
		for i, item := range v.Items {
			items[i] = Clone(item)
		}
		return &List{Items: items}
	case *Tagged:
		return &Tagged{Tag: v.Tag, Value: Clone(v.Value)}
	default:
		return n
	}
}

// Equal reports whether a and b are structurally equal. Source positions
// and collected directives are not compared.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case Scalar:
		y, ok := b.(Scalar)
		return ok && x == y
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Tagged:
		y, ok := b.(*Tagged)
		return ok && x.Tag == y.Tag && Equal(x.Value, y.Value)
	case *Block:
		y, ok := b.(*Block)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, f := range x.fields {
			g := y.fields[i]
			if f.Key != g.Key || !equalMerged(f.Value, g.Value) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

func equalMerged(a, b Merged) bool {
	av, bv := a.Values(), b.Values()
	if len(av) != len(bv) {
		return false
	}
	if _, single := a.(Single); single != isSingle(b) {
		return false
	}
	for i := range av {
		if !Equal(av[i], bv[i]) {
			return false
		}
	}
	return true
}

func isSingle(m Merged) bool {
	_, ok := m.(Single)
	return ok
}
