package extract

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// flatten returns the scalar leaves of m in order, descending through
// lists and repeated keys. Blocks and tagged values are returned as
// they are for the caller to reject.
func flatten(m script.Merged) []script.Node {
	var out []script.Node
	var walk func(n script.Node)
	walk = func(n script.Node) {
		if l, ok := n.(*script.List); ok {
			for _, item := range l.Items {
				walk(item)
			}
			return
		}
		out = append(out, n)
	}
	for _, v := range m.Values() {
		walk(v)
	}
	return out
}

// numbers converts n to floats when n is a numeric scalar or a list of
// numeric scalars.
func numbers(n script.Node) ([]float64, bool) {
	switch v := n.(type) {
	case script.Scalar:
		f, ok := v.Float64()
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	case *script.List:
		out := make([]float64, 0, len(v.Items))
		for _, item := range v.Items {
			s, ok := item.(script.Scalar)
			if !ok {
				return nil, false
			}
			f, ok := s.Float64()
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

// provinceID accepts an integer scalar or a string made of digits.
func provinceID(n script.Node) (int64, bool) {
	s, ok := n.(script.Scalar)
	if !ok {
		return 0, false
	}
	if s.Kind == script.ScalarInt {
		return s.Int, true
	}
	if s.Kind == script.ScalarString && isDigits(s.Text) {
		id, err := strconv.ParseInt(s.Text, 10, 64)
		return id, err == nil
	}
	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// provinces reads a provinces field into ordered ids, dropping anything
// that is not a province number.
func (x *extraction) provinces(b *script.Block) []int64 {
	f, ok := b.Lookup(script.Ident("provinces"))
	if !ok {
		return nil
	}
	var ids []int64
	for _, n := range flatten(f.Value) {
		id, ok := provinceID(n)
		if !ok {
			x.warn(types.DiagNonNumericProvince, f.Line, "province %s is not a number", describe(n))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// intField reads name as a whole number.
func (x *extraction) intField(b *script.Block, name string) (int64, bool) {
	f, ok := b.Lookup(script.Ident(name))
	if !ok {
		return 0, false
	}
	if s, ok := f.Value.Last().(script.Scalar); ok {
		if n, ok := s.Int64(); ok {
			return n, true
		}
		if s.Kind == script.ScalarString && isDigits(s.Text) {
			if n, err := strconv.ParseInt(s.Text, 10, 64); err == nil {
				return n, true
			}
		}
	}
	x.warn(types.DiagInvalidField, f.Line, "%s: expected a whole number, found %s", name, describe(f.Value.Last()))
	return 0, false
}

// floatField reads name as a number.
func (x *extraction) floatField(b *script.Block, name string) (*float64, bool) {
	f, ok := b.Lookup(script.Ident(name))
	if !ok {
		return nil, false
	}
	if s, ok := f.Value.Last().(script.Scalar); ok {
		if v, ok := s.Float64(); ok {
			return &v, true
		}
	}
	x.warn(types.DiagInvalidField, f.Line, "%s: expected a number, found %s", name, describe(f.Value.Last()))
	return nil, false
}

// textField reads name as scalar text; repeated keys keep the last value.
func (x *extraction) textField(b *script.Block, name string) (string, bool) {
	f, ok := b.Lookup(script.Ident(name))
	if !ok {
		return "", false
	}
	if s, ok := f.Value.Last().(script.Scalar); ok {
		return s.Text, true
	}
	x.warn(types.DiagInvalidField, f.Line, "%s: expected a scalar, found %s", name, describe(f.Value.Last()))
	return "", false
}

// firstScalar returns the first value of name when it is a scalar. An
// override whose body repeats the key leaves the overridden value first.
func firstScalar(b *script.Block, name string) (script.Scalar, bool) {
	m, ok := b.Get(name)
	if !ok {
		return script.Scalar{}, false
	}
	s, ok := m.Values()[0].(script.Scalar)
	return s, ok
}

// texts collects the scalar text of every value of m, descending through
// lists.
func texts(m script.Merged) []string {
	var out []string
	for _, n := range flatten(m) {
		if s, ok := n.(script.Scalar); ok && s.Text != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

func describe(n script.Node) string {
	switch v := n.(type) {
	case script.Scalar:
		if v.Kind == script.ScalarString {
			return strconv.Quote(v.Text)
		}
		return v.Kind.String() + " " + v.Text
	case *script.Block:
		return "block"
	case *script.List:
		return "list"
	case *script.Tagged:
		return v.Tag + " value"
	}
	return "nothing"
}

var (
	stateFileRE = regexp.MustCompile(`^(\d+)\s*-\s*(.*)$`)
	tagFileRE   = regexp.MustCompile(`^([A-Z][A-Z0-9]{2})(?:[_\- .]|$)`)
)

// idFromFilename splits names like "42-Berlin.txt" into 42 and "Berlin".
func idFromFilename(filename string) (int64, string, bool) {
	if filename == "" {
		return 0, "", false
	}
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := stateFileRE.FindStringSubmatch(base)
	if m == nil {
		return 0, "", false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, strings.TrimSpace(m[2]), true
}

// tagFromFilename returns the country tag that leads names like
// "GER_1936.txt" or "SOV - Naval.txt".
func tagFromFilename(filename string) (string, bool) {
	if filename == "" {
		return "", false
	}
	m := tagFileRE.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return "", false
	}
	return m[1], true
}
