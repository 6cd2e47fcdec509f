package extract

import (
	"log/slog"
	"slices"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// Name groups.
const (
	GroupOrdered = "ordered"
	GroupUnique  = "unique"
)

// NameRecord is one name of a division or ship name list.
type NameRecord struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	// Ordinal is the number of an ordered name, or the 1-based position
	// of a unique name.
	Ordinal   int64    `json:"ordinal" yaml:"ordinal"`
	Group     string   `json:"group" yaml:"group"`
	Countries []string `json:"countries,omitempty" yaml:"countries,omitempty"`
}

// NameList flattens every name-list entry of doc into records, in source
// order.
func NameList(doc *script.Document, opts ...Option) ([]NameRecord, []script.Diagnostic) {
	x := newExtraction(KindNames, doc, opts)
	var out []NameRecord
	for _, e := range doc.Entries {
		countries := x.forCountries(e)

		if f, ok := e.Body.Lookup(script.Ident("ordered")); ok {
			for _, v := range f.Value.Values() {
				ob, ok := v.(*script.Block)
				if !ok {
					x.warn(types.DiagInvalidName, f.Line, "%s: ordered names must be a block", e.Name)
					continue
				}
				out = x.orderedNames(out, e.Name, countries, ob)
			}
		}
		if f, ok := e.Body.Lookup(script.Ident("unique")); ok {
			var ordinal int64
			for _, n := range flatten(f.Value) {
				name, ok := nameText(n)
				if !ok {
					x.warn(types.DiagInvalidName, f.Line, "%s: unique name %s is not text", e.Name, describe(n))
					continue
				}
				ordinal++
				out = append(out, NameRecord{
					Name:      name,
					Category:  e.Name,
					Ordinal:   ordinal,
					Group:     GroupUnique,
					Countries: slices.Clone(countries),
				})
			}
		}
	}
	x.Log(slog.LevelDebug, "names extracted", slog.Int("count", len(out)))
	return out, x.diags
}

func (x *extraction) orderedNames(out []NameRecord, category string, countries []string, b *script.Block) []NameRecord {
	for _, f := range b.Fields() {
		if f.Key.Kind != script.KeyInt {
			x.warn(types.DiagInvalidName, f.Line, "%s: ordered key %s is not a number", category, f.Key)
			continue
		}
		for _, n := range flatten(f.Value) {
			name, ok := nameText(n)
			if !ok {
				x.warn(types.DiagInvalidName, f.Line, "%s: name %d is %s", category, f.Key.Int, describe(n))
				continue
			}
			out = append(out, NameRecord{
				Name:      name,
				Category:  category,
				Ordinal:   f.Key.Int,
				Group:     GroupOrdered,
				Countries: slices.Clone(countries),
			})
		}
	}
	return out
}

// forCountries reads for_countries, falling back to the entry scope.
func (x *extraction) forCountries(e *script.Entry) []string {
	if m, ok := e.Body.Get("for_countries"); ok {
		return appendUnique(nil, texts(m)...)
	}
	if e.Scope != nil {
		return slices.Clone(e.Scope.Tags)
	}
	return nil
}

func nameText(n script.Node) (string, bool) {
	s, ok := n.(script.Scalar)
	if !ok || s.Text == "" {
		return "", false
	}
	if s.Kind != script.ScalarString && s.Kind != script.ScalarIdent {
		return "", false
	}
	return s.Text, true
}
