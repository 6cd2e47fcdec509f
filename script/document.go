package script

import "slices"

// Document is the parse result of one file: one entry per top-level
// name = { ... } statement, in source order.
type Document struct {
	Filename string   `json:"filename,omitempty" yaml:"filename,omitempty"`
	Entries  []*Entry `json:"entries" yaml:"entries"`
	// Diagnostics holds the lexer and parser warnings reported while
	// producing the document.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Entry is a top-level named block.
type Entry struct {
	Name  string
	Scope *CountryScope
	Body  *Block
	Line  int
}

// Entry returns the first entry called name, or nil.
func (d *Document) Entry(name string) *Entry {
	for _, e := range d.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// EntriesNamed returns all entries called name.
func (d *Document) EntriesNamed(name string) []*Entry {
	var out []*Entry
	for _, e := range d.Entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// CountryScope restricts or replicates an entry to nation tags.
// Declared by #@COUNTRY = "TAG" (single) or #@COUNTRIES = [A, B] (many).
type CountryScope struct {
	Tags []string `json:"tags" yaml:"tags"`
	Many bool     `json:"many,omitempty" yaml:"many,omitempty"`
}

// SingleCountry returns the scope of one tag.
func SingleCountry(tag string) *CountryScope {
	return &CountryScope{Tags: []string{tag}}
}

// ManyCountries returns a scope over tags with duplicates removed,
// preserving first-seen order.
func ManyCountries(tags ...string) *CountryScope {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return &CountryScope{Tags: out, Many: true}
}

// Directive is an #@override.KEY("VALUE") marker, optionally followed
// by = { ... }.
type Directive struct {
	Key   string
	Value string
	Body  *Block
	Line  int
}
