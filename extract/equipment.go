package extract

import (
	"log/slog"
	"slices"

	"github.com/pdxkit/clausewitz/internal/override"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

const variantKey = "create_equipment_variant"

// Variant is one equipment design after overrides have been applied.
type Variant struct {
	Name string `json:"name" yaml:"name"`
	// Type is the base equipment type, empty when the design names none.
	Type       string        `json:"type,omitempty" yaml:"type,omitempty"`
	Attributes *script.Block `json:"attributes" yaml:"attributes"`
	// Overridden lists the keys rewritten by override directives.
	Overridden []string `json:"overridden,omitempty" yaml:"overridden,omitempty"`
}

// Clone returns a deep copy of v.
func (v *Variant) Clone() *Variant {
	c := *v
	c.Attributes = v.Attributes.Clone()
	c.Overridden = slices.Clone(v.Overridden)
	return &c
}

// EquipmentVariants returns every variant in doc indexed by name. Country
// scopes are ignored; a later variant with the same name replaces an
// earlier one.
func EquipmentVariants(doc *script.Document, opts ...Option) (map[string]*Variant, []script.Diagnostic) {
	x := newExtraction(KindEquipment, doc, opts)
	out := make(map[string]*Variant)
	for _, e := range doc.Entries {
		for _, v := range x.variants(e) {
			if _, dup := out[v.Name]; dup {
				x.warn(types.DiagDuplicateVariant, e.Line, "variant %q defined more than once; the later one wins", v.Name)
			}
			out[v.Name] = v
		}
	}
	x.Log(slog.LevelDebug, "variants extracted", slog.Int("count", len(out)))
	return out, x.diags
}

// DesignsByCountry returns the variants of doc grouped by country tag.
// Entries scoped to several countries give each country its own copy.
// A variant is also reachable under its type name, unless a variant of
// that name exists for the same country.
func DesignsByCountry(doc *script.Document, opts ...Option) (map[string]map[string]*Variant, []script.Diagnostic) {
	x := newExtraction(KindDesigns, doc, opts)
	out := make(map[string]map[string]*Variant)
	aliases := make(map[string]map[string]bool)

	for _, e := range doc.Entries {
		variants := x.variants(e)
		if len(variants) == 0 {
			continue
		}
		for _, tag := range x.entryTags(e) {
			roster := out[tag]
			if roster == nil {
				roster = make(map[string]*Variant)
				out[tag] = roster
				aliases[tag] = make(map[string]bool)
			}
			alias := aliases[tag]

			copies := make([]*Variant, len(variants))
			for i, v := range variants {
				c := v.Clone()
				copies[i] = c
				if _, dup := roster[c.Name]; dup && !alias[c.Name] {
					x.warn(types.DiagDuplicateVariant, e.Line,
						"variant %q defined more than once for %q; the later one wins", c.Name, tag)
				}
				roster[c.Name] = c
				delete(alias, c.Name)
			}
			for _, c := range copies {
				if c.Type == "" || c.Type == c.Name {
					continue
				}
				if _, taken := roster[c.Type]; taken && !alias[c.Type] {
					continue
				}
				roster[c.Type] = c
				alias[c.Type] = true
			}
		}
	}
	x.Log(slog.LevelDebug, "designs extracted", slog.Int("countries", len(out)))
	return out, x.diags
}

// entryTags returns the countries an entry applies to.
func (x *extraction) entryTags(e *script.Entry) []string {
	if e.Scope != nil && len(e.Scope.Tags) > 0 {
		return e.Scope.Tags
	}
	if tag, ok := tagFromFilename(x.file); ok {
		x.info(types.DiagFilenameFallback, e.Line, "entry %q has no country scope; using %q from the file name", e.Name, tag)
		return []string{tag}
	}
	x.warn(types.DiagMissingCountryScope, e.Line,
		"entry %q has no country scope and the file name carries no tag", e.Name)
	return []string{""}
}

// variants resolves every variant block of an entry in source order. A
// top-level create_equipment_variant entry is itself a variant.
func (x *extraction) variants(e *script.Entry) []*Variant {
	var out []*Variant
	visit := func(raw *script.Block, line int) {
		attrs := raw.Clone()
		x.absorb(override.Resolve(attrs, x.L))

		if !attrs.Has("name") {
			x.dropped(types.DiagMissingRequiredField, line, "equipment variant without a name")
			return
		}
		name, ok := firstScalar(attrs, "name")
		if !ok || name.Text == "" {
			x.dropped(types.DiagMissingRequiredField, line, "equipment variant with an empty name")
			return
		}
		typ, _ := firstScalar(attrs, "type")
		v := &Variant{
			Name:       name.Text,
			Type:       typ.Text,
			Attributes: attrs,
			Overridden: override.Overridden(attrs),
		}
		x.Trace("variant", slog.String("name", v.Name), slog.String("type", v.Type))
		out = append(out, v)
	}
	if e.Name == variantKey {
		visit(e.Body, e.Line)
	} else {
		walkVariants(e.Body, visit)
	}
	return out
}

// walkVariants calls fn for each variant block under b, looking inside
// wrapper blocks but not inside variants themselves.
func walkVariants(b *script.Block, fn func(*script.Block, int)) {
	if b == nil {
		return
	}
	for _, f := range b.Fields() {
		isVariant := f.Key == script.Ident(variantKey)
		for _, v := range f.Value.Values() {
			vb, ok := v.(*script.Block)
			if !ok {
				continue
			}
			if isVariant {
				fn(vb, f.Line)
			} else {
				walkVariants(vb, fn)
			}
		}
	}
}
