package extract

import (
	"log/slog"
	"slices"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// VictoryPoint weights a province.
type VictoryPoint struct {
	Province int64   `json:"province" yaml:"province"`
	Value    float64 `json:"value" yaml:"value"`
}

// StateRecord is the content of a history/states file.
type StateRecord struct {
	ID                      int64    `json:"id" yaml:"id"`
	Name                    string   `json:"name" yaml:"name"`
	Manpower                int64    `json:"manpower,omitempty" yaml:"manpower,omitempty"`
	Category                string   `json:"state_category,omitempty" yaml:"state_category,omitempty"`
	LocalSupplies           *float64 `json:"local_supplies,omitempty" yaml:"local_supplies,omitempty"`
	BuildingsMaxLevelFactor *float64 `json:"buildings_max_level_factor,omitempty" yaml:"buildings_max_level_factor,omitempty"`
	Impassable              bool     `json:"impassable,omitempty" yaml:"impassable,omitempty"`
	Provinces               []int64  `json:"provinces" yaml:"provinces"`

	Resources map[string]float64 `json:"resources,omitempty" yaml:"resources,omitempty"`

	Owner      string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Controller string   `json:"controller,omitempty" yaml:"controller,omitempty"`
	Cores      []string `json:"cores,omitempty" yaml:"cores,omitempty"`
	Claims     []string `json:"claims,omitempty" yaml:"claims,omitempty"`

	// Buildings holds state-level buildings by type.
	Buildings map[string]script.Node `json:"buildings,omitempty" yaml:"buildings,omitempty"`
	// ProvinceBuildings holds building levels for provinces of this state.
	ProvinceBuildings map[int64]map[string]int64 `json:"province_buildings,omitempty" yaml:"province_buildings,omitempty"`
	VictoryPoints     []VictoryPoint             `json:"victory_points,omitempty" yaml:"victory_points,omitempty"`

	OtherHistoryBlocks map[string][]script.Node `json:"other_history_blocks,omitempty" yaml:"other_history_blocks,omitempty"`
	OtherHistoryValues map[string][]script.Node `json:"other_history_values,omitempty" yaml:"other_history_values,omitempty"`
	// Extra keeps top-level fields with no dedicated field.
	Extra map[string][]script.Node `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// HasProvince reports whether id belongs to the state.
func (s *StateRecord) HasProvince(id int64) bool {
	return slices.Contains(s.Provinces, id)
}

var stateKeys = []string{
	"id", "name", "manpower", "state_category", "local_supplies",
	"buildings_max_level_factor", "impassable", "provinces", "resources", "history",
}

var historyKeys = []string{
	"owner", "controller", "add_core_of", "add_claim_by", "buildings", "victory_points",
}

// State extracts the state entry of doc. A file without a state entry,
// or whose id cannot be determined, is an error.
func State(doc *script.Document, opts ...Option) (*StateRecord, []script.Diagnostic, error) {
	x := newExtraction(KindState, doc, opts)
	entries := doc.EntriesNamed("state")
	if len(entries) == 0 {
		return nil, x.diags, x.fail("no state entry")
	}
	if len(entries) > 1 {
		x.warn(types.DiagMultipleEntries, entries[1].Line, "%d state entries; only the first is used", len(entries))
	}
	e := entries[0]
	b := e.Body

	rec := &StateRecord{}
	if id, ok := x.intField(b, "id"); ok {
		rec.ID = id
	}
	rec.Name, _ = x.textField(b, "name")
	if err := x.fallbackIdentity(&rec.ID, &rec.Name, b, e.Line); err != nil {
		return nil, x.diags, err
	}

	rec.Manpower, _ = x.intField(b, "manpower")
	rec.Category, _ = x.textField(b, "state_category")
	rec.LocalSupplies, _ = x.floatField(b, "local_supplies")
	rec.BuildingsMaxLevelFactor, _ = x.floatField(b, "buildings_max_level_factor")
	if s, ok := b.Scalar("impassable"); ok {
		rec.Impassable = s.Kind == script.ScalarBool && s.Bool
	}
	rec.Provinces = x.provinces(b)
	rec.Resources = x.resources(b)

	if f, ok := b.Lookup(script.Ident("history")); ok {
		for _, v := range f.Value.Values() {
			h, ok := v.(*script.Block)
			if !ok {
				x.warn(types.DiagInvalidField, f.Line, "history: expected a block, found %s", describe(v))
				continue
			}
			x.history(rec, h)
		}
	}
	rec.Extra = rest(b, stateKeys)

	x.Log(slog.LevelDebug, "state extracted",
		slog.Int64("id", rec.ID),
		slog.String("name", rec.Name),
		slog.Int("provinces", len(rec.Provinces)))
	return rec, x.diags, nil
}

// fallbackIdentity fills a missing id or name from a file name such as
// "42-Berlin.txt".
func (x *extraction) fallbackIdentity(id *int64, name *string, b *script.Block, line int) error {
	hasID := b.Has("id") && *id != 0
	if hasID && *name != "" {
		return nil
	}
	fid, fname, ok := idFromFilename(x.file)
	if !ok {
		if !hasID {
			return x.fail("no id and none derivable from the file name")
		}
		return nil
	}
	if !hasID {
		*id = fid
		x.warn(types.DiagFilenameFallback, line, "id %d taken from the file name", fid)
	}
	if *name == "" && fname != "" {
		*name = fname
		x.warn(types.DiagFilenameFallback, line, "name %q taken from the file name", fname)
	}
	return nil
}

func (x *extraction) resources(b *script.Block) map[string]float64 {
	f, ok := b.Lookup(script.Ident("resources"))
	if !ok {
		return nil
	}
	out := make(map[string]float64)
	for _, v := range f.Value.Values() {
		rb, ok := v.(*script.Block)
		if !ok {
			x.warn(types.DiagInvalidField, f.Line, "resources: expected a block, found %s", describe(v))
			continue
		}
		for _, rf := range rb.Fields() {
			s, ok := rf.Value.Last().(script.Scalar)
			amount, isNum := s.Float64()
			if !ok || !isNum {
				x.warn(types.DiagInvalidField, rf.Line, "resource %s: expected a number", rf.Key)
				continue
			}
			out[rf.Key.String()] = amount
		}
	}
	return out
}

func (x *extraction) history(rec *StateRecord, h *script.Block) {
	if s, ok := x.textField(h, "owner"); ok {
		rec.Owner = s
	}
	if s, ok := x.textField(h, "controller"); ok {
		rec.Controller = s
	}
	if m, ok := h.Get("add_core_of"); ok {
		rec.Cores = append(rec.Cores, texts(m)...)
	}
	if m, ok := h.Get("add_claim_by"); ok {
		rec.Claims = append(rec.Claims, texts(m)...)
	}
	if f, ok := h.Lookup(script.Ident("buildings")); ok {
		for _, v := range f.Value.Values() {
			bb, ok := v.(*script.Block)
			if !ok {
				x.warn(types.DiagInvalidBuilding, f.Line, "buildings: expected a block, found %s", describe(v))
				continue
			}
			x.buildings(rec, bb)
		}
	}
	if f, ok := h.Lookup(script.Ident("victory_points")); ok {
		rec.VictoryPoints = append(rec.VictoryPoints, x.victoryPoints(f)...)
	}

	for _, f := range h.Fields() {
		if f.Key.Kind == script.KeyIdent && slices.Contains(historyKeys, f.Key.Name) {
			continue
		}
		key := f.Key.String()
		for _, v := range f.Value.Values() {
			if _, ok := v.(script.Scalar); ok {
				if rec.OtherHistoryValues == nil {
					rec.OtherHistoryValues = make(map[string][]script.Node)
				}
				rec.OtherHistoryValues[key] = append(rec.OtherHistoryValues[key], v)
				continue
			}
			if rec.OtherHistoryBlocks == nil {
				rec.OtherHistoryBlocks = make(map[string][]script.Node)
			}
			rec.OtherHistoryBlocks[key] = append(rec.OtherHistoryBlocks[key], v)
		}
	}
}

// buildings splits a buildings block into province buildings, keyed by
// a province of the state, and state buildings.
func (x *extraction) buildings(rec *StateRecord, b *script.Block) {
	for _, f := range b.Fields() {
		if f.Key.Kind == script.KeyInt && rec.HasProvince(f.Key.Int) {
			for _, v := range f.Value.Values() {
				pb, ok := v.(*script.Block)
				if !ok {
					x.warn(types.DiagInvalidBuilding, f.Line, "province %d buildings: expected a block, found %s", f.Key.Int, describe(v))
					continue
				}
				x.provinceBuildings(rec, f.Key.Int, pb)
			}
			continue
		}
		if f.Key.Kind == script.KeyInt {
			x.Trace("building key is not a province of the state", slog.Int64("key", f.Key.Int))
		}
		if _, multi := f.Value.(script.Multiple); multi {
			x.warn(types.DiagInvalidBuilding, f.Line, "building %s set more than once; the last value is kept", f.Key)
		}
		if rec.Buildings == nil {
			rec.Buildings = make(map[string]script.Node)
		}
		rec.Buildings[f.Key.String()] = f.Value.Last()
	}
}

func (x *extraction) provinceBuildings(rec *StateRecord, id int64, b *script.Block) {
	if rec.ProvinceBuildings == nil {
		rec.ProvinceBuildings = make(map[int64]map[string]int64)
	}
	levels := rec.ProvinceBuildings[id]
	if levels == nil {
		levels = make(map[string]int64)
		rec.ProvinceBuildings[id] = levels
	}
	for _, f := range b.Fields() {
		s, ok := f.Value.Last().(script.Scalar)
		level, isInt := s.Int64()
		if !ok || !isInt {
			x.warn(types.DiagInvalidBuilding, f.Line, "province %d building %s: expected a level", id, f.Key)
			continue
		}
		levels[f.Key.String()] = level
	}
}

// victoryPoints flattens every victory_points value into one number
// sequence and pairs it up as province, value.
func (x *extraction) victoryPoints(f *script.Field) []VictoryPoint {
	var nums []script.Scalar
	for _, n := range flatten(f.Value) {
		s, ok := n.(script.Scalar)
		if !ok || !s.IsNumber() {
			x.warn(types.DiagVictoryPointValue, f.Line, "victory point value %s is not a number", describe(n))
			continue
		}
		nums = append(nums, s)
	}
	if len(nums)%2 != 0 {
		x.warn(types.DiagVictoryPointsOdd, f.Line, "victory_points has an odd count of %d numbers; the last is dropped", len(nums))
		nums = nums[:len(nums)-1]
	}
	out := make([]VictoryPoint, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		prov, ok := nums[i].Int64()
		if !ok {
			x.warn(types.DiagVictoryPointValue, f.Line, "victory point province %s is not a whole number", nums[i].Text)
			continue
		}
		value, _ := nums[i+1].Float64()
		out = append(out, VictoryPoint{Province: prov, Value: value})
	}
	return out
}

// rest collects the fields of b whose keys are not in known, or nil.
func rest(b *script.Block, known []string) map[string][]script.Node {
	out := make(map[string][]script.Node)
	for _, f := range b.Fields() {
		if f.Key.Kind == script.KeyIdent && slices.Contains(known, f.Key.Name) {
			continue
		}
		out[f.Key.String()] = append(out[f.Key.String()], f.Value.Values()...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func appendUnique(dst []string, items ...string) []string {
	for _, s := range items {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
