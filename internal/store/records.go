package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/pdxkit/clausewitz/extract"
)

// Records flattens an extraction result into storable records, one per
// variant, state, region, country color or name.
func Records(res *extract.Result, file, hash string) ([]Record, error) {
	var out []Record
	add := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s %q: %w", res.Kind, key, err)
		}
		out = append(out, Record{Kind: string(res.Kind), Key: key, File: file, Hash: hash, Data: data})
		return nil
	}

	switch v := res.Value.(type) {
	case map[string]*extract.Variant:
		for _, name := range slices.Sorted(maps.Keys(v)) {
			if err := add(name, v[name]); err != nil {
				return nil, err
			}
		}
	case map[string]map[string]*extract.Variant:
		for _, tag := range slices.Sorted(maps.Keys(v)) {
			roster := v[tag]
			for _, name := range slices.Sorted(maps.Keys(roster)) {
				// Type aliases point at a variant already stored under its name.
				if roster[name].Name != name {
					continue
				}
				if err := add(tag+"/"+name, roster[name]); err != nil {
					return nil, err
				}
			}
		}
	case *extract.StateRecord:
		if err := add(strconv.FormatInt(v.ID, 10), v); err != nil {
			return nil, err
		}
	case *extract.StrategicRegionRecord:
		if err := add(strconv.FormatInt(v.ID, 10), v); err != nil {
			return nil, err
		}
	case map[string]extract.RGB:
		for _, tag := range slices.Sorted(maps.Keys(v)) {
			if err := add(tag, v[tag]); err != nil {
				return nil, err
			}
		}
	case []extract.NameRecord:
		for i, n := range v {
			key := fmt.Sprintf("%s/%s/%d/%d", n.Category, n.Group, n.Ordinal, i)
			if err := add(key, n); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unsupported record value %T", res.Value)
	}
	return out, nil
}
