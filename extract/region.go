package extract

import (
	"log/slog"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// WeatherPeriod is one weather.period block of a strategic region.
// Between and the temperatures are nil when absent or not numeric; in
// the latter case the raw value is kept in Fields.
type WeatherPeriod struct {
	Between             []float64     `json:"between,omitempty" yaml:"between,omitempty"`
	Temperature         []float64     `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TemperatureDayNight []float64     `json:"temperature_day_night,omitempty" yaml:"temperature_day_night,omitempty"`
	Fields              *script.Block `json:"fields" yaml:"fields"`
}

// StrategicRegionRecord is the content of a map/strategicregions file.
type StrategicRegionRecord struct {
	ID           int64                    `json:"id" yaml:"id"`
	Name         string                   `json:"name" yaml:"name"`
	Provinces    []int64                  `json:"provinces" yaml:"provinces"`
	NavalTerrain string                   `json:"naval_terrain,omitempty" yaml:"naval_terrain,omitempty"`
	Weather      []WeatherPeriod          `json:"weather,omitempty" yaml:"weather,omitempty"`
	Extra        map[string][]script.Node `json:"extra,omitempty" yaml:"extra,omitempty"`
}

var regionKeys = []string{"id", "name", "provinces", "naval_terrain", "weather"}

// StrategicRegion extracts the strategic_region entry of doc.
func StrategicRegion(doc *script.Document, opts ...Option) (*StrategicRegionRecord, []script.Diagnostic, error) {
	x := newExtraction(KindRegion, doc, opts)
	entries := doc.EntriesNamed("strategic_region")
	if len(entries) == 0 {
		return nil, x.diags, x.fail("no strategic_region entry")
	}
	if len(entries) > 1 {
		x.warn(types.DiagMultipleEntries, entries[1].Line, "%d strategic_region entries; only the first is used", len(entries))
	}
	e := entries[0]
	b := e.Body

	rec := &StrategicRegionRecord{}
	if id, ok := x.intField(b, "id"); ok {
		rec.ID = id
	}
	rec.Name, _ = x.textField(b, "name")
	if err := x.fallbackIdentity(&rec.ID, &rec.Name, b, e.Line); err != nil {
		return nil, x.diags, err
	}
	rec.Provinces = x.provinces(b)
	rec.NavalTerrain, _ = x.textField(b, "naval_terrain")

	if f, ok := b.Lookup(script.Ident("weather")); ok {
		for _, v := range f.Value.Values() {
			wb, ok := v.(*script.Block)
			if !ok {
				x.warn(types.DiagInvalidField, f.Line, "weather: expected a block, found %s", describe(v))
				continue
			}
			pf, ok := wb.Lookup(script.Ident("period"))
			if !ok {
				continue
			}
			for _, pv := range pf.Value.Values() {
				pb, ok := pv.(*script.Block)
				if !ok {
					x.warn(types.DiagInvalidField, pf.Line, "weather period: expected a block, found %s", describe(pv))
					continue
				}
				rec.Weather = append(rec.Weather, weatherPeriod(pb))
			}
		}
	}
	rec.Extra = rest(b, regionKeys)

	x.Log(slog.LevelDebug, "strategic region extracted",
		slog.Int64("id", rec.ID),
		slog.Int("provinces", len(rec.Provinces)),
		slog.Int("periods", len(rec.Weather)))
	return rec, x.diags, nil
}

func weatherPeriod(b *script.Block) WeatherPeriod {
	p := WeatherPeriod{Fields: script.NewBlock()}
	for _, f := range b.Fields() {
		var dst *[]float64
		if f.Key.Kind == script.KeyIdent {
			switch f.Key.Name {
			case "between":
				dst = &p.Between
			case "temperature":
				dst = &p.Temperature
			case "temperature_day_night":
				dst = &p.TemperatureDayNight
			}
		}
		if dst != nil {
			if _, single := f.Value.(script.Single); single {
				if nums, ok := numbers(f.Value.Last()); ok {
					*dst = nums
					continue
				}
			}
		}
		for _, v := range f.Value.Values() {
			p.Fields.AddAt(f.Key, v, f.Line, f.Column)
		}
	}
	return p
}
