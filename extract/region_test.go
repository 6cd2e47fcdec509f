package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxkit/clausewitz/internal/testutil"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

func TestStrategicRegionFixture(t *testing.T) {
	doc := testutil.ParseFixture(t, "game/map/strategicregions/12-Central Europe.txt")
	rec, diags, err := StrategicRegion(doc)
	require.NoError(t, err)
	assert.Empty(t, diags)

	assert.Equal(t, int64(12), rec.ID)
	assert.Equal(t, "STRATEGICREGION_12", rec.Name)
	assert.Equal(t, []int64{6488, 3313, 11374, 514, 3560}, rec.Provinces)
	require.Len(t, rec.Weather, 2)

	first := rec.Weather[0]
	assert.Equal(t, []float64{0.0, 30.1}, first.Between)
	assert.Equal(t, []float64{-6.0, 4.0}, first.Temperature)
	assert.Equal(t, []float64{2.0, -2.0}, first.TemperatureDayNight)
	assert.Equal(t, 3, first.Fields.Len())
	snow, ok := first.Fields.Scalar("snow")
	require.True(t, ok)
	assert.InDelta(t, 0.1, snow.Float, 1e-9)

	second := rec.Weather[1]
	assert.Nil(t, second.Temperature, "non-numeric temperature is passed through")
	assert.Equal(t, "warm", second.Fields.Text("temperature"))
	assert.Nil(t, second.TemperatureDayNight)
}

func TestStrategicRegionScalarCoercion(t *testing.T) {
	doc := testutil.MustParse(t, "r.txt", `
strategic_region = {
	id = 3
	naval_terrain = water_deep_ocean
	weather = { period = { temperature = 5 } }
	static_modifiers = { ocean = yes }
}`)
	rec, diags, err := StrategicRegion(doc)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, "water_deep_ocean", rec.NavalTerrain)
	require.Len(t, rec.Weather, 1)
	assert.Equal(t, []float64{5}, rec.Weather[0].Temperature)
	assert.Equal(t, 0, rec.Weather[0].Fields.Len())
	require.Contains(t, rec.Extra, "static_modifiers")
}

func TestStrategicRegionMissing(t *testing.T) {
	doc := testutil.MustParse(t, "r.txt", `state = { id = 1 }`)
	_, _, err := StrategicRegion(doc)
	assert.ErrorIs(t, err, script.ErrExtract)
}

func TestStrategicRegionWeatherNotBlock(t *testing.T) {
	doc := testutil.MustParse(t, "r.txt", `strategic_region = { id = 1 weather = none }`)
	rec, diags, err := StrategicRegion(doc)
	require.NoError(t, err)
	assert.Empty(t, rec.Weather)
	assert.Equal(t, []string{types.DiagInvalidField}, testutil.Codes(diags))
}
