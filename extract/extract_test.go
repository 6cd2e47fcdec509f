package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxkit/clausewitz/internal/testutil"
	"github.com/pdxkit/clausewitz/script"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
		ok   bool
	}{
		{"history/states/42-Berlin.txt", KindState, true},
		{`C:\Games\hoi4\history\states\1-France.txt`, KindState, true},
		{"/mods/x/map/strategicregions/12-Europe.txt", KindRegion, true},
		{"common/countries/colors.txt", KindColors, true},
		{"mod/Colors.txt", KindColors, true},
		{"common/units/names_divisions/GER.txt", KindNames, true},
		{"common/units/names_ships/ENG.txt", KindNames, true},
		{"history/units/GER_1936.txt", KindDesigns, true},
		{"common/ideas/germany.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, ok := DetectKind(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("State")
	require.NoError(t, err)
	assert.Equal(t, KindState, k)

	_, err = ParseKind("provinces")
	assert.Error(t, err)
}

func TestKinds(t *testing.T) {
	assert.Equal(t, []Kind{KindColors, KindDesigns, KindEquipment, KindNames, KindRegion, KindState}, Kinds())
}

func TestRun(t *testing.T) {
	doc := testutil.ParseFixture(t, "game/history/states/7-Ruhr.txt")
	res, err := Run(KindState, doc)
	require.NoError(t, err)
	assert.Equal(t, KindState, res.Kind)
	rec, ok := res.Value.(*StateRecord)
	require.True(t, ok)
	assert.Equal(t, int64(7), rec.ID)
	assert.Len(t, res.Diagnostics, 3)

	res, err = Run(KindColors, doc)
	require.NoError(t, err)
	assert.Empty(t, res.Value)

	_, err = Run(KindRegion, doc)
	assert.ErrorIs(t, err, script.ErrExtract)

	_, err = Run(Kind("bogus"), doc)
	assert.Error(t, err)
}
