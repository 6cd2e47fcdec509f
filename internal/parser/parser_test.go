package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

func parse(t *testing.T, src string) *script.Document {
	t.Helper()
	doc, err := New([]byte(src), "test.txt", nil, script.StrictConfig()).Parse()
	require.NoError(t, err)
	return doc
}

func parseErr(t *testing.T, src string) *script.SyntaxError {
	t.Helper()
	doc, err := New([]byte(src), "bad.txt", nil, script.DefaultConfig()).Parse()
	require.Error(t, err)
	assert.Nil(t, doc)
	var serr *script.SyntaxError
	require.ErrorAs(t, err, &serr)
	return serr
}

func body(t *testing.T, src string) *script.Block {
	t.Helper()
	doc := parse(t, src)
	require.Len(t, doc.Entries, 1)
	return doc.Entries[0].Body
}

func TestParseEmptyDocument(t *testing.T) {
	doc := parse(t, "# only a comment\n")
	assert.Empty(t, doc.Entries)
	assert.Equal(t, "test.txt", doc.Filename)
}

func TestParseNamedBlocks(t *testing.T) {
	doc := parse(t, "state = { id = 1 }\nstrategic_region = { id = 2 }")
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, "state", doc.Entries[0].Name)
	assert.Equal(t, "strategic_region", doc.Entries[1].Name)
	assert.Equal(t, 1, doc.Entries[0].Line)
	assert.Equal(t, 2, doc.Entries[1].Line)
	assert.Nil(t, doc.Entries[0].Scope)
}

func TestParseScalars(t *testing.T) {
	b := body(t, `x = {
		ident = infantry
		int = -42
		float = 0.25
		str = "Panzer IV"
		yes_flag = yes
		no_flag = no
		date = 1936.1.1
	}`)

	check := func(name string, want script.Scalar) {
		t.Helper()
		got, ok := b.Scalar(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}
	check("ident", script.IdentValue("infantry"))
	check("int", script.IntValue(-42))
	check("float", script.Scalar{Kind: script.ScalarFloat, Text: "0.25", Float: 0.25})
	check("str", script.StringValue("Panzer IV"))
	check("yes_flag", script.BoolValue(true))
	check("no_flag", script.BoolValue(false))
	check("date", script.DateValue("1936.1.1"))
}

func TestDuplicateKeyMerge(t *testing.T) {
	for count := 1; count <= 5; count++ {
		t.Run(fmt.Sprintf("count=%d", count), func(t *testing.T) {
			var sb strings.Builder
			sb.WriteString("K = { ")
			for i := 1; i <= count; i++ {
				fmt.Fprintf(&sb, "A=%d ", i)
			}
			sb.WriteString("}")

			m, ok := body(t, sb.String()).Get("A")
			require.True(t, ok)
			if count == 1 {
				single, ok := m.(script.Single)
				require.True(t, ok, "one occurrence must be Single, got %T", m)
				assert.Equal(t, script.IntValue(1), single.Node)
				return
			}
			multi, ok := m.(script.Multiple)
			require.True(t, ok, "repeated key must be Multiple, got %T", m)
			require.Len(t, multi.Nodes, count)
			for i, n := range multi.Nodes {
				assert.Equal(t, script.IntValue(int64(i+1)), n)
			}
		})
	}
}

func TestMergeKeepsFirstOccurrenceOrder(t *testing.T) {
	b := body(t, "x = { a = 1 b = 2 a = 3 c = 4 }")
	var keys []string
	for _, f := range b.Fields() {
		keys = append(keys, f.Key.String())
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestKeyForms(t *testing.T) {
	b := body(t, `history = {
		owner = GER
		100 = { infrastructure = 2 }
		set_variable.foo = 3
		1939.9.1 = { controller = POL }
		1.5 = x
	}`)
	keys := make([]script.Key, 0, b.Len())
	for _, f := range b.Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []script.Key{
		script.Ident("owner"),
		script.IntKey(100),
		script.Qualified("set_variable", "foo"),
		script.DateKey("1939.9.1"),
		script.Ident("1.5"),
	}, keys)
}

func TestCompositeValue(t *testing.T) {
	b := body(t, "x = { tooltip = mio:mio_key other = a }")
	s, ok := b.Scalar("tooltip")
	require.True(t, ok)
	assert.Equal(t, script.ScalarString, s.Kind)
	assert.Equal(t, "mio:mio_key", s.Text)
	assert.Equal(t, "a", b.Text("other"))
}

func TestBareList(t *testing.T) {
	b := body(t, `x = { provinces = { 1 2 3 } names = { "A" "B" } mixed = { a 1 "s" yes } }`)

	m, _ := b.Get("provinces")
	list, ok := m.Last().(*script.List)
	require.True(t, ok)
	assert.Equal(t, []script.Node{script.IntValue(1), script.IntValue(2), script.IntValue(3)}, list.Items)

	m, _ = b.Get("mixed")
	list = m.Last().(*script.List)
	assert.Equal(t, []script.Node{
		script.IdentValue("a"), script.IntValue(1), script.StringValue("s"), script.BoolValue(true),
	}, list.Items)
}

func TestEmptyBlockIsStatementBlock(t *testing.T) {
	b := body(t, "x = { empty = { } }")
	inner, ok := b.Block("empty")
	require.True(t, ok, "empty braces must parse as an empty block")
	assert.Equal(t, 0, inner.Len())
}

func TestBodyFormDecidedByFirstItem(t *testing.T) {
	// A body that starts with a key/= pair is statements; one that starts
	// with a value is a list, and a later = inside it is an error.
	b := body(t, "x = { a = { b = 1 } }")
	_, ok := b.Block("a")
	assert.True(t, ok)

	err := parseErr(t, "x = { a = { 1 b = 2 } }")
	assert.Equal(t, "value", err.Expected)
	assert.Equal(t, "'='", err.Found)
}

func TestNestedLists(t *testing.T) {
	b := body(t, "x = { victory_points = { { 10 5 } { 20 3 } } }")
	m, _ := b.Get("victory_points")
	outer := m.Last().(*script.List)
	require.Len(t, outer.Items, 2)
	inner, ok := outer.Items[1].(*script.List)
	require.True(t, ok)
	assert.Equal(t, []script.Node{script.IntValue(20), script.IntValue(3)}, inner.Items)
}

func TestTaggedValue(t *testing.T) {
	b := body(t, "GER = { color = rgb { 80 80 80 } color_ui = HSV { 0.1 0.5 0.9 } }")
	m, _ := b.Get("color")
	tagged, ok := m.Last().(*script.Tagged)
	require.True(t, ok)
	assert.Equal(t, "rgb", tagged.Tag)
	assert.Equal(t, 3, len(tagged.Value.(*script.List).Items))

	m, _ = b.Get("color_ui")
	assert.Equal(t, "HSV", m.Last().(*script.Tagged).Tag)
}

func TestBracketList(t *testing.T) {
	b := body(t, "x = { for_countries = [ GER, ITA JAP ] }")
	m, _ := b.Get("for_countries")
	list := m.Last().(*script.List)
	assert.Equal(t, []script.Node{
		script.IdentValue("GER"), script.IdentValue("ITA"), script.IdentValue("JAP"),
	}, list.Items)
}

func TestCountryScope(t *testing.T) {
	doc := parse(t, `
a = {
	#@COUNTRY = "GER"
	x = 1
}
b = {
	#@COUNTRIES = [ENG, "FRA", ENG]
	x = 2
}`)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, script.SingleCountry("GER"), doc.Entries[0].Scope)
	assert.Equal(t, &script.CountryScope{Tags: []string{"ENG", "FRA"}, Many: true}, doc.Entries[1].Scope)
	assert.Equal(t, "1", doc.Entries[0].Body.Text("x"))
}

func TestMisplacedScopeWarns(t *testing.T) {
	doc := parse(t, "a = {\n x = 1\n #@COUNTRY = \"GER\"\n y = 2\n}")
	e := doc.Entries[0]
	assert.Nil(t, e.Scope)
	assert.True(t, e.Body.Has("y"))
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, types.DiagMisplacedScope, doc.Diagnostics[0].Code)
	assert.Equal(t, 3, doc.Diagnostics[0].Line)
}

func TestUnknownMarkerSkipsLine(t *testing.T) {
	doc := parse(t, "a = {\n #@todo fix = this\n y = 2\n}")
	b := doc.Entries[0].Body
	assert.False(t, b.Has("fix"))
	assert.True(t, b.Has("y"))
	require.Len(t, doc.Diagnostics, 1)
	assert.Equal(t, types.DiagUnknownMarker, doc.Diagnostics[0].Code)
	assert.Equal(t, "test.txt", doc.Diagnostics[0].File)
}

func TestOverrideDirectivesCollected(t *testing.T) {
	b := body(t, `x = {
		create_equipment_variant = {
			#@override.name("X")
			name = "orig"
			#@override.type("ship_hull_heavy_2") = { role_icon_index = 3 }
			type = ship_hull_heavy_1
		}
	}`)
	v, ok := b.Block("create_equipment_variant")
	require.True(t, ok)
	require.Len(t, v.Directives, 2)

	d := v.Directives[0]
	assert.Equal(t, "name", d.Key)
	assert.Equal(t, "X", d.Value)
	assert.Nil(t, d.Body)
	assert.Equal(t, 3, d.Line)

	d = v.Directives[1]
	assert.Equal(t, "type", d.Key)
	require.NotNil(t, d.Body)
	assert.Equal(t, "3", d.Body.Text("role_icon_index"))

	// The parser does not apply directives.
	assert.Equal(t, "orig", v.Text("name"))
}

func TestOverrideOnlyBodyIsStatementBlock(t *testing.T) {
	b := body(t, "x = { v = {\n#@override.name(\"X\")\n} }")
	v, ok := b.Block("v")
	require.True(t, ok)
	assert.Equal(t, 0, v.Len())
	assert.Len(t, v.Directives, 1)
}

func TestMalformedOverrideIsSyntaxError(t *testing.T) {
	err := parseErr(t, "x = {\n #@override.name(X)\n}")
	assert.Equal(t, "override value string", err.Expected)
	assert.Equal(t, 2, err.Line)
}

func TestIllegalCharacterResilience(t *testing.T) {
	clean := "state = {\n\tid = 1\n\tname = \"STATE_1\"\n\tprovinces = { 1 2 }\n}\n"
	dirty := "state = {\n\tid = 1 ^\n\tname = \"STATE_1\"\n\tprovinces = { 1 $2 }\n}\n"

	want := parse(t, clean)
	got := parse(t, dirty)

	require.Len(t, got.Entries, len(want.Entries))
	for i := range want.Entries {
		assert.Equal(t, want.Entries[i].Name, got.Entries[i].Name)
		assert.True(t, script.Equal(want.Entries[i].Body, got.Entries[i].Body))
	}
	require.Len(t, got.Diagnostics, 2)
	for _, d := range got.Diagnostics {
		assert.Equal(t, types.DiagIllegalCharacter, d.Code)
		assert.Equal(t, types.PhaseLexer, d.Phase)
	}
	assert.Empty(t, want.Diagnostics)
}

func TestIllegalCharacterAtLineEndKeepsPositions(t *testing.T) {
	clean := "a = {\n\tb = 1\n}\n"
	dirty := "a = {\n\tb = 1 ~\n}\n"
	assert.Equal(t, parse(t, clean).Entries, parse(t, dirty).Entries)
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
		line     int
	}{
		{"missing closing brace", "state = {\n id = 1\n", "'}'", 3},
		{"missing equals", "state { id = 1 }", "'='", 1},
		{"top level scalar", "capital = 64", "'{'", 1},
		{"top level number", "1 = { }", "block name", 1},
		{"missing value", "a = {\n b = \n}", "value", 3},
		{"key is string", `a = { "b" = 1 }`, "key", 1},
		{"unclosed bracket list", "a = { b = [ 1 2 }", "value", 1},
		{"empty countries", "a = {\n#@COUNTRIES = []\n}", "at least one country tag", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErr(t, tt.src)
			assert.Equal(t, tt.expected, err.Expected)
			assert.Equal(t, tt.line, err.Line)
			assert.Equal(t, "bad.txt", err.Filename)
			assert.True(t, errors.Is(err, script.ErrSyntax))
		})
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	err := parseErr(t, "a = {\n b = }\n")
	assert.Equal(t, `bad.txt:2:6: syntax error: expected value, found '}'`, err.Error())
}

func TestNestingLimit(t *testing.T) {
	src := "a = { b = " + strings.Repeat("{ ", maxDepth+1) + strings.Repeat("} ", maxDepth+1) + "}"
	err := parseErr(t, src)
	assert.Contains(t, err.Expected, "levels of nesting")
}

func TestDiagnosticConfigFilters(t *testing.T) {
	src := "a = { b = 1 # ok\n c = 2 @ }"
	doc, err := New([]byte(src), "", nil, script.PermissiveConfig()).Parse()
	require.NoError(t, err)
	assert.Empty(t, doc.Diagnostics)

	doc, err = New([]byte(src), "", nil, script.DefaultConfig()).Parse()
	require.NoError(t, err)
	assert.Len(t, doc.Diagnostics, 1)
}
