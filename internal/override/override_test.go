package override

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxkit/clausewitz/internal/parser"
	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

func variant(t *testing.T, src string) *script.Block {
	t.Helper()
	doc, err := parser.New([]byte("x = { v = {\n"+src+"\n} }"), "", nil, script.DefaultConfig()).Parse()
	require.NoError(t, err)
	b, ok := doc.Entries[0].Body.Block("v")
	require.True(t, ok)
	return b
}

func TestOverrideProvenance(t *testing.T) {
	b := variant(t, `#@override.name("X")
name = "orig"`)
	diags := Resolve(b, nil)
	assert.Empty(t, diags)

	assert.Equal(t, "X", b.Text("name"))
	assert.Equal(t, "orig", b.Text("original_name"))
	flag, ok := b.Scalar("name_overridden")
	require.True(t, ok)
	assert.Equal(t, script.BoolValue(true), flag)
	assert.Empty(t, b.Directives)
}

func TestOverrideFirstWins(t *testing.T) {
	b := variant(t, `name = "orig"
#@override.name("X")
#@override.name("Y")`)
	Resolve(b, nil)
	assert.Equal(t, "Y", b.Text("name"))
	assert.Equal(t, "orig", b.Text("original_name"))
}

func TestOverrideMovesMergedValue(t *testing.T) {
	b := variant(t, `#@override.module("a")
module = b
module = c`)
	Resolve(b, nil)

	m, ok := b.Get("original_module")
	require.True(t, ok)
	multi, ok := m.(script.Multiple)
	require.True(t, ok)
	assert.Equal(t, []script.Node{script.IdentValue("b"), script.IdentValue("c")}, multi.Nodes)

	m, _ = b.Get("module")
	_, single := m.(script.Single)
	assert.True(t, single)
}

func TestOverrideBodyMergedAfterRewrite(t *testing.T) {
	b := variant(t, `#@override.type("heavy") = { type = extra armor = 5 }
type = light`)
	Resolve(b, nil)

	m, _ := b.Get("type")
	multi, ok := m.(script.Multiple)
	require.True(t, ok, "body statements merge with the rewritten key")
	assert.Equal(t, []script.Node{script.StringValue("heavy"), script.IdentValue("extra")}, multi.Nodes)
	assert.Equal(t, "5", b.Text("armor"))
	assert.Equal(t, "light", b.Text("original_type"))
}

func TestOverrideMissingTarget(t *testing.T) {
	b := variant(t, `#@override.name("X")
type = light`)
	diags := Resolve(b, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, types.DiagOverrideTargetMissing, diags[0].Code)
	assert.Equal(t, 2, diags[0].Line)

	assert.Equal(t, "X", b.Text("name"))
	assert.False(t, b.Has("original_name"))
	assert.True(t, b.Has("name_overridden"))
}

func TestResolveTwiceIsNoop(t *testing.T) {
	b := variant(t, `#@override.name("X")
name = "orig"`)
	Resolve(b, nil)
	before := b.Clone()
	Resolve(b, nil)
	assert.True(t, script.Equal(before, b))
}

func TestOverridden(t *testing.T) {
	b := variant(t, `#@override.name("X")
#@override.type("T")
name = a
type = b
armor_overridden = no`)
	Resolve(b, nil)
	assert.Equal(t, []string{"name", "type"}, Overridden(b))
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "original_name", OriginalKey("name"))
	assert.Equal(t, "name_overridden", FlagKey("name"))
}
