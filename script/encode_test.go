package script

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleBlock() *Block {
	flags := NewBlock()
	flags.Add(Ident("flag"), BoolValue(true))

	b := NewBlock()
	b.Add(Ident("z"), IntValue(1))
	b.Add(Ident("a"), flags)
	b.Add(Ident("color"), &Tagged{Tag: "rgb", Value: NewList(IntValue(1), IntValue(2), IntValue(3))})
	b.Add(Ident("z"), FloatValue(2.5))
	b.Add(DateKey("1936.1.1"), StringValue("x"))
	b.Add(Ident("empty"), NewList())
	return b
}

func TestBlockJSONKeepsFieldOrder(t *testing.T) {
	data, err := json.Marshal(sampleBlock())
	require.NoError(t, err)
	assert.Equal(t,
		`{"z":[1,2.5],"a":{"flag":true},"color":{"rgb":[1,2,3]},"1936.1.1":"x","empty":[]}`,
		string(data))
}

func TestBlockYAMLKeepsFieldOrder(t *testing.T) {
	b := NewBlock()
	b.Add(Ident("z"), IntValue(1))
	b.Add(Ident("a"), IdentValue("x"))
	b.Add(IntKey(42), FloatValue(0.5))

	data, err := yaml.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, "z: 1\na: x\n\"42\": 0.5\n", string(data))
}

func TestEntryJSON(t *testing.T) {
	body := NewBlock()
	body.Add(Ident("name"), StringValue("Type VII"))
	e := &Entry{Name: "units", Scope: SingleCountry("GER"), Body: body}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"units","scope":{"tags":["GER"]},"body":{"name":"Type VII"}}`, string(data))

	e.Scope = nil
	data, err = json.Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"units","body":{"name":"Type VII"}}`, string(data))
}
