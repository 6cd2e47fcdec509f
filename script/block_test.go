package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockMergeArity(t *testing.T) {
	b := NewBlock()
	b.Add(Ident("a"), IntValue(1))
	b.Add(Ident("b"), IntValue(2))

	m, ok := b.Get("a")
	require.True(t, ok)
	assert.IsType(t, Single{}, m)

	b.Add(Ident("a"), IntValue(3))
	b.Add(Ident("a"), IntValue(4))
	m, _ = b.Get("a")
	multi, ok := m.(Multiple)
	require.True(t, ok)
	assert.Equal(t, []Node{IntValue(1), IntValue(3), IntValue(4)}, multi.Nodes)
	assert.Equal(t, IntValue(4), m.Last())

	assert.Equal(t, 2, b.Len(), "duplicates do not add fields")
	assert.Equal(t, Ident("a"), b.Fields()[0].Key)
}

func TestBlockKeysAreDistinctByKind(t *testing.T) {
	b := NewBlock()
	b.Add(Ident("1936.1.1"), IntValue(1))
	b.Add(DateKey("1936.1.1"), IntValue(2))
	b.Add(IntKey(7), IntValue(3))
	b.Add(Qualified("modifier", "army"), IntValue(4))
	assert.Equal(t, 4, b.Len())

	var keys []string
	for _, f := range b.Fields() {
		keys = append(keys, f.Key.String())
	}
	assert.Equal(t, []string{"1936.1.1", "1936.1.1", "7", "modifier.army"}, keys)
}

func TestBlockSetKeepsPosition(t *testing.T) {
	b := NewBlock()
	b.Add(Ident("a"), IntValue(1))
	b.Add(Ident("b"), IntValue(2))
	b.Add(Ident("a"), IntValue(3))
	b.Set(Ident("a"), StringValue("x"))
	b.Set(Ident("c"), IntValue(5))

	assert.Equal(t, "x", b.Text("a"))
	m, _ := b.Get("a")
	assert.IsType(t, Single{}, m)
	require.Equal(t, 3, b.Len())
	assert.Equal(t, Ident("a"), b.Fields()[0].Key)
	assert.Equal(t, Ident("c"), b.Fields()[2].Key)
}

func TestBlockMerge(t *testing.T) {
	a := NewBlock()
	a.Add(Ident("x"), IntValue(1))
	other := NewBlock()
	other.Add(Ident("x"), IntValue(2))
	other.Add(Ident("y"), IntValue(3))

	a.Merge(other)
	a.Merge(nil)
	m, _ := a.Get("x")
	assert.Equal(t, []Node{IntValue(1), IntValue(2)}, m.Values())
	assert.True(t, a.Has("y"))
}

func TestBlockClone(t *testing.T) {
	inner := NewBlock()
	inner.Add(Ident("armor"), IntValue(1))
	b := NewBlock()
	b.Add(Ident("stats"), inner)
	b.Add(Ident("tags"), NewList(IdentValue("a"), IdentValue("b")))
	b.Directives = []Directive{{Key: "name", Value: "x", Body: NewBlock()}}

	c := b.Clone()
	require.True(t, Equal(b, c))

	stats, ok := c.Block("stats")
	require.True(t, ok)
	stats.Set(Ident("armor"), IntValue(9))
	armor, _ := inner.Scalar("armor")
	assert.Equal(t, int64(1), armor.Int)
	assert.NotSame(t, b.Directives[0].Body, c.Directives[0].Body)
	assert.False(t, Equal(b, c))
}

func TestScalarNumbers(t *testing.T) {
	n, ok := FloatValue(3.0).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = FloatValue(3.5).Int64()
	assert.False(t, ok)

	f, ok := IntValue(2).Float64()
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	_, ok = StringValue("2").Float64()
	assert.False(t, ok)
	assert.True(t, IntValue(1).IsNumber())
	assert.False(t, BoolValue(true).IsNumber())
}

func TestManyCountriesDeduplicates(t *testing.T) {
	s := ManyCountries("GER", "ITA", "GER")
	assert.Equal(t, []string{"GER", "ITA"}, s.Tags)
	assert.True(t, s.Many)
	assert.False(t, SingleCountry("GER").Many)
}
