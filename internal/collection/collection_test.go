package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_SetKeepsInsertionOrder(t *testing.T) {
	c := New()
	c.Set("title", "first")
	c.Set("id", 1)
	c.Set("title", "second")

	assert.Equal(t, []string{"title", "id"}, c.Keys())
	assert.Equal(t, "second", c.Get("title"))
	assert.Equal(t, 2, c.Len())
}

func TestCollection_AddUsesIntegerKeys(t *testing.T) {
	c := New()
	c.Set("name", "x")
	k0 := c.Add(map[string]any{"id": 1})
	k1 := c.Add(map[string]any{"id": 2})

	assert.Equal(t, "0", k0)
	assert.Equal(t, "1", k1)
	require.Len(t, c.Rows(), 2)
	assert.Equal(t, map[string]any{"name": "x"}, c.Map())
}

func TestCollection_AddAfterExplicitIntegerKey(t *testing.T) {
	c := New()
	c.Set("5", "five")
	assert.Equal(t, "6", c.Add("six"))
}

func TestCollection_FromMapIsSorted(t *testing.T) {
	c := FromMap(map[string]any{"b": 2, "a": 1, "c": 3})
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
}

func TestCollection_Delete(t *testing.T) {
	c := FromMap(map[string]any{"a": 1, "b": 2})
	c.Delete("a")
	c.Delete("missing")

	assert.False(t, c.Has("a"))
	assert.Equal(t, []string{"b"}, c.Keys())
}

func TestCollection_Each(t *testing.T) {
	c := FromMap(map[string]any{"a": 1, "b": 2, "c": 3})
	var seen []string
	c.Each(func(key string, _ any) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger("0"))
	assert.True(t, IsInteger("42"))
	assert.False(t, IsInteger(""))
	assert.False(t, IsInteger("id"))
	assert.False(t, IsInteger("1a"))
}
