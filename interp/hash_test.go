package interp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashInsertLookup(t *testing.T) {
	h := NewHashTable(4)
	h.Insert("a", 1)
	h.Insert("b", 2)

	v, ok := h.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = h.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = h.Lookup("missing")
	assert.False(t, ok)
}

func TestHashReplaceCounts(t *testing.T) {
	h := NewHashTable(4)
	h.Insert("a", 1)
	h.Insert("a", 2)
	assert.Equal(t, 1, h.ReplaceCount())
	assert.Equal(t, 1, h.Len())

	v, ok := h.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestHashDelete(t *testing.T) {
	h := NewHashTable(4)
	h.Insert("a", 1)
	assert.True(t, h.Delete("a"))
	assert.False(t, h.Delete("a"))
	_, ok := h.Lookup("a")
	assert.False(t, ok)
}

func TestHashGrowsAtLoadFactor(t *testing.T) {
	h := NewHashTable(4)
	for i := 0; i < 10; i++ {
		h.Insert(fmt.Sprintf("k%d", i), i)
	}
	assert.GreaterOrEqual(t, len(h.bins), 8, "table should have grown past its initial 4 bins")
	for i := 0; i < 10; i++ {
		v, ok := h.Lookup(fmt.Sprintf("k%d", i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestHashForeachResumable(t *testing.T) {
	h := NewHashTable(4)
	for i := 0; i < 5; i++ {
		h.Insert(fmt.Sprintf("k%d", i), i)
	}
	seen := map[string]bool{}
	calls := 0
	for {
		r := h.Foreach(func(k string, v interface{}) interface{} {
			calls++
			return k
		})
		if r == nil {
			break
		}
		seen[r.(string)] = true
	}
	assert.Equal(t, 5, calls)
	assert.Len(t, seen, 5)
	h.ResetForeach()
}
