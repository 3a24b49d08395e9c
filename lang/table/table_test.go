package table_test

import (
	"testing"

	"github.com/mna/wisp/lang/table"
	"github.com/stretchr/testify/require"
)

func hashInt(k int) uint32 { return uint32(k) }

func TestSetGet(t *testing.T) {
	tb := table.New[int, string](hashInt)
	tb.Set(1, "one")
	tb.Set(2, "two")

	v, ok := tb.Get(1)
	require.True(t, ok)
	require.Equal(t, "one", v)

	v, ok = tb.Get(2)
	require.True(t, ok)
	require.Equal(t, "two", v)

	_, ok = tb.Get(3)
	require.False(t, ok)
}

func TestOverwrite(t *testing.T) {
	tb := table.New[int, string](hashInt)
	isNew := tb.Set(1, "one")
	require.True(t, isNew)
	isNew = tb.Set(1, "uno")
	require.False(t, isNew)

	v, ok := tb.Get(1)
	require.True(t, ok)
	require.Equal(t, "uno", v)
	require.Equal(t, 1, tb.Len())
}

func TestDeleteAndTombstoneProbing(t *testing.T) {
	tb := table.New[int, string](hashInt)
	// force collisions: hash of the key mod capacity, with capacity 8 these
	// all collide with i and i+8.
	tb.Set(1, "a")
	tb.Set(9, "b") // collides with 1 mod 8
	require.True(t, tb.Delete(1))

	// even though slot for key 1 is now a tombstone, probing must still find 9
	v, ok := tb.Get(9)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = tb.Get(1)
	require.False(t, ok)
}

func TestGrowRehashes(t *testing.T) {
	tb := table.New[int, string](hashInt)
	for i := 0; i < 100; i++ {
		tb.Set(i, string(rune('a'+i%26)))
	}
	require.Equal(t, 100, tb.Len())
	for i := 0; i < 100; i++ {
		v, ok := tb.Get(i)
		require.True(t, ok)
		require.Equal(t, string(rune('a'+i%26)), v)
	}
}

func TestEach(t *testing.T) {
	tb := table.New[int, string](hashInt)
	tb.Set(1, "a")
	tb.Set(2, "b")
	seen := map[int]string{}
	tb.Each(func(k int, v string) { seen[k] = v })
	require.Equal(t, map[int]string{1: "a", 2: "b"}, seen)
}
