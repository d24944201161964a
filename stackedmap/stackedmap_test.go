// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranchess/staking-go/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := map[string]string{"base": "from-src"}
	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})

	sm.Push()
	sm.Put("a", "1")

	v, ok, err := sm.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	// falls through to the source
	v, ok, err = sm.Get("base")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-src", v)

	_, ok, err = sm.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	depth := sm.Push()
	assert.Equal(t, 2, depth)
	sm.Put("a", "2")
	sm.Put("b", "1")

	v, _, _ = sm.Get("a")
	assert.Equal(t, "2", v)

	sm.Pop()
	v, _, _ = sm.Get("a")
	assert.Equal(t, "1", v, "pop must restore the previous value")
	_, ok, _ = sm.Get("b")
	assert.False(t, ok, "pop must discard keys of the dropped level")
}

func TestStackedMapPopTo(t *testing.T) {
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	sm.Push()
	sm.Put("k", "0")
	checkpoint := sm.Push()
	sm.Put("k", "1")
	sm.Push()
	sm.Put("k", "2")

	sm.PopTo(checkpoint)
	assert.Equal(t, checkpoint, sm.Depth())

	v, ok, err := sm.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0", v)
}

func TestStackedMapRepeatedPutsSameLevel(t *testing.T) {
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	sm.Push()
	sm.Push()
	for i := 0; i < 10; i++ {
		sm.Put("k", "x")
	}
	sm.Pop()

	_, ok, err := sm.Get("k")
	require.NoError(t, err)
	assert.False(t, ok, "all puts of the level must be reverted by one pop")
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	sm.Push()
	sm.Put("a", "1")
	sm.Push()
	sm.Put("a", "2")
	sm.Put("b", "3")

	var got []string
	sm.Journal(func(key, value string) bool {
		got = append(got, key+"="+value)
		return true
	})
	assert.Equal(t, []string{"a=1", "a=2", "b=3"}, got)

	// traversal stops when the callback declines
	count := 0
	sm.Journal(func(string, string) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}
