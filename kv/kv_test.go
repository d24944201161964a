package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemLevelDB(t *testing.T) {
	store := NewMemLevelDB()
	defer store.Close()

	_, err := store.Get([]byte("missing"))
	assert.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	require.NoError(t, store.Put([]byte("key"), []byte("value")))

	has, err := store.Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, has)

	value, err := store.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	require.NoError(t, store.Delete([]byte("key")))
	has, err = store.Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBatchWrite(t *testing.T) {
	store := NewMemLevelDB()
	defer store.Close()

	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 2, batch.Len())

	// nothing visible until the batch is written
	has, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, batch.Write())
	value, err := store.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), value)
}

func TestIterate(t *testing.T) {
	store := NewMemLevelDB()
	defer store.Close()

	require.NoError(t, store.Put([]byte("k1"), []byte("1")))
	require.NoError(t, store.Put([]byte("k2"), []byte("2")))
	require.NoError(t, store.Put([]byte("x1"), []byte("3")))

	it := store.Iterate(Range{Start: []byte("k"), Limit: []byte("l")})
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"k1", "k2"}, keys)
}

func TestBucket(t *testing.T) {
	store := NewMemLevelDB()
	defer store.Close()

	bucket := Bucket("b1-").NewStore(store)
	require.NoError(t, bucket.Put([]byte("key"), []byte("value")))

	// visible through the bucket, prefixed underneath
	value, err := bucket.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	raw, err := store.Get([]byte("b1-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), raw)

	other := Bucket("b2-").NewStore(store)
	_, err = other.Get([]byte("key"))
	assert.True(t, other.IsNotFound(err))

	it := bucket.Iterate(Range{})
	defer it.Release()
	require.True(t, it.Next())
	assert.Equal(t, []byte("key"), it.Key())
	assert.False(t, it.Next())
}
