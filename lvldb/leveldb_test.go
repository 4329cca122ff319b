// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/kv"
)

func TestLevelDB(t *testing.T) {
	disk, err := New(t.TempDir(), Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	require.NoError(t, err)
	defer disk.Close()

	mem := NewMem()
	defer mem.Close()

	for _, db := range []*LevelDB{disk, mem} {
		require.NoError(t, db.Put([]byte("123"), []byte("456")))

		val, err := db.Get([]byte("123"))
		require.NoError(t, err)
		assert.Equal(t, []byte("456"), val)

		has, err := db.Has([]byte("123"))
		require.NoError(t, err)
		assert.True(t, has)

		_, err = db.Get([]byte("abc"))
		assert.True(t, db.IsNotFound(err))

		require.NoError(t, db.Delete([]byte("123")))
		has, err = db.Has([]byte("123"))
		require.NoError(t, err)
		assert.False(t, has)
	}
}

func TestBatchAndIterator(t *testing.T) {
	db := NewMem()
	defer db.Close()

	batch := db.NewBatch()
	for _, k := range []string{"a1", "a2", "b1"} {
		require.NoError(t, batch.Put([]byte(k), []byte(k)))
	}
	assert.Equal(t, 3, batch.Len())
	require.NoError(t, batch.Write())

	iter := db.NewIterator(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}

func TestBucket(t *testing.T) {
	db := NewMem()
	defer db.Close()

	s := kv.Bucket("s").NewStore(db)
	other := kv.Bucket("t").NewStore(db)

	require.NoError(t, s.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, other.Put([]byte("k2"), []byte("v2")))

	raw, err := db.Get([]byte("sk1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), raw)

	_, err = s.Get([]byte("k2"))
	assert.True(t, s.IsNotFound(err))

	batch := s.NewBatch()
	require.NoError(t, batch.Put([]byte("k3"), []byte("v3")))
	require.NoError(t, batch.Write())

	iter := s.NewIterator(kv.Range{})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.Equal(t, []string{"k1", "k3"}, keys)
}
