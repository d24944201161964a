// Copyright (c) 2026 The Tranchess Go developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
)

// implements Batch interface
type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *levelBatch) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *levelBatch) Len() int {
	return b.batch.Len()
}

func (b *levelBatch) Write() error {
	return b.db.Write(b.batch, writeOpt)
}

// implements StoreCloser interface
type levelStore struct {
	db *leveldb.DB
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*levelStore, error) {
	if cacheSize < 32 {
		cacheSize = 32
	}

	if openFilesCacheCapacity < 16 {
		openFilesCacheCapacity = 16
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &levelStore{db: db}, nil
}

// NewLevelDB opens a leveldb-backed store located at the given path.
func NewLevelDB(path string, cacheSize, openFilesCacheCapacity int) (StoreCloser, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open level db file storage")
	}
	return openLevelDB(stg, cacheSize, openFilesCacheCapacity)
}

// NewMemLevelDB creates a memory-backed store, mainly for tests.
func NewMemLevelDB() StoreCloser {
	store, err := openLevelDB(storage.NewMemStorage(), 0, 0)
	if err != nil {
		// mem storage never fails to open
		panic(err)
	}
	return store
}

func (ls *levelStore) Get(key []byte) ([]byte, error) {
	return ls.db.Get(key, readOpt)
}

func (ls *levelStore) Has(key []byte) (bool, error) {
	return ls.db.Has(key, readOpt)
}

func (ls *levelStore) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ls *levelStore) Put(key, val []byte) error {
	return ls.db.Put(key, val, writeOpt)
}

func (ls *levelStore) Delete(key []byte) error {
	return ls.db.Delete(key, writeOpt)
}

func (ls *levelStore) Close() error {
	return ls.db.Close()
}

func (ls *levelStore) NewBatch() Batch {
	return &levelBatch{
		ls.db,
		&leveldb.Batch{},
	}
}

func (ls *levelStore) Iterate(r Range) Iterator {
	return ls.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, readOpt)
}
