// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.key(key)) },
		func(key []byte) (bool, error) { return src.Has(b.key(key)) },
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) error { return src.Put(b.key(key), val) },
		func(key []byte) error { return src.Delete(b.key(key)) },
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		NewIteratorFunc
		NewBatchFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func(r Range) Iterator {
			r.Start = b.key(r.Start)
			if len(r.Limit) == 0 {
				r.Limit = util.BytesPrefix([]byte(b)).Limit
			} else {
				r.Limit = b.key(r.Limit)
			}
			return &bucketIterator{src.NewIterator(r), len(b)}
		},
		func() Batch {
			batch := src.NewBatch()
			return &struct {
				Putter
				lenFunc
				writeFunc
			}{
				b.NewPutter(batch),
				batch.Len,
				batch.Write,
			}
		},
	}
}

type (
	lenFunc   func() int
	writeFunc func() error
)

func (f lenFunc) Len() int       { return f() }
func (f writeFunc) Write() error { return f() }

// bucketIterator strips the bucket prefix from keys.
type bucketIterator struct {
	Iterator
	prefixLen int
}

func (i *bucketIterator) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
