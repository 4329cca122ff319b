// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Range is the key range [Start, Limit), a nil Limit means no upper bound.
type Range struct {
	Start []byte
	Limit []byte
}

// Iterator iterates kvs in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Batch collects putting ops and writes them atomically.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	NewIterator(r Range) Iterator
	NewBatch() Batch
}

// StoreCloser with close method.
type StoreCloser interface {
	Store
	Close() error
}
