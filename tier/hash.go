// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tier

import (
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	w := blake2bPool.Get().(hash.Hash)
	for _, b := range data {
		w.Write(b)
	}
	var h Bytes32
	w.Sum(h[:0])
	w.Reset()
	blake2bPool.Put(w)
	return h
}

var blake2bPool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// keccakState wraps sha3.state. It supports Read to squeeze the digest without copying the state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

var keccak256Pool = sync.Pool{
	New: func() any {
		return sha3.NewLegacyKeccak256().(keccakState)
	},
}

// Keccak256 computes the legacy keccak-256 checksum for given data.
func Keccak256(data ...[]byte) (h Bytes32) {
	hasher := keccak256Pool.Get().(keccakState)
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Read(h[:])
	hasher.Reset()
	keccak256Pool.Put(hasher)
	return
}
