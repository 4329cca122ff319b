// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tierpool/tierpool/tier"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Entries live at blake2b(key, basePos) and are rlp encoded.
type Mapping[K Key, V any] struct {
	context *Context
	basePos tier.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos tier.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) tier.Bytes32 {
	return tier.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key, or the zero value of V if the entry is empty.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores value under key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the entry of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
