// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tierpool/tierpool/kv"
)

// Stage abstracts the net storage changes of a State.
type Stage struct {
	state   *State
	order   []storageKey
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of changed slots.
func (st *Stage) Len() int {
	return len(st.order)
}

// Commit writes changes into the store in a single batch, then resets the
// state so it reads the committed values.
func (st *Stage) Commit(store kv.Store) error {
	batch := StorageBucket.NewStore(store).NewBatch()
	var puts, deletes int64
	for _, key := range st.order {
		val := st.changes[key]
		if len(val) == 0 {
			deletes++
			if err := batch.Delete(key.bytes()); err != nil {
				return &Error{err}
			}
		} else {
			puts++
			if err := batch.Put(key.bytes(), val); err != nil {
				return &Error{err}
			}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}

	for _, key := range st.order {
		st.state.cache.Add(key, st.changes[key])
	}
	st.state.reset()

	metricStorageWrites().AddWithLabel(puts, map[string]string{"op": "put"})
	metricStorageWrites().AddWithLabel(deletes, map[string]string{"op": "delete"})
	return nil
}
