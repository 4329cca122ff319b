// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/tierpool/tierpool/cache"
	"github.com/tierpool/tierpool/kv"
	"github.com/tierpool/tierpool/stackedmap"
	"github.com/tierpool/tierpool/tier"
)

// StorageBucket is the kv bucket holding contract storage.
const StorageBucket kv.Bucket = "s"

const defaultCacheSize = 8192

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr tier.Address
	key  tier.Bytes32
}

func (k storageKey) bytes() []byte {
	b := make([]byte, 0, tier.AddressLength+32)
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State manages contract storage.
type State struct {
	db     kv.Getter
	cache  *cache.LRU[storageKey, rlp.RawValue]
	sm     *stackedmap.StackedMap[storageKey, rlp.RawValue]
	events []*Event
	marks  []int // events length at each checkpoint
}

// New create state object over the storage bucket of db.
func New(db kv.Getter) *State {
	c, err := cache.NewLRU[storageKey, rlp.RawValue](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	s := &State{
		db:    StorageBucket.NewGetter(db),
		cache: c,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.cacheGetter)
	s.sm.Push()
	s.events = nil
	s.marks = nil
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	v, err := s.cache.GetOrLoad(key, func(key storageKey) (rlp.RawValue, error) {
		raw, err := s.db.Get(key.bytes())
		if err != nil {
			if s.db.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr tier.Address, key tier.Bytes32) (tier.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return tier.Bytes32{}, err
	}
	if len(raw) == 0 {
		return tier.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return tier.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, present it by its hash
		return tier.Blake2b(raw), nil
	}
	return tier.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr tier.Address, key, value tier.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr tier.Address, key tier.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. An empty value clears the slot.
func (s *State) SetRawStorage(addr tier.Address, key tier.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr tier.Address, key tier.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr tier.Address, key tier.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// AddEvent appends an event. It is dropped if the enclosing checkpoint is reverted.
func (s *State) AddEvent(ev *Event) {
	s.events = append(s.events, ev)
}

// Events returns events added since the last commit.
func (s *State) Events() []*Event {
	return append([]*Event(nil), s.events...)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	s.marks = append(s.marks, len(s.events))
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 || revision > len(s.marks) {
		panic(fmt.Errorf("invalid revision %d", revision))
	}
	s.sm.PopTo(revision)
	s.events = s.events[:s.marks[revision-1]]
	s.marks = s.marks[:revision-1]
}

// Discard drops all changes and events since the last commit.
func (s *State) Discard() {
	s.reset()
}

// Stage collects the net changes since the last commit.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	var order []storageKey
	s.sm.Journal(func(key storageKey, value rlp.RawValue) bool {
		if _, ok := changes[key]; !ok {
			order = append(order, key)
		}
		changes[key] = value
		return true
	})
	return &Stage{state: s, order: order, changes: changes}
}
