// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps the staked token records, the per-owner index and the tier populations.
package ledger

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/tier"
)

var (
	ErrAlreadyStaked = reverts.NewInputError("nft is already staked")
	ErrNotStaked     = reverts.NewInputError("nft is not staked")
)

var (
	slotRecords = solidity.Slot("ledger-records")
	slotOwners  = solidity.Slot("ledger-owners")
	slotTotal   = solidity.Slot("ledger-total")
	slotCounts  = [tier.NumRarities]tier.Bytes32{
		solidity.Slot("ledger-count-common"),
		solidity.Slot("ledger-count-rare"),
		solidity.Slot("ledger-count-super-rare"),
	}
)

var one = uint256.NewInt(1)

// Ledger is the storage of staked tokens.
type Ledger struct {
	records *solidity.Mapping[*big.Int, *Record]
	owners  *solidity.Mapping[tier.Address, *ownerList]
	total   *solidity.Uint256
	counts  [tier.NumRarities]*solidity.Uint256
}

func New(ctx *solidity.Context) *Ledger {
	l := &Ledger{
		records: solidity.NewMapping[*big.Int, *Record](ctx, slotRecords),
		owners:  solidity.NewMapping[tier.Address, *ownerList](ctx, slotOwners),
		total:   solidity.NewUint256(ctx, slotTotal),
	}
	for i := range l.counts {
		l.counts[i] = solidity.NewUint256(ctx, slotCounts[i])
	}
	return l
}

// Get returns the record of id, or nil if id is not staked.
func (l *Ledger) Get(id *big.Int) (*Record, error) {
	rec, err := l.records.Get(id)
	if err != nil {
		return nil, err
	}
	if rec.IsEmpty() {
		return nil, nil
	}
	return rec, nil
}

// RecordStake adds id to the ledger and appends it to the owner's list.
func (l *Ledger) RecordStake(owner tier.Address, id *big.Int, rarity tier.Rarity, checkpoint *big.Int) error {
	if !rarity.Valid() {
		return reverts.NewInputErrorf("invalid rarity %d", rarity)
	}
	existing, err := l.Get(id)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyStaked
	}

	list, err := l.ownerList(owner)
	if err != nil {
		return err
	}
	rec := &Record{
		Owner:      owner,
		Rarity:     rarity,
		Checkpoint: new(big.Int).Set(checkpoint),
		Prev:       new(big.Int),
		Next:       new(big.Int),
	}
	if tailID, ok := unlink(list.Tail); ok {
		tail, err := l.records.Get(tailID)
		if err != nil {
			return err
		}
		tail.Next = link(id)
		if err := l.records.Set(tailID, tail); err != nil {
			return err
		}
		rec.Prev = new(big.Int).Set(list.Tail)
	} else {
		list.Head = link(id)
	}
	list.Tail = link(id)
	list.Count++

	if err := l.records.Set(id, rec); err != nil {
		return err
	}
	if err := l.owners.Set(owner, list); err != nil {
		return err
	}
	if _, err := l.counts[rarity].Add(one); err != nil {
		return err
	}
	_, err = l.total.Add(one)
	return err
}

// Clear removes id from the ledger and its owner's list.
func (l *Ledger) Clear(id *big.Int) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotStaked
	}
	list, err := l.ownerList(rec.Owner)
	if err != nil {
		return err
	}

	if prevID, ok := unlink(rec.Prev); ok {
		prev, err := l.records.Get(prevID)
		if err != nil {
			return err
		}
		prev.Next = rec.Next
		if err := l.records.Set(prevID, prev); err != nil {
			return err
		}
	} else {
		list.Head = rec.Next
	}
	if nextID, ok := unlink(rec.Next); ok {
		next, err := l.records.Get(nextID)
		if err != nil {
			return err
		}
		next.Prev = rec.Prev
		if err := l.records.Set(nextID, next); err != nil {
			return err
		}
	} else {
		list.Tail = rec.Prev
	}
	list.Count--

	l.records.Delete(id)
	if list.Count == 0 {
		l.owners.Delete(rec.Owner)
	} else if err := l.owners.Set(rec.Owner, list); err != nil {
		return err
	}
	if _, err := l.counts[rec.Rarity].Sub(one); err != nil {
		return err
	}
	_, err = l.total.Sub(one)
	return err
}

// SetCheckpoint updates the checkpoint of a staked token.
func (l *Ledger) SetCheckpoint(id *big.Int, checkpoint *big.Int) error {
	rec, err := l.Get(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotStaked
	}
	rec.Checkpoint = new(big.Int).Set(checkpoint)
	return l.records.Set(id, rec)
}

// IterTokensOf calls cb for each token staked by owner, in staking order.
// The walk reads live state, so it reflects changes made before each step.
func (l *Ledger) IterTokensOf(owner tier.Address, cb func(id *big.Int) error) error {
	list, err := l.ownerList(owner)
	if err != nil {
		return err
	}
	ptr := list.Head
	for {
		id, ok := unlink(ptr)
		if !ok {
			return nil
		}
		rec, err := l.records.Get(id)
		if err != nil {
			return err
		}
		if rec.IsEmpty() {
			return nil
		}
		if err := cb(id); err != nil {
			return err
		}
		ptr = rec.Next
	}
}

// TokensOf returns the ids staked by owner, in staking order.
func (l *Ledger) TokensOf(owner tier.Address) ([]*big.Int, error) {
	ids := make([]*big.Int, 0)
	err := l.IterTokensOf(owner, func(id *big.Int) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// BalanceOf returns the number of tokens staked by owner.
func (l *Ledger) BalanceOf(owner tier.Address) (uint64, error) {
	list, err := l.ownerList(owner)
	if err != nil {
		return 0, err
	}
	return list.Count, nil
}

// Count returns the population of a tier.
func (l *Ledger) Count(rarity tier.Rarity) (uint64, error) {
	if !rarity.Valid() {
		return 0, reverts.NewInputErrorf("invalid rarity %d", rarity)
	}
	v, err := l.counts[rarity].Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Counts returns the populations of all tiers.
func (l *Ledger) Counts() (counts [tier.NumRarities]uint64, err error) {
	for _, r := range tier.Rarities {
		if counts[r], err = l.Count(r); err != nil {
			return
		}
	}
	return
}

// Total returns the number of staked tokens.
func (l *Ledger) Total() (uint64, error) {
	v, err := l.total.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (l *Ledger) ownerList(owner tier.Address) (*ownerList, error) {
	list, err := l.owners.Get(owner)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = &ownerList{Head: new(big.Int), Tail: new(big.Int)}
	}
	return list, nil
}
