// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward keeps the per tier reward accumulators.
//
// Each tier accumulator is the reward a single staked token of that tier has earned
// since the pool started. Emission of an interval is split over the tiers by
// population times boost, so a tier that is empty during an interval forfeits
// its share of that interval.
package reward

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tierpool/tierpool/pool/ledger"
	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/tier"
)

var (
	slotLastRewardBlock = solidity.Slot("reward-last-block")
	slotAccs            = [tier.NumRarities]tier.Bytes32{
		solidity.Slot("reward-acc-common"),
		solidity.Slot("reward-acc-rare"),
		solidity.Slot("reward-acc-super-rare"),
	}
)

// Accumulators is a snapshot of the tier accumulators.
type Accumulators [tier.NumRarities]*uint256.Int

// Accrue returns accs advanced by elapsed blocks of emission at rate.
// Tiers with no population keep their value.
func Accrue(
	accs Accumulators,
	elapsed uint64,
	counts [tier.NumRarities]uint64,
	boosts [tier.NumRarities]uint64,
	rate *uint256.Int,
) (Accumulators, error) {
	var out Accumulators
	for i := range accs {
		out[i] = accs[i].Clone()
	}
	if elapsed == 0 {
		return out, nil
	}

	var weights [tier.NumRarities]*uint256.Int
	sum := new(uint256.Int)
	for i := range counts {
		w, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(counts[i]), uint256.NewInt(boosts[i]))
		if overflow {
			return out, solidity.ErrOverflow
		}
		weights[i] = w
		if _, overflow := sum.AddOverflow(sum, w); overflow {
			return out, solidity.ErrOverflow
		}
	}
	if sum.IsZero() {
		return out, nil
	}

	total, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(elapsed), rate)
	if overflow {
		return out, solidity.ErrOverflow
	}
	for i := range counts {
		if counts[i] == 0 {
			continue
		}
		alloc, overflow := new(uint256.Int).MulOverflow(total, weights[i])
		if overflow {
			return out, solidity.ErrOverflow
		}
		alloc.Div(alloc, sum)
		alloc.Div(alloc, uint256.NewInt(counts[i]))
		if _, overflow := out[i].AddOverflow(out[i], alloc); overflow {
			return out, solidity.ErrOverflow
		}
	}
	return out, nil
}

// Accumulator is the stored accrual state of the pool.
type Accumulator struct {
	lastRewardBlock *solidity.Uint256
	accs            [tier.NumRarities]*solidity.Uint256
}

func New(ctx *solidity.Context) *Accumulator {
	a := &Accumulator{
		lastRewardBlock: solidity.NewUint256(ctx, slotLastRewardBlock),
	}
	for i := range a.accs {
		a.accs[i] = solidity.NewUint256(ctx, slotAccs[i])
	}
	return a
}

// Init sets the block accrual starts from.
func (a *Accumulator) Init(block uint32) {
	a.lastRewardBlock.Set(uint256.NewInt(uint64(block)))
}

func (a *Accumulator) LastRewardBlock() (uint32, error) {
	v, err := a.lastRewardBlock.Get()
	if err != nil {
		return 0, err
	}
	return uint32(v.Uint64()), nil
}

// Acc returns the accumulator of a tier.
func (a *Accumulator) Acc(rarity tier.Rarity) (*big.Int, error) {
	v, err := a.accs[rarity].Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// Accumulators returns the stored accumulators of all tiers.
func (a *Accumulator) Accumulators() (accs Accumulators, err error) {
	for i := range a.accs {
		if accs[i], err = a.accs[i].Get(); err != nil {
			return
		}
	}
	return
}

// Simulate returns the accumulators as they would be after advancing to now, without writing.
func (a *Accumulator) Simulate(now uint32, counts, boosts [tier.NumRarities]uint64, rate *big.Int) (Accumulators, error) {
	accs, err := a.Accumulators()
	if err != nil {
		return accs, err
	}
	last, err := a.LastRewardBlock()
	if err != nil {
		return accs, err
	}
	if now <= last {
		return accs, nil
	}
	r, overflow := uint256.FromBig(rate)
	if overflow {
		return accs, solidity.ErrOverflow
	}
	return Accrue(accs, uint64(now-last), counts, boosts, r)
}

// Advance accrues emission up to now and moves the last reward block to now.
// It does nothing when now is not past the last reward block.
func (a *Accumulator) Advance(now uint32, counts, boosts [tier.NumRarities]uint64, rate *big.Int) error {
	last, err := a.LastRewardBlock()
	if err != nil {
		return err
	}
	if now <= last {
		return nil
	}
	accs, err := a.Simulate(now, counts, boosts, rate)
	if err != nil {
		return err
	}
	for i := range accs {
		a.accs[i].Set(accs[i])
	}
	a.lastRewardBlock.Set(uint256.NewInt(uint64(now)))
	return nil
}

// Pending returns the reward owed to a token of rarity holding checkpoint.
func (a *Accumulator) Pending(rarity tier.Rarity, checkpoint *big.Int) (*big.Int, error) {
	acc, err := a.Acc(rarity)
	if err != nil {
		return nil, err
	}
	return pending(acc, checkpoint)
}

// Settle moves the checkpoint of a staked token to its tier accumulator and returns what was owed.
func (a *Accumulator) Settle(l *ledger.Ledger, id *big.Int) (*big.Int, error) {
	rec, err := l.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ledger.ErrNotStaked
	}
	acc, err := a.Acc(rec.Rarity)
	if err != nil {
		return nil, err
	}
	owed, err := pending(acc, rec.Checkpoint)
	if err != nil {
		return nil, err
	}
	if err := l.SetCheckpoint(id, acc); err != nil {
		return nil, err
	}
	return owed, nil
}

func pending(acc, checkpoint *big.Int) (*big.Int, error) {
	if acc.Cmp(checkpoint) < 0 {
		return nil, solidity.ErrUnderflow
	}
	return new(big.Int).Sub(acc, checkpoint), nil
}
