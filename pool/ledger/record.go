// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/tierpool/tierpool/tier"
)

// Record is a staked token.
type Record struct {
	Owner      tier.Address
	Rarity     tier.Rarity
	Checkpoint *big.Int // tier accumulator at stake or last settlement

	// owner list links, holding tokenID+1 so that zero marks the end of the list
	Prev *big.Int
	Next *big.Int
}

// IsEmpty reports whether the record is absent.
func (r *Record) IsEmpty() bool {
	return r == nil || r.Owner.IsZero()
}

// ownerList is the head of an owner's list of staked tokens.
type ownerList struct {
	Head  *big.Int
	Tail  *big.Int
	Count uint64
}

func link(id *big.Int) *big.Int {
	return new(big.Int).Add(id, big.NewInt(1))
}

func unlink(l *big.Int) (*big.Int, bool) {
	if l == nil || l.Sign() == 0 {
		return nil, false
	}
	return new(big.Int).Sub(l, big.NewInt(1)), true
}
