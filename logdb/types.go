// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/tierpool/tierpool/tier"
)

// Event is a contract event as stored in the index.
type Event struct {
	BlockNumber uint32
	Index       uint32 // position within the block
	Address     tier.Address
	Name        string
	Actor       tier.Address
	Target      tier.Address
	TokenID     *big.Int
	Rarity      tier.Rarity
	Amount      *big.Int
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive block range. A To below From leaves the range open ended.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events having all of the set fields.
type EventCriteria struct {
	Address *tier.Address
	Name    string
	Actor   *tier.Address
	TokenID *big.Int
}

// EventFilter selects events matching any of its criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
