// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/tierpool/tierpool/tier"
)

// Event is a record of something a contract did, emitted inside an operation.
type Event struct {
	Address tier.Address // emitting contract
	Name    string
	Actor   tier.Address // the account acting or acted upon
	Target  tier.Address // counterparty, zero if none
	TokenID *big.Int     // nil if the event is not about a token
	Rarity  tier.Rarity
	Amount  *big.Int // nil if no amount moved
}
