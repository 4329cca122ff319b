// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tier

import (
	"fmt"
	"strconv"
	"strings"
)

// Rarity is the rarity class of a staked token. The ordinal is part of the attestation message.
type Rarity uint8

const (
	Common Rarity = iota
	Rare
	SuperRare
)

// NumRarities is the count of rarity tiers.
const NumRarities = 3

// Rarities lists all tiers in ordinal order.
var Rarities = [NumRarities]Rarity{Common, Rare, SuperRare}

// Valid returns whether r is a known tier.
func (r Rarity) Valid() bool {
	return r < NumRarities
}

func (r Rarity) String() string {
	switch r {
	case Common:
		return "common"
	case Rare:
		return "rare"
	case SuperRare:
		return "super-rare"
	default:
		return "rarity(" + strconv.Itoa(int(r)) + ")"
	}
}

// ParseRarity accepts either the tier name or its ordinal.
func ParseRarity(s string) (Rarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common", "0":
		return Common, nil
	case "rare", "1":
		return Rare, nil
	case "super-rare", "superrare", "2":
		return SuperRare, nil
	}
	return 0, fmt.Errorf("unknown rarity %q", s)
}
