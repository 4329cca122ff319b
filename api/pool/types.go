// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/tierpool/tierpool/tier"
)

// Tiers holds one value per rarity.
type Tiers[T any] struct {
	Common    T `json:"common"`
	Rare      T `json:"rare"`
	SuperRare T `json:"superRare"`
}

func newTiers[T any](v [tier.NumRarities]T) Tiers[T] {
	return Tiers[T]{v[tier.Common], v[tier.Rare], v[tier.SuperRare]}
}

// Summary is the pool configuration and counters.
type Summary struct {
	Owner                   tier.Address                 `json:"owner"`
	TrustedSigner           tier.Address                 `json:"trustedSigner"`
	NFT                     tier.Address                 `json:"nft"`
	Vault                   tier.Address                 `json:"vault"`
	MaxSupply               *math.HexOrDecimal256        `json:"maxSupply"`
	DistributeTokenPerBlock *math.HexOrDecimal256        `json:"distributeTokenPerBlock"`
	Boosts                  Tiers[uint64]                `json:"boosts"`
	Staked                  Tiers[uint64]                `json:"staked"`
	TotalStaked             uint64                       `json:"totalStaked"`
	Accumulators            Tiers[*math.HexOrDecimal256] `json:"accumulators"`
	LastRewardBlock         uint32                       `json:"lastRewardBlock"`
	Head                    uint32                       `json:"head"`
	BlockNumber             uint32                       `json:"blockNumber"`
}

// Token is the staking status of one collection token.
type Token struct {
	TokenID       *math.HexOrDecimal256 `json:"tokenId"`
	Staked        bool                  `json:"staked"`
	Owner         *tier.Address         `json:"owner,omitempty"`
	Rarity        string                `json:"rarity,omitempty"`
	RewardDebt    *math.HexOrDecimal256 `json:"rewardDebt,omitempty"`
	Earned        *math.HexOrDecimal256 `json:"earned"`
	PendingReward *math.HexOrDecimal256 `json:"pendingReward"`
	BlockNumber   uint32                `json:"blockNumber"`
}

// OwnerTokens lists the tokens an owner has staked.
type OwnerTokens struct {
	Owner    tier.Address            `json:"owner"`
	Count    uint64                  `json:"count"`
	TokenIDs []*math.HexOrDecimal256 `json:"tokenIds"`
}

// SyncResult is the pool state after a sync.
type SyncResult struct {
	BlockNumber     uint32 `json:"blockNumber"`
	LastRewardBlock uint32 `json:"lastRewardBlock"`
}
