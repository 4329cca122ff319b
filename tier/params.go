// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tier

import (
	"math/big"
)

// Constants of the pool deployment.
const (
	BlockInterval uint64 = 10 // time interval between two blocks, in seconds

	InitialMaxSupply      uint64 = 10000
	InitialCommonBoost    uint64 = 10
	InitialRareBoost      uint64 = 15
	InitialSuperRareBoost uint64 = 25

	TokenDecimals uint8 = 18
)

// InitialDistributeTokenPerBlock is the emission rate applied at deployment, one whole token per block.
var InitialDistributeTokenPerBlock = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(TokenDecimals)), nil)

// Addresses of the deployed contracts.
var (
	PoolAddress       = BytesToAddress([]byte("TierPool"))
	VaultAddress      = BytesToAddress([]byte("Vault"))
	TokenAddress      = BytesToAddress([]byte("RewardToken"))
	CollectionAddress = BytesToAddress([]byte("Collection"))
)

// InitialBoosts returns the boost weights applied at deployment, indexed by rarity.
func InitialBoosts() [NumRarities]uint64 {
	return [NumRarities]uint64{InitialCommonBoost, InitialRareBoost, InitialSuperRareBoost}
}
