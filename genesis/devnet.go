// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/tier"
)

// DevAccount account for development.
type DevAccount struct {
	Address    tier.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the dev network.
// The first is the owner, the second the trusted signer.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
		"88d2d80b12b92feaa0da6d62309463d20408157723f2d7e799b6a74ead9a673b",
		"fbb9e7ba5fe9969a71c6599052237b91adeb1e5fc0c96727b66e56ff5d02f9d0",
		"547fb081e73dc2e22b4aae5c60e2970b008ac4fc3073aebc27d41ace9c4f53e9",
		"c8c53657e41a8d669349fc287f57457bd746cb1fcfc38cf94d235deb2cfca81b",
		"87e0eba9c86c494d98353800571089f316740b0cb84c9a7cdf2fe5c9997c7966",
	}
	for _, str := range privKeys {
		pk, err := cry.HexToKey(str)
		if err != nil {
			panic(err)
		}
		accs = append(accs, DevAccount{cry.PubkeyToAddress(pk.PublicKey), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NFTsPerDevAccount is the count of collection tokens each holder account gets on the dev network.
const NFTsPerDevAccount = 5

// NewDevnet create genesis for the dev network.
// Accounts after the owner and the signer each hold 10000 reward tokens and five collection tokens.
func NewDevnet() *Genesis {
	launchTime := uint64(1526400000) // 'Wed May 16 2018 00:00:00 GMT+0800 (CST)'

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tier.TokenDecimals)), nil)
	accs := DevAccounts()

	gen := &CustomGenesis{
		LaunchTime:    launchTime,
		BlockInterval: tier.BlockInterval,
		Owner:         Address(accs[0].Address),
		TrustedSigner: Address(accs[1].Address),
		VaultFunding:  NewAmount(new(big.Int).Mul(big.NewInt(1_000_000_000), unit)),
	}
	next := int64(1)
	for _, a := range accs[2:] {
		ids := make([]int64, 0, NFTsPerDevAccount)
		for range NFTsPerDevAccount {
			ids = append(ids, next)
			next++
		}
		gen.Accounts = append(gen.Accounts, Account{
			Address: Address(a.Address),
			Balance: NewAmount(new(big.Int).Mul(big.NewInt(10000), unit)),
			NFTs:    amounts(ids...),
		})
	}

	g, err := NewCustomNet(gen)
	if err != nil {
		panic(err)
	}
	g.name = "devnet"
	return g
}
