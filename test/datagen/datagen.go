// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package datagen produces random fixtures for tests.
package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/tierpool/tierpool/tier"
)

func fill(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
}

func RandomHash() (h tier.Bytes32) {
	fill(h[:])
	return
}

func RandAddress() (addr tier.Address) {
	fill(addr[:])
	return
}

// RandTokenID returns a random 256 bit token id.
func RandTokenID() *big.Int {
	var b [32]byte
	fill(b[:])
	return new(big.Int).SetBytes(b[:])
}

// RandRarity returns a random valid rarity.
func RandRarity() tier.Rarity {
	return tier.Rarities[RandIntN(tier.NumRarities)]
}

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}
