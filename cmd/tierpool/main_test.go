// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/genesis"
	"github.com/tierpool/tierpool/test/testchain"
	"github.com/tierpool/tierpool/tier"
)

func TestAttestThenVerify(t *testing.T) {
	signer := genesis.DevAccounts()[1]
	key := tier.BytesToBytes32(crypto.FromECDSA(signer.PrivateKey)).String()

	var out bytes.Buffer
	require.NoError(t, runAttest(&out, key, "7", "rare"))

	var a attest.Attestation
	require.NoError(t, json.Unmarshal(out.Bytes(), &a))
	assert.Equal(t, big.NewInt(7), (*big.Int)(a.TokenID))
	assert.Equal(t, tier.Rare, a.Rarity)
	assert.Len(t, a.Signature, 65)

	sig := a.Signature.String()

	out.Reset()
	require.NoError(t, runVerify(&out, signer.Address.String(), "7", "rare", sig))
	assert.Equal(t, "valid\n", out.String())

	out.Reset()
	assert.Error(t, runVerify(&out, signer.Address.String(), "7", "super-rare", sig))
	assert.Equal(t, "invalid\n", out.String())

	out.Reset()
	other := genesis.DevAccounts()[2].Address.String()
	assert.Error(t, runVerify(&out, other, "7", "rare", sig))
}

func TestAttestRejectsBadInput(t *testing.T) {
	signer := genesis.DevAccounts()[1]
	key := tier.BytesToBytes32(crypto.FromECDSA(signer.PrivateKey)).String()

	var out bytes.Buffer
	assert.Error(t, runAttest(&out, "zz", "1", "common"))
	assert.Error(t, runAttest(&out, key, "-1", "common"))
	assert.Error(t, runAttest(&out, key, "1", "legendary"))
	assert.Zero(t, out.Len())
}

func TestInspect(t *testing.T) {
	chain, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	defer chain.Close()

	holder := chain.Holder(0)
	ids := chain.HolderTokens(0)[:2]
	chain.SetBlockNumber(10)
	require.NoError(t, chain.Stake(holder, ids, []tier.Rarity{tier.Common, tier.SuperRare}))
	chain.SetBlockNumber(20)

	var out bytes.Buffer
	require.NoError(t, runInspect(&out, chain.Runtime(), nil))
	dump := out.String()
	assert.Contains(t, dump, "poolState")
	assert.Contains(t, dump, "LastRewardBlock: (uint32) 10")

	out.Reset()
	require.NoError(t, runInspect(&out, chain.Runtime(), ids[1]))
	dump = out.String()
	assert.Contains(t, dump, "tokenState")
	assert.Contains(t, dump, holder.Address.String())

	assert.Error(t, runInspect(&out, chain.Runtime(), big.NewInt(1000)))
}

func TestPrintDevAccounts(t *testing.T) {
	var out bytes.Buffer
	printDevAccounts(&out)

	lines := strings.Count(out.String(), "│ 0x")
	assert.Equal(t, len(genesis.DevAccounts()), lines)
	assert.Contains(t, out.String(), genesis.DevAccounts()[0].Address.String())
}

func TestSyncPool(t *testing.T) {
	chain, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	defer chain.Close()

	chain.SetBlockNumber(30)
	require.NoError(t, syncPool(chain.Runtime()))
	assert.Equal(t, uint32(30), chain.Runtime().Head())

	// nothing to do at the same block
	require.NoError(t, syncPool(chain.Runtime()))
	assert.Equal(t, uint32(30), chain.Runtime().Head())
}
