// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/genesis"
	"github.com/tierpool/tierpool/lvldb"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	require.Len(t, accs, 10)
	assert.Equal(t, tier.MustParseAddress("0xf077b491b355e64048ce21e3a6fc4751eeea77fa"), accs[0].Address)
	// cached
	assert.Same(t, accs[0].PrivateKey, genesis.DevAccounts()[0].PrivateKey)
}

func TestDevnetBuild(t *testing.T) {
	gen := genesis.NewDevnet()
	assert.Equal(t, "devnet", gen.Name())
	assert.Equal(t, genesis.NewDevnet().ID(), gen.ID())

	st := state.New(lvldb.NewMem())
	require.NoError(t, gen.Build(st))

	c := builtin.Bind(st, attest.NewVerifier())
	accs := genesis.DevAccounts()

	owner, err := c.Pool.Owner()
	require.NoError(t, err)
	assert.Equal(t, accs[0].Address, owner)

	signer, err := c.Pool.TrustedSigner()
	require.NoError(t, err)
	assert.Equal(t, accs[1].Address, signer)

	allowed, err := c.Vault.IsWhiteList(builtin.Pool.Address)
	require.NoError(t, err)
	assert.True(t, allowed)

	funds, err := c.Vault.Balance()
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000000000", funds.String())

	holder := accs[2].Address
	n, err := c.Collection.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, uint64(genesis.NFTsPerDevAccount), n)

	nftOwner, err := c.Collection.OwnerOf(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, holder, nftOwner)

	assert.Equal(t, 8*genesis.NFTsPerDevAccount, gen.TotalNFTs())
}

func TestBlockNumberAt(t *testing.T) {
	gen := genesis.NewDevnet()
	launch := gen.LaunchTime()

	assert.Equal(t, uint32(0), gen.BlockNumberAt(0))
	assert.Equal(t, uint32(0), gen.BlockNumberAt(launch))
	assert.Equal(t, uint32(0), gen.BlockNumberAt(launch+tier.BlockInterval-1))
	assert.Equal(t, uint32(1), gen.BlockNumberAt(launch+tier.BlockInterval))
	assert.Equal(t, uint32(360), gen.BlockNumberAt(launch+3600))
}

const customYAML = `
launchTime: 1700000000
blockInterval: 5
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
pool:
  maxSupply: 3
  distributeTokenPerBlock: 0x64
  boosts:
    common: 1
    rare: 2
    superRare: 3
vaultFunding: 1000000
accounts:
  - address: "0x000000000000000000000000000000000000000c"
    balance: 50
    nfts: [0, 7]
`

func writeFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	gen, err := genesis.Load(writeFile(t, customYAML))
	require.NoError(t, err)

	assert.Equal(t, "customnet", gen.Name())
	assert.Equal(t, uint64(5), gen.BlockInterval())
	assert.Equal(t, uint32(2), gen.BlockNumberAt(1700000010))

	cfg := gen.PoolConfig()
	assert.Equal(t, "3", cfg.MaxSupply.String())
	assert.Equal(t, "100", cfg.DistributeTokenPerBlock.String())
	assert.Equal(t, [tier.NumRarities]uint64{1, 2, 3}, cfg.Boosts)

	st := state.New(lvldb.NewMem())
	require.NoError(t, gen.Build(st))

	c := builtin.Bind(st, attest.NewVerifier())
	holder := tier.MustParseAddress("0x000000000000000000000000000000000000000c")
	bal, err := c.Token.BalanceOf(holder)
	require.NoError(t, err)
	assert.Equal(t, "50", bal.String())

	nftOwner, err := c.Collection.OwnerOf(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, holder, nftOwner)

	rare, err := c.Pool.RareBoost()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rare)
}

func TestLoadDefaultsPoolParams(t *testing.T) {
	gen, err := genesis.Load(writeFile(t, `
launchTime: 1
blockInterval: 10
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
`))
	require.NoError(t, err)

	cfg := gen.PoolConfig()
	assert.Equal(t, "10000", cfg.MaxSupply.String())
	assert.Equal(t, tier.InitialDistributeTokenPerBlock.String(), cfg.DistributeTokenPerBlock.String())
	assert.Equal(t, tier.InitialBoosts(), cfg.Boosts)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "launchTime: 1\nblockInterval: 10\nbogus: 1\n"},
		{"bad address", "blockInterval: 10\nowner: nope\n"},
		{"bad amount", "blockInterval: 10\nvaultFunding: -1\n"},
		{"zero interval", `
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
`},
		{"no owner", `
blockInterval: 10
trustedSigner: "0x000000000000000000000000000000000000000b"
`},
		{"no signer", `
blockInterval: 10
owner: "0x000000000000000000000000000000000000000a"
`},
		{"duplicated nft", `
blockInterval: 10
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
accounts:
  - address: "0x000000000000000000000000000000000000000c"
    nfts: [1]
  - address: "0x000000000000000000000000000000000000000d"
    nfts: [1]
`},
		{"duplicated account", `
blockInterval: 10
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
accounts:
  - address: "0x000000000000000000000000000000000000000c"
  - address: "0x000000000000000000000000000000000000000c"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := genesis.Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := genesis.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuildRevertsOnFailure(t *testing.T) {
	gen, err := genesis.Load(writeFile(t, `
blockInterval: 10
owner: "0x000000000000000000000000000000000000000a"
trustedSigner: "0x000000000000000000000000000000000000000b"
pool:
  maxSupply: 0
`))
	require.NoError(t, err)

	st := state.New(lvldb.NewMem())
	assert.Error(t, gen.Build(st))
	assert.Empty(t, st.Events())
	assert.Equal(t, 0, st.Stage().Len())
}

func TestIDDiffers(t *testing.T) {
	a, err := genesis.Load(writeFile(t, customYAML))
	require.NoError(t, err)
	assert.NotEqual(t, genesis.NewDevnet().ID(), a.ID())
}
