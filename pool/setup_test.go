// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/lvldb"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
	"github.com/tierpool/tierpool/vault"
)

var (
	owner = tier.BytesToAddress([]byte("owner"))
	alice = tier.BytesToAddress([]byte("alice"))
	bob   = tier.BytesToAddress([]byte("bob"))
	carol = tier.BytesToAddress([]byte("carol"))

	ether = big.NewInt(1e18)
	float = new(big.Int).Mul(big.NewInt(1_000_000), ether)
)

// fixture is a deployed pool with its collaborators sharing one state.
// Alice holds tokens 1-5, bob 6-8 and carol 9, the first two have approved the pool.
type fixture struct {
	t      *testing.T
	st     *state.State
	tok    *token.Token
	nft    *token.Collection
	vault  *vault.Vault
	pool   *Pool
	signer *ecdsa.PrivateKey
}

func newFixture(t *testing.T) *fixture {
	st := state.New(lvldb.NewMem())
	tok := token.NewToken(tier.TokenAddress, st, "Reward", "RWD", 18)
	nft := token.NewCollection(tier.CollectionAddress, st, "Tiers")
	v := vault.New(tier.VaultAddress, st, tok)
	require.NoError(t, v.Init(owner, tier.TokenAddress))
	require.NoError(t, tok.Mint(tier.VaultAddress, float))
	require.NoError(t, v.AddWhiteList(owner, tier.PoolAddress))

	key, err := cry.GenerateKey()
	require.NoError(t, err)

	p := New(tier.PoolAddress, st, nft, v, attest.NewVerifier())
	require.NoError(t, p.Init(DefaultConfig(owner, cry.PubkeyToAddress(key.PublicKey)), 0))

	holders := map[tier.Address][]int64{alice: {1, 2, 3, 4, 5}, bob: {6, 7, 8}, carol: {9}}
	for holder, ids := range holders {
		for _, id := range ids {
			require.NoError(t, nft.Mint(holder, big.NewInt(id)))
		}
	}
	require.NoError(t, nft.SetApprovalForAll(alice, tier.PoolAddress, true))
	require.NoError(t, nft.SetApprovalForAll(bob, tier.PoolAddress, true))

	return &fixture{t: t, st: st, tok: tok, nft: nft, vault: v, pool: p, signer: key}
}

func (f *fixture) sign(id int64, rarity tier.Rarity) []byte {
	a, err := attest.Sign(big.NewInt(id), rarity, f.signer)
	require.NoError(f.t, err)
	return a.Signature
}

// stakeArgs builds signed stake arguments for ids with their rarities.
func (f *fixture) stakeArgs(ids []int64, rarities []tier.Rarity) ([]*big.Int, []tier.Rarity, [][]byte) {
	bigIDs := make([]*big.Int, len(ids))
	sigs := make([][]byte, len(ids))
	for i, id := range ids {
		bigIDs[i] = big.NewInt(id)
		sigs[i] = f.sign(id, rarities[i])
	}
	return bigIDs, rarities, sigs
}

func (f *fixture) stake(caller tier.Address, block uint32, ids []int64, rarities []tier.Rarity) error {
	bigIDs, rs, sigs := f.stakeArgs(ids, rarities)
	return f.pool.Stake(caller, bigIDs, rs, sigs, block)
}

func (f *fixture) balance(addr tier.Address) *big.Int {
	b, err := f.tok.BalanceOf(addr)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) nftOwner(id int64) tier.Address {
	o, err := f.nft.OwnerOf(big.NewInt(id))
	require.NoError(f.t, err)
	return o
}

func (f *fixture) counts() [tier.NumRarities]uint64 {
	c, err := f.pool.ledger.Counts()
	require.NoError(f.t, err)
	return c
}

func (f *fixture) reward(id int64) *big.Int {
	r, err := f.pool.GetUserRewardByNFT(big.NewInt(id))
	require.NoError(f.t, err)
	return r
}

// assertConserved checks that the global count, the tier counts and the owner indexes agree.
func (f *fixture) assertConserved(holders ...tier.Address) {
	c := f.counts()
	total, err := f.pool.TotalNftIsStaked()
	require.NoError(f.t, err)
	require.Equal(f.t, total, c[0]+c[1]+c[2])

	var indexed uint64
	for _, h := range holders {
		ids, err := f.pool.TokensOfOwner(h)
		require.NoError(f.t, err)
		for _, id := range ids {
			rec, err := f.pool.StakedNFT(id)
			require.NoError(f.t, err)
			require.NotNil(f.t, rec)
			require.Equal(f.t, h, rec.Owner)
			require.Equal(f.t, tier.PoolAddress, f.nftOwner(id.Int64()))
		}
		indexed += uint64(len(ids))
	}
	require.Equal(f.t, total, indexed)
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), ether)
}

// failingVault is a distributor that is never available.
type failingVault struct {
	calls int
}

func (v *failingVault) DistributeToken(tier.Address, tier.Address, *big.Int) error {
	v.calls++
	return token.ErrInsufficientBalance
}
