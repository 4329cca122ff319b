// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/pool/ledger"
	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
	"github.com/tierpool/tierpool/vault"
)

var allTiers = []tier.Rarity{tier.Common, tier.Rare, tier.SuperRare}

func TestStakeThreeTiers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1, 2, 3}, allTiers))

	assert.Equal(t, [tier.NumRarities]uint64{1, 1, 1}, f.counts())
	for i, id := range []int64{1, 2, 3} {
		acc, err := f.pool.reward.Acc(allTiers[i])
		require.NoError(t, err)
		tokenID, debt, rarity, err := f.pool.UserStakedNft(alice, big.NewInt(id))
		require.NoError(t, err)
		assert.Equal(t, id, tokenID.Int64())
		assert.Equal(t, allTiers[i], rarity)
		assert.Zero(t, acc.Cmp(debt), "checkpoint is the tier accumulator")
		assert.Zero(t, debt.Sign(), "nothing accrued before the first stake")
		assert.Equal(t, tier.PoolAddress, f.nftOwner(id))
	}
	n, err := f.pool.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	last, _ := f.pool.LastRewardBlock()
	assert.Equal(t, uint32(10), last)
	f.assertConserved(alice)
}

func TestUnstakeOneOfThree(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1, 2, 3}, allTiers))

	require.NoError(t, f.pool.Unstake(alice, []*big.Int{big.NewInt(2)}, 20))

	assert.Equal(t, [tier.NumRarities]uint64{1, 0, 1}, f.counts())
	assert.Equal(t, alice, f.nftOwner(2))

	tokenID, debt, rarity, err := f.pool.UserStakedNft(alice, big.NewInt(2))
	require.NoError(t, err)
	assert.Zero(t, tokenID.Sign())
	assert.Zero(t, debt.Sign())
	assert.Equal(t, tier.Common, rarity)
	rec, err := f.pool.StakedNFT(big.NewInt(2))
	require.NoError(t, err)
	assert.Nil(t, rec)

	// 10 blocks, rare takes 15 of 50 parts of the emission
	assert.Equal(t, eth(3).String(), f.balance(alice).String())

	ids, err := f.pool.TokensOfOwner(alice)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1), ids[0].Int64())
	assert.Equal(t, int64(3), ids[1].Int64())
	f.assertConserved(alice)
}

func TestClaimUnstakedToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Common}))
	events := len(f.st.Events())

	err := f.pool.Claim(alice, []*big.Int{big.NewInt(4)}, 30)
	assert.ErrorIs(t, err, ErrNotNFTOwner)
	assert.True(t, reverts.IsInputErr(err))

	last, _ := f.pool.LastRewardBlock()
	assert.Equal(t, uint32(10), last, "the advance of a failed call is reverted")
	assert.Len(t, f.st.Events(), events)
	assert.Zero(t, f.balance(alice).Sign())
}

func TestAdmissionSoundness(t *testing.T) {
	f := newFixture(t)
	forger, err := cry.GenerateKey()
	require.NoError(t, err)
	forged, err := attest.Sign(big.NewInt(1), tier.SuperRare, forger)
	require.NoError(t, err)

	tests := []struct {
		name   string
		rarity tier.Rarity
		sig    []byte
	}{
		{"untrusted signer", tier.SuperRare, forged.Signature},
		{"other token", tier.Common, f.sign(2, tier.Common)},
		{"other rarity", tier.SuperRare, f.sign(1, tier.Common)},
		{"malformed", tier.Common, []byte{1, 2, 3}},
		{"empty", tier.Common, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.pool.Stake(alice, []*big.Int{big.NewInt(1)}, []tier.Rarity{tt.rarity}, [][]byte{tt.sig}, 10)
			assert.ErrorIs(t, err, ErrInvalidSignature)
			assert.True(t, reverts.IsInputErr(err))
			assert.Equal(t, alice, f.nftOwner(1))
		})
	}
	f.assertConserved(alice)
}

func TestInvalidStakeInput(t *testing.T) {
	f := newFixture(t)
	ids, rarities, sigs := f.stakeArgs([]int64{1, 2}, []tier.Rarity{tier.Common, tier.Rare})

	assert.ErrorIs(t, f.pool.Stake(alice, ids, rarities[:1], sigs, 1), ErrInvalidInput)
	assert.ErrorIs(t, f.pool.Stake(alice, ids, rarities, sigs[:1], 1), ErrInvalidInput)
	assert.ErrorIs(t, f.pool.Stake(alice, nil, nil, nil, 1), ErrInvalidInput)
	assert.ErrorIs(t, f.pool.Stake(alice, ids[:1], []tier.Rarity{3}, sigs[:1], 1), ErrInvalidInput)

	assert.True(t, reverts.IsInputErr(f.pool.Claim(alice, nil, 1)))
	assert.True(t, reverts.IsInputErr(f.pool.Unstake(alice, nil, 1)))
	assert.True(t, reverts.IsInputErr(f.pool.EmergencyWithdraw(alice, nil, 1)))
}

func TestNoDoubleStake(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Rare}))

	for _, caller := range []tier.Address{alice, bob} {
		err := f.stake(caller, 11, []int64{1}, []tier.Rarity{tier.Rare})
		assert.ErrorIs(t, err, ledger.ErrAlreadyStaked)
		assert.True(t, reverts.IsInputErr(err))
	}

	// within one batch
	err := f.stake(alice, 12, []int64{2, 2}, []tier.Rarity{tier.Common, tier.Common})
	assert.ErrorIs(t, err, ledger.ErrAlreadyStaked)
	assert.Equal(t, alice, f.nftOwner(2))

	// staking again after the token left the pool works
	require.NoError(t, f.pool.Unstake(alice, []*big.Int{big.NewInt(1)}, 13))
	require.NoError(t, f.stake(alice, 14, []int64{1}, []tier.Rarity{tier.Rare}))
	f.assertConserved(alice)
}

func TestStakeForeignToken(t *testing.T) {
	f := newFixture(t)

	// alice approved the pool for all, so the pool may move token 1 but not from bob
	err := f.stake(bob, 10, []int64{1}, []tier.Rarity{tier.Common})
	assert.ErrorIs(t, err, token.ErrIncorrectOwner)
	assert.False(t, reverts.IsRevertErr(err))

	// carol never approved the pool
	err = f.stake(carol, 10, []int64{9}, []tier.Rarity{tier.Common})
	assert.ErrorIs(t, err, token.ErrNotOwnerNorApproved)
	assert.False(t, reverts.IsRevertErr(err))

	// unminted
	err = f.stake(alice, 10, []int64{99}, []tier.Rarity{tier.Common})
	assert.ErrorIs(t, err, token.ErrNonexistentToken)
}

func TestStakeBatchIsAtomic(t *testing.T) {
	f := newFixture(t)
	events := len(f.st.Events())

	// token 6 belongs to bob, so the batch fails on its second element
	err := f.stake(alice, 10, []int64{1, 6}, []tier.Rarity{tier.Common, tier.Rare})
	assert.ErrorIs(t, err, token.ErrIncorrectOwner)

	assert.Equal(t, alice, f.nftOwner(1))
	assert.Equal(t, [tier.NumRarities]uint64{}, f.counts())
	assert.Len(t, f.st.Events(), events)
	ids, _ := f.pool.TokensOfOwner(alice)
	assert.Empty(t, ids)
}

func TestMaxSupply(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.pool.SetMaxSupply(owner, big.NewInt(2)))

	err := f.stake(alice, 10, []int64{1, 2, 3}, allTiers)
	assert.ErrorIs(t, err, ErrMaxSupply)
	assert.True(t, reverts.IsInputErr(err))

	require.NoError(t, f.stake(alice, 10, []int64{1, 2}, allTiers[:2]))
	assert.ErrorIs(t, f.stake(bob, 11, []int64{6}, []tier.Rarity{tier.Common}), ErrMaxSupply)
}

func TestClaim(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Common}))
	require.NoError(t, f.stake(bob, 10, []int64{6}, []tier.Rarity{tier.SuperRare}))

	require.NoError(t, f.pool.Claim(alice, []*big.Int{big.NewInt(1)}, 20))
	// common takes 10 of 35 parts of 10 tokens
	want := new(big.Int).Div(new(big.Int).Mul(eth(10), big.NewInt(10)), big.NewInt(35))
	assert.Equal(t, want.String(), f.balance(alice).String())
	assert.Zero(t, f.reward(1).Sign())
	assert.Equal(t, tier.PoolAddress, f.nftOwner(1), "claim keeps the token staked")

	// bob cannot claim alice's token
	assert.ErrorIs(t, f.pool.Claim(bob, []*big.Int{big.NewInt(1)}, 21), ErrNotNFTOwner)

	// nothing new accrued: no payout, no failure
	before := f.balance(alice)
	require.NoError(t, f.pool.Claim(alice, []*big.Int{big.NewInt(1)}, 20))
	assert.Equal(t, before.String(), f.balance(alice).String())
}

func TestClaimVaultFailurePropagates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Common}))
	require.NoError(t, f.vault.RemoveWhiteList(owner, tier.PoolAddress))

	err := f.pool.Claim(alice, []*big.Int{big.NewInt(1)}, 20)
	assert.ErrorIs(t, err, vault.ErrNotWhitelisted)

	// the settlement is rolled back with the failed disbursement
	rec, err := f.pool.StakedNFT(big.NewInt(1))
	require.NoError(t, err)
	assert.Zero(t, rec.RewardDebt.Sign())
	last, _ := f.pool.LastRewardBlock()
	assert.Equal(t, uint32(10), last)
}

func TestVaultShortfallIsCapped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Common}))
	require.NoError(t, f.vault.WithdrawToken(owner, float))
	require.NoError(t, f.tok.Mint(tier.VaultAddress, eth(1)))

	require.NoError(t, f.pool.Claim(alice, []*big.Int{big.NewInt(1)}, 20))
	assert.Equal(t, eth(1).String(), f.balance(alice).String())
	assert.Zero(t, f.balance(tier.VaultAddress).Sign())
}

func TestEmergencyWithdrawForfeits(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1, 2}, []tier.Rarity{tier.Common, tier.Rare}))
	require.NoError(t, f.pool.UpdatePool(50))
	require.Positive(t, f.reward(1).Sign())
	vaultBefore := f.balance(tier.VaultAddress)

	require.NoError(t, f.pool.EmergencyWithdraw(alice, []*big.Int{big.NewInt(1)}, 60))

	assert.Zero(t, f.balance(alice).Sign(), "no payout")
	assert.Equal(t, vaultBefore.String(), f.balance(tier.VaultAddress).String(), "forfeit stays in the vault")
	assert.Equal(t, alice, f.nftOwner(1))
	tokenID, debt, rarity, err := f.pool.UserStakedNft(alice, big.NewInt(1))
	require.NoError(t, err)
	assert.Zero(t, tokenID.Sign())
	assert.Zero(t, debt.Sign())
	assert.Equal(t, tier.Common, rarity)
	assert.Zero(t, f.reward(1).Sign())
	assert.Equal(t, [tier.NumRarities]uint64{0, 1, 0}, f.counts())

	last, _ := f.pool.LastRewardBlock()
	assert.Equal(t, uint32(60), last)

	assert.ErrorIs(t, f.pool.EmergencyWithdraw(bob, []*big.Int{big.NewInt(2)}, 61), ErrNotNFTOwner)
	f.assertConserved(alice)
}

func TestEmergencyWithdrawWithoutVault(t *testing.T) {
	f := newFixture(t)
	broken := &failingVault{}
	p := New(tier.PoolAddress, f.st, f.nft, broken, attest.NewVerifier())

	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.SuperRare}))
	assert.ErrorIs(t, p.Claim(alice, []*big.Int{big.NewInt(1)}, 20), token.ErrInsufficientBalance)

	require.NoError(t, p.EmergencyWithdraw(alice, []*big.Int{big.NewInt(1)}, 30))
	assert.Equal(t, 1, broken.calls, "only the claim reached the vault")
	assert.Equal(t, alice, f.nftOwner(1))
}

func TestRewardMonotonic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1, 2, 3}, allTiers))

	prev := make([]*big.Int, 3)
	for i := range prev {
		prev[i] = new(big.Int)
	}
	for block := uint32(11); block < 100; block += 7 {
		require.NoError(t, f.pool.UpdatePool(block))
		for i, id := range []int64{1, 2, 3} {
			r := f.reward(id)
			assert.True(t, r.Cmp(prev[i]) >= 0)
			prev[i] = r
		}
	}
	// one token per tier, so rewards follow the boosts
	assert.True(t, prev[0].Cmp(prev[1]) < 0)
	assert.True(t, prev[1].Cmp(prev[2]) < 0)
}

func TestPendingRewardMatchesUpdate(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1, 2}, []tier.Rarity{tier.Common, tier.Common}))
	require.NoError(t, f.stake(bob, 15, []int64{6}, []tier.Rarity{tier.Rare}))

	pending, err := f.pool.PendingReward(big.NewInt(6), 40)
	require.NoError(t, err)
	last, _ := f.pool.LastRewardBlock()
	assert.Equal(t, uint32(15), last, "a view does not write")

	require.NoError(t, f.pool.UpdatePool(40))
	assert.Equal(t, pending.String(), f.reward(6).String())

	zero, err := f.pool.PendingReward(big.NewInt(99), 40)
	require.NoError(t, err)
	assert.Zero(t, zero.Sign())
}

func TestEmptyTierForfeits(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Common}))
	// common alone for 10 blocks: it takes the whole emission
	require.NoError(t, f.stake(bob, 20, []int64{6}, []tier.Rarity{tier.Rare}))
	assert.Equal(t, eth(10).String(), f.reward(1).String())

	// a rare token staked later does not collect the earlier rare share
	assert.Zero(t, f.reward(6).Sign())
}

func TestMixedOperationsConserve(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stake(alice, 1, []int64{1, 2, 3, 4}, []tier.Rarity{tier.Common, tier.Rare, tier.Rare, tier.SuperRare}))
	require.NoError(t, f.stake(bob, 2, []int64{6, 7}, []tier.Rarity{tier.SuperRare, tier.Common}))
	f.assertConserved(alice, bob)

	require.NoError(t, f.pool.Unstake(alice, []*big.Int{big.NewInt(3), big.NewInt(1)}, 5))
	f.assertConserved(alice, bob)
	require.NoError(t, f.pool.EmergencyWithdraw(bob, []*big.Int{big.NewInt(6)}, 7))
	f.assertConserved(alice, bob)
	require.NoError(t, f.stake(bob, 8, []int64{8}, []tier.Rarity{tier.Rare}))
	require.NoError(t, f.pool.Claim(alice, []*big.Int{big.NewInt(4), big.NewInt(2)}, 9))
	f.assertConserved(alice, bob)

	assert.Equal(t, [tier.NumRarities]uint64{1, 2, 1}, f.counts())
	rarity, err := f.pool.NftRarity(big.NewInt(8))
	require.NoError(t, err)
	assert.Equal(t, tier.Rare, rarity)
	rarity, err = f.pool.NftRarity(big.NewInt(6))
	require.NoError(t, err)
	assert.Equal(t, tier.Common, rarity)

	common, _ := f.pool.TotalNftCommon()
	rare, _ := f.pool.TotalNftRare()
	superRare, _ := f.pool.TotalNftSuperRare()
	assert.Equal(t, []uint64{1, 2, 1}, []uint64{common, rare, superRare})
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	before := len(f.st.Events())
	require.NoError(t, f.stake(alice, 10, []int64{1}, []tier.Rarity{tier.Rare}))
	require.NoError(t, f.pool.Unstake(alice, []*big.Int{big.NewInt(1)}, 20))

	var names []string
	for _, ev := range f.st.Events()[before:] {
		if ev.Address == tier.PoolAddress {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"Staked", "Unstaked"}, names)
}
