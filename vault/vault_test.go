// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/lvldb"
	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
)

var (
	owner    = tier.BytesToAddress([]byte("owner"))
	operator = tier.BytesToAddress([]byte("operator"))
	user     = tier.BytesToAddress([]byte("user"))
)

type testVault struct {
	*Vault
	st  *state.State
	tok *token.Token
}

// newTestVault deploys a vault holding funded tokens, with the owner holding 1000 more.
func newTestVault(t *testing.T, funded int64) *testVault {
	st := state.New(lvldb.NewMem())
	tok := token.NewToken(tier.TokenAddress, st, "Reward", "RWD", 18)
	v := New(tier.VaultAddress, st, tok)
	require.NoError(t, v.Init(owner, tier.TokenAddress))
	require.NoError(t, tok.Mint(owner, big.NewInt(1000)))
	if funded > 0 {
		require.NoError(t, tok.Mint(tier.VaultAddress, big.NewInt(funded)))
	}
	return &testVault{v, st, tok}
}

func (tv *testVault) balanceOf(t *testing.T, addr tier.Address) int64 {
	b, err := tv.tok.BalanceOf(addr)
	require.NoError(t, err)
	return b.Int64()
}

func TestAccessors(t *testing.T) {
	v := newTestVault(t, 10)
	o, err := v.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, o)
	tok, err := v.Token()
	require.NoError(t, err)
	assert.Equal(t, tier.TokenAddress, tok)
	bal, err := v.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(10), bal.Int64())
}

func TestDeposit(t *testing.T) {
	v := newTestVault(t, 0)

	// no allowance: the token error passes through untouched
	err := v.DepositToken(owner, big.NewInt(100))
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
	assert.False(t, reverts.IsRevertErr(err))

	require.NoError(t, v.tok.Approve(owner, tier.VaultAddress, big.NewInt(100)))
	require.NoError(t, v.DepositToken(owner, big.NewInt(100)))
	assert.Equal(t, int64(100), v.balanceOf(t, tier.VaultAddress))
	assert.Equal(t, int64(900), v.balanceOf(t, owner))

	err = v.DepositToken(user, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.True(t, reverts.IsUnauthorized(err))
}

func TestWithdrawIsCapped(t *testing.T) {
	v := newTestVault(t, 50)

	assert.True(t, reverts.IsUnauthorized(v.WithdrawToken(user, big.NewInt(1))))

	require.NoError(t, v.WithdrawToken(owner, big.NewInt(20)))
	assert.Equal(t, int64(30), v.balanceOf(t, tier.VaultAddress))

	require.NoError(t, v.WithdrawToken(owner, big.NewInt(1_000_000)))
	assert.Equal(t, int64(0), v.balanceOf(t, tier.VaultAddress))
	assert.Equal(t, int64(1050), v.balanceOf(t, owner))
}

func TestDistribute(t *testing.T) {
	v := newTestVault(t, 100)

	err := v.DistributeToken(operator, user, big.NewInt(10))
	assert.ErrorIs(t, err, ErrNotWhitelisted)
	assert.True(t, reverts.IsUnauthorized(err))
	assert.Equal(t, "the caller isn't a whitelist", err.Error())

	assert.True(t, reverts.IsUnauthorized(v.AddWhiteList(user, operator)))
	require.NoError(t, v.AddWhiteList(owner, operator))
	ok, err := v.IsWhiteList(operator)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, v.DistributeToken(operator, user, big.NewInt(10)))
	assert.Equal(t, int64(10), v.balanceOf(t, user))

	// above balance: pays the whole balance and never fails for lack of funds
	require.NoError(t, v.DistributeToken(operator, user, big.NewInt(1_000)))
	assert.Equal(t, int64(100), v.balanceOf(t, user))
	assert.Equal(t, int64(0), v.balanceOf(t, tier.VaultAddress))

	require.NoError(t, v.DistributeToken(operator, user, big.NewInt(5)))
	assert.Equal(t, int64(100), v.balanceOf(t, user))

	require.NoError(t, v.RemoveWhiteList(owner, operator))
	ok, _ = v.IsWhiteList(operator)
	assert.False(t, ok)
	assert.ErrorIs(t, v.DistributeToken(operator, user, big.NewInt(1)), ErrNotWhitelisted)
}

func TestTransferOwnership(t *testing.T) {
	v := newTestVault(t, 0)

	assert.True(t, reverts.IsUnauthorized(v.TransferOwnership(user, user)))
	assert.True(t, reverts.IsInputErr(v.TransferOwnership(owner, tier.Address{})))

	require.NoError(t, v.TransferOwnership(owner, user))
	o, _ := v.Owner()
	assert.Equal(t, user, o)
	assert.True(t, reverts.IsUnauthorized(v.AddWhiteList(owner, operator)))
	require.NoError(t, v.AddWhiteList(user, operator))
}

func TestEvents(t *testing.T) {
	v := newTestVault(t, 100)
	require.NoError(t, v.AddWhiteList(owner, operator))
	before := len(v.st.Events())

	require.NoError(t, v.DistributeToken(operator, user, big.NewInt(7)))
	events := v.st.Events()[before:]
	// token transfer then vault record
	require.Len(t, events, 2)
	assert.Equal(t, "Transfer", events[0].Name)
	assert.Equal(t, tier.TokenAddress, events[0].Address)
	assert.Equal(t, "Distributed", events[1].Name)
	assert.Equal(t, tier.VaultAddress, events[1].Address)
	assert.Equal(t, int64(7), events[1].Amount.Int64())

	// a rejected call leaves no events
	before = len(v.st.Events())
	assert.Error(t, v.DistributeToken(user, user, big.NewInt(1)))
	assert.Len(t, v.st.Events(), before)
}
