// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/lvldb"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

type TestStruct struct {
	Field1 uint64
	Addr1  tier.Address
	Amount *big.Int
}

func newTestContext() *Context {
	return NewContext(tier.BytesToAddress([]byte("contract")), state.New(lvldb.NewMem()))
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, Slot("counter"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	v, err = u.Add(uint256.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v.Uint64())

	v, err = u.Sub(uint256.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), v.Uint64())

	_, err = u.Sub(uint256.NewInt(7))
	assert.ErrorIs(t, err, ErrUnderflow)
	v, _ = u.Get()
	assert.Equal(t, uint64(6), v.Uint64(), "failed sub must not write")

	maxVal := new(uint256.Int).SetAllOne()
	u.Set(maxVal)
	_, err = u.Add(uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAddressAndBool(t *testing.T) {
	ctx := newTestContext()
	a := NewAddress(ctx, Slot("owner"))
	b := NewBool(ctx, Slot("paused"))

	got, err := a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	owner := tier.BytesToAddress([]byte("owner"))
	a.Set(owner)
	got, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	flag, err := b.Get()
	require.NoError(t, err)
	assert.False(t, flag)
	b.Set(true)
	flag, _ = b.Get()
	assert.True(t, flag)
	b.Set(false)
	flag, _ = b.Get()
	assert.False(t, flag)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[tier.Address, *TestStruct](ctx, Slot("structs"))
	key := tier.BytesToAddress([]byte("key"))

	v, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, v)

	want := &TestStruct{Field1: 7, Addr1: key, Amount: big.NewInt(1000)}
	require.NoError(t, m.Set(key, want))
	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, v)

	other, err := m.Get(tier.BytesToAddress([]byte("other")))
	require.NoError(t, err)
	assert.Nil(t, other)

	m.Delete(key)
	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMappingBigIntKeys(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[*big.Int, uint64](ctx, Slot("ids"))

	require.NoError(t, m.Set(big.NewInt(0), 10))
	require.NoError(t, m.Set(big.NewInt(1), 11))

	v, err := m.Get(big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)
	v, _ = m.Get(big.NewInt(1))
	assert.Equal(t, uint64(11), v)

	// same key under another base slot is a different entry
	n := NewMapping[*big.Int, uint64](ctx, Slot("other"))
	v, _ = n.Get(big.NewInt(1))
	assert.Zero(t, v)
}

func TestAtomic(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, Slot("counter"))

	require.NoError(t, ctx.Atomic(func() error {
		u.Set(uint256.NewInt(1))
		ctx.Emit(&state.Event{Name: "One"})
		return nil
	}))

	errBoom := errors.New("boom")
	err := ctx.Atomic(func() error {
		u.Set(uint256.NewInt(2))
		ctx.Emit(&state.Event{Name: "Two"})
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	v, _ := u.Get()
	assert.Equal(t, uint64(1), v.Uint64())
	events := ctx.State().Events()
	require.Len(t, events, 1)
	assert.Equal(t, "One", events[0].Name)
	assert.Equal(t, ctx.Address(), events[0].Address)
}
