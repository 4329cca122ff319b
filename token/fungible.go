// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

var (
	slotTotalSupply = solidity.Slot("total-supply")
	slotBalances    = solidity.Slot("balances")
	slotAllowances  = solidity.Slot("allowances")
)

// Token is a fungible token kept in contract storage.
type Token struct {
	context     *solidity.Context
	name        string
	symbol      string
	decimals    uint8
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[tier.Address, *big.Int]
	allowances  *solidity.Mapping[tier.Bytes32, *big.Int] // blake2b(owner, spender)
}

func NewToken(addr tier.Address, state *state.State, name, symbol string, decimals uint8) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		context:     ctx,
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[tier.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[tier.Bytes32, *big.Int](ctx, slotAllowances),
	}
}

func allowanceKey(owner, spender tier.Address) tier.Bytes32 {
	return tier.Blake2b(owner.Bytes(), spender.Bytes())
}

func (t *Token) Address() tier.Address { return t.context.Address() }
func (t *Token) Name() string          { return t.name }
func (t *Token) Symbol() string        { return t.symbol }
func (t *Token) Decimals() uint8       { return t.decimals }

func (t *Token) TotalSupply() (*big.Int, error) {
	v, err := t.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (t *Token) BalanceOf(addr tier.Address) (*big.Int, error) {
	return t.get(t.balances.Get(addr))
}

func (t *Token) Allowance(owner, spender tier.Address) (*big.Int, error) {
	return t.get(t.allowances.Get(allowanceKey(owner, spender)))
}

func (t *Token) get(v *big.Int, err error) (*big.Int, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Mint creates amount new tokens for to.
func (t *Token) Mint(to tier.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to.IsZero() {
		return ErrInvalidReceiver
	}
	return t.context.Atomic(func() error {
		v, overflow := uint256.FromBig(amount)
		if overflow {
			return solidity.ErrOverflow
		}
		if _, err := t.totalSupply.Add(v); err != nil {
			return err
		}
		bal, err := t.BalanceOf(to)
		if err != nil {
			return err
		}
		if err := t.balances.Set(to, new(big.Int).Add(bal, amount)); err != nil {
			return err
		}
		t.context.Emit(&state.Event{Name: "Transfer", Target: to, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// Transfer moves amount from caller to to.
func (t *Token) Transfer(caller, to tier.Address, amount *big.Int) error {
	return t.context.Atomic(func() error {
		return t.transfer(caller, to, amount)
	})
}

// Approve sets the amount spender may move on behalf of caller.
func (t *Token) Approve(caller, spender tier.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := t.allowances.Set(allowanceKey(caller, spender), new(big.Int).Set(amount)); err != nil {
		return err
	}
	t.context.Emit(&state.Event{Name: "Approval", Actor: caller, Target: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

// TransferFrom moves amount from from to to, spending the allowance from granted to spender.
func (t *Token) TransferFrom(spender, from, to tier.Address, amount *big.Int) error {
	return t.context.Atomic(func() error {
		if amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		allowance, err := t.Allowance(from, spender)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if err := t.allowances.Set(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount)); err != nil {
			return err
		}
		return t.transfer(from, to, amount)
	})
}

func (t *Token) transfer(from, to tier.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to.IsZero() {
		return ErrInvalidReceiver
	}
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.balances.Set(from, new(big.Int).Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, new(big.Int).Add(toBal, amount)); err != nil {
		return err
	}
	t.context.Emit(&state.Event{Name: "Transfer", Actor: from, Target: to, Amount: new(big.Int).Set(amount)})
	return nil
}
