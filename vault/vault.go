// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault holds the reward float and pays it out to allow-listed callers.
package vault

import (
	"math/big"

	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/metrics"
	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
)

var (
	logger = log.WithContext("pkg", "vault")

	metricOperations = metrics.LazyLoadCounterVec("vault_operation_count", []string{"op", "result"})
)

var (
	ErrNotOwner       = reverts.NewAuthorizationError("caller is not the owner")
	ErrNotWhitelisted = reverts.NewAuthorizationError("the caller isn't a whitelist")
	ErrInvalidAmount  = reverts.NewInputError("invalid amount")
)

var (
	slotOwner     = solidity.Slot("vault-owner")
	slotToken     = solidity.Slot("vault-token")
	slotWhitelist = solidity.Slot("vault-whitelist")
)

// Vault implements the reward vault contract.
type Vault struct {
	context   *solidity.Context
	owner     *solidity.Address
	tokenAddr *solidity.Address
	whitelist *solidity.Mapping[tier.Address, bool]
	token     token.Fungible
}

// New create a vault instance over its storage in state, paying out tok.
func New(addr tier.Address, state *state.State, tok token.Fungible) *Vault {
	ctx := solidity.NewContext(addr, state)
	return &Vault{
		context:   ctx,
		owner:     solidity.NewAddress(ctx, slotOwner),
		tokenAddr: solidity.NewAddress(ctx, slotToken),
		whitelist: solidity.NewMapping[tier.Address, bool](ctx, slotWhitelist),
		token:     tok,
	}
}

// Init writes the deployment configuration.
func (v *Vault) Init(owner, tokenAddr tier.Address) error {
	if owner.IsZero() {
		return reverts.NewInputError("owner is the zero address")
	}
	v.owner.Set(owner)
	v.tokenAddr.Set(tokenAddr)
	v.context.Emit(&state.Event{Name: "OwnershipTransferred", Target: owner})
	return nil
}

func (v *Vault) Address() tier.Address {
	return v.context.Address()
}

func (v *Vault) atomic(op string, fn func() error) error {
	err := v.context.Atomic(fn)
	result := "ok"
	switch {
	case err == nil:
	case reverts.IsRevertErr(err):
		result = "reverted"
	default:
		result = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
	if err != nil {
		logger.Debug("vault call failed", "op", op, "error", err)
	}
	return err
}

func (v *Vault) onlyOwner(caller tier.Address) (tier.Address, error) {
	owner, err := v.owner.Get()
	if err != nil {
		return tier.Address{}, err
	}
	if caller != owner {
		return tier.Address{}, ErrNotOwner
	}
	return owner, nil
}

// capped returns amount limited to the vault balance.
func (v *Vault) capped(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	bal, err := v.Balance()
	if err != nil {
		return nil, err
	}
	if amount.Cmp(bal) > 0 {
		return bal, nil
	}
	return new(big.Int).Set(amount), nil
}

// DepositToken pulls amount from the owner. The owner must have approved the vault.
func (v *Vault) DepositToken(caller tier.Address, amount *big.Int) error {
	return v.atomic("depositToken", func() error {
		owner, err := v.onlyOwner(caller)
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		if err := v.token.TransferFrom(v.Address(), owner, v.Address(), amount); err != nil {
			return err
		}
		v.context.Emit(&state.Event{Name: "Deposited", Actor: owner, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// WithdrawToken sends amount back to the owner, at most the whole balance.
func (v *Vault) WithdrawToken(caller tier.Address, amount *big.Int) error {
	return v.atomic("withdrawToken", func() error {
		owner, err := v.onlyOwner(caller)
		if err != nil {
			return err
		}
		amt, err := v.capped(amount)
		if err != nil {
			return err
		}
		if err := v.token.Transfer(v.Address(), owner, amt); err != nil {
			return err
		}
		v.context.Emit(&state.Event{Name: "Withdrawn", Actor: owner, Amount: amt})
		return nil
	})
}

// DistributeToken sends amount to to, at most the whole balance. Only allow-listed callers may distribute.
func (v *Vault) DistributeToken(caller, to tier.Address, amount *big.Int) error {
	return v.atomic("distributeToken", func() error {
		ok, err := v.IsWhiteList(caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotWhitelisted
		}
		amt, err := v.capped(amount)
		if err != nil {
			return err
		}
		if err := v.token.Transfer(v.Address(), to, amt); err != nil {
			return err
		}
		v.context.Emit(&state.Event{Name: "Distributed", Actor: caller, Target: to, Amount: amt})
		return nil
	})
}

func (v *Vault) AddWhiteList(caller, addr tier.Address) error {
	return v.atomic("addWhiteList", func() error {
		if _, err := v.onlyOwner(caller); err != nil {
			return err
		}
		if err := v.whitelist.Set(addr, true); err != nil {
			return err
		}
		v.context.Emit(&state.Event{Name: "WhitelistAdded", Actor: caller, Target: addr})
		return nil
	})
}

func (v *Vault) RemoveWhiteList(caller, addr tier.Address) error {
	return v.atomic("removeWhiteList", func() error {
		if _, err := v.onlyOwner(caller); err != nil {
			return err
		}
		v.whitelist.Delete(addr)
		v.context.Emit(&state.Event{Name: "WhitelistRemoved", Actor: caller, Target: addr})
		return nil
	})
}

// TransferOwnership hands the vault over to newOwner.
func (v *Vault) TransferOwnership(caller, newOwner tier.Address) error {
	return v.atomic("transferOwnership", func() error {
		if _, err := v.onlyOwner(caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return reverts.NewInputError("new owner is the zero address")
		}
		v.owner.Set(newOwner)
		v.context.Emit(&state.Event{Name: "OwnershipTransferred", Actor: caller, Target: newOwner})
		return nil
	})
}

func (v *Vault) Owner() (tier.Address, error) { return v.owner.Get() }
func (v *Vault) Token() (tier.Address, error) { return v.tokenAddr.Get() }

func (v *Vault) IsWhiteList(addr tier.Address) (bool, error) {
	return v.whitelist.Get(addr)
}

// Balance returns the reward float held by the vault.
func (v *Vault) Balance() (*big.Int, error) {
	return v.token.BalanceOf(v.Address())
}
