// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

var (
	slotOwners    = solidity.Slot("owners")
	slotHoldings  = solidity.Slot("holdings")
	slotApprovals = solidity.Slot("approvals")
	slotOperators = solidity.Slot("operators")
)

// Collection is a non-fungible token collection kept in contract storage.
type Collection struct {
	context   *solidity.Context
	name      string
	owners    *solidity.Mapping[*big.Int, tier.Address]
	holdings  *solidity.Mapping[tier.Address, uint64]
	approvals *solidity.Mapping[*big.Int, tier.Address]
	operators *solidity.Mapping[tier.Bytes32, bool] // blake2b(owner, operator)
}

func NewCollection(addr tier.Address, state *state.State, name string) *Collection {
	ctx := solidity.NewContext(addr, state)
	return &Collection{
		context:   ctx,
		name:      name,
		owners:    solidity.NewMapping[*big.Int, tier.Address](ctx, slotOwners),
		holdings:  solidity.NewMapping[tier.Address, uint64](ctx, slotHoldings),
		approvals: solidity.NewMapping[*big.Int, tier.Address](ctx, slotApprovals),
		operators: solidity.NewMapping[tier.Bytes32, bool](ctx, slotOperators),
	}
}

func operatorKey(owner, operator tier.Address) tier.Bytes32 {
	return tier.Blake2b(owner.Bytes(), operator.Bytes())
}

func (c *Collection) Address() tier.Address { return c.context.Address() }
func (c *Collection) Name() string          { return c.name }

// OwnerOf returns the holder of id, failing with ErrNonexistentToken for an unminted id.
func (c *Collection) OwnerOf(id *big.Int) (tier.Address, error) {
	owner, err := c.owners.Get(id)
	if err != nil {
		return tier.Address{}, err
	}
	if owner.IsZero() {
		return tier.Address{}, ErrNonexistentToken
	}
	return owner, nil
}

func (c *Collection) BalanceOf(owner tier.Address) (uint64, error) {
	return c.holdings.Get(owner)
}

func (c *Collection) GetApproved(id *big.Int) (tier.Address, error) {
	if _, err := c.OwnerOf(id); err != nil {
		return tier.Address{}, err
	}
	return c.approvals.Get(id)
}

func (c *Collection) IsApprovedForAll(owner, operator tier.Address) (bool, error) {
	return c.operators.Get(operatorKey(owner, operator))
}

// Mint creates id for to.
func (c *Collection) Mint(to tier.Address, id *big.Int) error {
	if to.IsZero() {
		return ErrInvalidReceiver
	}
	return c.context.Atomic(func() error {
		owner, err := c.owners.Get(id)
		if err != nil {
			return err
		}
		if !owner.IsZero() {
			return ErrTokenExists
		}
		if err := c.move(tier.Address{}, to, id); err != nil {
			return err
		}
		c.context.Emit(&state.Event{Name: "Transfer", Target: to, TokenID: new(big.Int).Set(id)})
		return nil
	})
}

// Approve lets spender move id. Only the holder or one of its operators may approve.
func (c *Collection) Approve(caller, spender tier.Address, id *big.Int) error {
	owner, err := c.OwnerOf(id)
	if err != nil {
		return err
	}
	if caller != owner {
		ok, err := c.IsApprovedForAll(owner, caller)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotOwnerNorApproved
		}
	}
	if err := c.approvals.Set(id, spender); err != nil {
		return err
	}
	c.context.Emit(&state.Event{Name: "Approval", Actor: owner, Target: spender, TokenID: new(big.Int).Set(id)})
	return nil
}

func (c *Collection) SetApprovalForAll(caller, operator tier.Address, approved bool) error {
	key := operatorKey(caller, operator)
	if approved {
		if err := c.operators.Set(key, true); err != nil {
			return err
		}
	} else {
		c.operators.Delete(key)
	}
	name := "ApprovalForAll"
	if !approved {
		name = "ApprovalForAllRevoked"
	}
	c.context.Emit(&state.Event{Name: name, Actor: caller, Target: operator})
	return nil
}

// TransferFrom moves id from from to to on behalf of operator.
// The operator must be the holder, the approved address of id, or an operator of the holder.
func (c *Collection) TransferFrom(operator, from, to tier.Address, id *big.Int) error {
	return c.context.Atomic(func() error {
		owner, err := c.OwnerOf(id)
		if err != nil {
			return err
		}
		if ok, err := c.isApprovedOrOwner(owner, operator, id); err != nil {
			return err
		} else if !ok {
			return ErrNotOwnerNorApproved
		}
		if owner != from {
			return ErrIncorrectOwner
		}
		if to.IsZero() {
			return ErrInvalidReceiver
		}
		c.approvals.Delete(id)
		if err := c.move(from, to, id); err != nil {
			return err
		}
		c.context.Emit(&state.Event{Name: "Transfer", Actor: from, Target: to, TokenID: new(big.Int).Set(id)})
		return nil
	})
}

func (c *Collection) isApprovedOrOwner(owner, operator tier.Address, id *big.Int) (bool, error) {
	if operator == owner {
		return true, nil
	}
	approved, err := c.approvals.Get(id)
	if err != nil {
		return false, err
	}
	if approved == operator {
		return true, nil
	}
	return c.IsApprovedForAll(owner, operator)
}

func (c *Collection) move(from, to tier.Address, id *big.Int) error {
	if !from.IsZero() {
		n, err := c.holdings.Get(from)
		if err != nil {
			return err
		}
		if n <= 1 {
			c.holdings.Delete(from)
		} else if err := c.holdings.Set(from, n-1); err != nil {
			return err
		}
	}
	n, err := c.holdings.Get(to)
	if err != nil {
		return err
	}
	if err := c.holdings.Set(to, n+1); err != nil {
		return err
	}
	return c.owners.Set(id, to)
}
