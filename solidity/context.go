// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity lays out contract storage the way a Solidity contract does:
// fixed slots for scalars, hashed positions for mapping entries.
package solidity

import (
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

// Context binds storage accessors to a contract address in a state.
type Context struct {
	address tier.Address
	state   *state.State
}

func NewContext(address tier.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() tier.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Emit records an event of the bound contract.
func (c *Context) Emit(ev *state.Event) {
	ev.Address = c.address
	c.state.AddEvent(ev)
}

// Atomic runs fn inside a checkpoint, reverting every change made by fn if it fails.
func (c *Context) Atomic(fn func() error) error {
	rev := c.state.NewCheckpoint()
	if err := fn(); err != nil {
		c.state.RevertTo(rev)
		return err
	}
	return nil
}

// Slot derives a storage slot from a name.
func Slot(name string) tier.Bytes32 {
	return tier.BytesToBytes32([]byte(name))
}
