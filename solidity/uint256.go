// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/tier"
)

var (
	ErrOverflow  = errors.New("arithmetic overflow")
	ErrUnderflow = errors.New("arithmetic underflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256, similar to storing an uint256 in a smart contract.
// Arithmetic is checked like Solidity 0.8.
type Uint256 struct {
	context *Context
	pos     tier.Bytes32
}

func NewUint256(context *Context, pos tier.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, value.Bytes32())
}

func (u *Uint256) Add(value *uint256.Int) (*uint256.Int, error) {
	current, err := u.Get()
	if err != nil {
		return nil, err
	}
	if _, overflow := current.AddOverflow(current, value); overflow {
		return nil, ErrOverflow
	}
	u.Set(current)
	return current, nil
}

func (u *Uint256) Sub(value *uint256.Int) (*uint256.Int, error) {
	current, err := u.Get()
	if err != nil {
		return nil, err
	}
	if _, underflow := current.SubOverflow(current, value); underflow {
		return nil, ErrUnderflow
	}
	u.Set(current)
	return current, nil
}
