// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/tierpool/tierpool/tier"
)

// Bool is a single flag slot. False is stored as an empty slot.
type Bool struct {
	context *Context
	pos     tier.Bytes32
}

func NewBool(context *Context, pos tier.Bytes32) *Bool {
	return &Bool{context: context, pos: pos}
}

func (b *Bool) Get() (bool, error) {
	storage, err := b.context.state.GetStorage(b.context.address, b.pos)
	if err != nil {
		return false, err
	}
	return !storage.IsZero(), nil
}

func (b *Bool) Set(value bool) {
	var v tier.Bytes32
	if value {
		v[31] = 1
	}
	b.context.state.SetStorage(b.context.address, b.pos, v)
}
