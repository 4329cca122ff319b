// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the minimal fungible and non-fungible token contracts
// the pool and the vault depend on.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/tier"
)

var (
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("amount must not be negative")
	ErrInvalidReceiver       = errors.New("invalid receiver")

	ErrNotOwnerNorApproved = errors.New("caller is not token owner or approved")
	ErrIncorrectOwner      = errors.New("transfer from incorrect owner")
	ErrNonexistentToken    = errors.New("invalid token ID")
	ErrTokenExists         = errors.New("token already minted")
)

// Fungible is what the vault needs from the reward token.
type Fungible interface {
	BalanceOf(addr tier.Address) (*big.Int, error)
	Transfer(caller, to tier.Address, amount *big.Int) error
	TransferFrom(spender, from, to tier.Address, amount *big.Int) error
}

// NonFungible is what the pool needs from the NFT collection.
type NonFungible interface {
	OwnerOf(id *big.Int) (tier.Address, error)
	BalanceOf(owner tier.Address) (uint64, error)
	TransferFrom(operator, from, to tier.Address, id *big.Int) error
}

var (
	_ Fungible    = (*Token)(nil)
	_ NonFungible = (*Collection)(nil)
)
