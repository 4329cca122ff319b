// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the deployed contracts to their fixed addresses.
package builtin

import (
	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/pool"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
	"github.com/tierpool/tierpool/vault"
)

// Metadata of the reward token and the collection.
const (
	TokenName      = "Tier Reward"
	TokenSymbol    = "TRW"
	CollectionName = "Tier Collection"
)

// Builtin contracts binding.
var (
	Token      = &tokenContract{&contract{"RewardToken", tier.TokenAddress}}
	Collection = &collectionContract{&contract{"Collection", tier.CollectionAddress}}
	Vault      = &vaultContract{&contract{"Vault", tier.VaultAddress}}
	Pool       = &poolContract{&contract{"TierPool", tier.PoolAddress}}
)

// contract is a named account at a fixed address.
type contract struct {
	name    string
	Address tier.Address
}

func (c *contract) Name() string { return c.name }

type (
	tokenContract      struct{ *contract }
	collectionContract struct{ *contract }
	vaultContract      struct{ *contract }
	poolContract       struct{ *contract }
)

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.NewToken(t.Address, state, TokenName, TokenSymbol, tier.TokenDecimals)
}

func (c *collectionContract) WithState(state *state.State) *token.Collection {
	return token.NewCollection(c.Address, state, CollectionName)
}

func (v *vaultContract) WithState(state *state.State) *vault.Vault {
	return vault.New(v.Address, state, Token.WithState(state))
}

func (p *poolContract) WithState(state *state.State, verifier *attest.Verifier) *pool.Pool {
	return pool.New(p.Address, state, Collection.WithState(state), Vault.WithState(state), verifier)
}

// Contracts is the set of contracts bound to one state.
type Contracts struct {
	Token      *token.Token
	Collection *token.Collection
	Vault      *vault.Vault
	Pool       *pool.Pool
}

// Bind binds all contracts to state.
func Bind(state *state.State, verifier *attest.Verifier) *Contracts {
	tok := Token.WithState(state)
	nft := Collection.WithState(state)
	v := vault.New(Vault.Address, state, tok)
	return &Contracts{
		Token:      tok,
		Collection: nft,
		Vault:      v,
		Pool:       pool.New(Pool.Address, state, nft, v, verifier),
	}
}
