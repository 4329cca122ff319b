// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial deployment of the contracts.
package genesis

import (
	"math"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/pool"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

// Genesis is a validated deployment.
type Genesis struct {
	name   string
	custom CustomGenesis
	id     tier.Bytes32
}

// NewCustomNet validates gen and creates the genesis from it.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.BlockInterval == 0 {
		return nil, errors.New("blockInterval must not be 0")
	}
	if tier.Address(gen.Owner).IsZero() {
		return nil, errors.New("owner must be set")
	}
	if tier.Address(gen.TrustedSigner).IsZero() {
		return nil, errors.New("trustedSigner must be set")
	}

	seenAccounts := make(map[tier.Address]bool)
	seenNFTs := make(map[string]bool)
	for _, a := range gen.Accounts {
		addr := tier.Address(a.Address)
		if addr.IsZero() {
			return nil, errors.New("account address must be set")
		}
		if seenAccounts[addr] {
			return nil, errors.Errorf("%s: duplicated account", addr)
		}
		seenAccounts[addr] = true
		for _, id := range a.NFTs {
			if id == nil {
				return nil, errors.Errorf("%s: nft id must be set", addr)
			}
			key := id.Big().String()
			if seenNFTs[key] {
				return nil, errors.Errorf("%s: nft %s allocated twice", addr, key)
			}
			seenNFTs[key] = true
		}
	}

	data, err := yaml.Marshal(gen)
	if err != nil {
		return nil, err
	}
	return &Genesis{
		name:   "customnet",
		custom: *gen,
		id:     tier.Blake2b(data),
	}, nil
}

// Load reads a custom genesis file.
func Load(path string) (*Genesis, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var gen CustomGenesis
	if err := decoder.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	return NewCustomNet(&gen)
}

// ID returns the hash identifying the deployment.
func (g *Genesis) ID() tier.Bytes32 { return g.id }

// Name returns the network name.
func (g *Genesis) Name() string { return g.name }

// LaunchTime returns the unix time of block 0.
func (g *Genesis) LaunchTime() uint64 { return g.custom.LaunchTime }

// BlockInterval returns the seconds between two blocks.
func (g *Genesis) BlockInterval() uint64 { return g.custom.BlockInterval }

// Owner returns the owner of the pool and the vault.
func (g *Genesis) Owner() tier.Address { return tier.Address(g.custom.Owner) }

// TrustedSigner returns the initial attestation signer.
func (g *Genesis) TrustedSigner() tier.Address { return tier.Address(g.custom.TrustedSigner) }

// Custom returns a copy of the underlying custom genesis.
func (g *Genesis) Custom() CustomGenesis { return g.custom }

// BlockNumberAt returns the number of the block containing the unix time ts.
func (g *Genesis) BlockNumberAt(ts uint64) uint32 {
	if ts <= g.custom.LaunchTime {
		return 0
	}
	n := (ts - g.custom.LaunchTime) / g.custom.BlockInterval
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}

// PoolConfig returns the pool configuration, filling omitted params with launch defaults.
func (g *Genesis) PoolConfig() pool.Config {
	cfg := pool.DefaultConfig(g.Owner(), g.TrustedSigner())
	p := g.custom.Pool
	if p.MaxSupply != nil {
		cfg.MaxSupply = p.MaxSupply.Big()
	}
	if p.DistributeTokenPerBlock != nil {
		cfg.DistributeTokenPerBlock = p.DistributeTokenPerBlock.Big()
	}
	if p.Boosts != nil {
		cfg.Boosts = [tier.NumRarities]uint64{p.Boosts.Common, p.Boosts.Rare, p.Boosts.SuperRare}
	}
	return cfg
}

// Build deploys the contracts into state at block 0. Nothing is written if it fails.
func (g *Genesis) Build(st *state.State) (err error) {
	rev := st.NewCheckpoint()
	defer func() {
		if err != nil {
			st.RevertTo(rev)
		}
	}()

	c := builtin.Bind(st, attest.NewVerifier())
	owner := g.Owner()

	if err := c.Vault.Init(owner, builtin.Token.Address); err != nil {
		return errors.Wrap(err, "init vault")
	}
	if funding := g.custom.VaultFunding.Big(); funding.Sign() > 0 {
		if err := c.Token.Mint(builtin.Vault.Address, funding); err != nil {
			return errors.Wrap(err, "fund vault")
		}
	}
	if err := c.Vault.AddWhiteList(owner, builtin.Pool.Address); err != nil {
		return errors.Wrap(err, "allow pool")
	}
	if err := c.Pool.Init(g.PoolConfig(), 0); err != nil {
		return errors.Wrap(err, "init pool")
	}

	for _, a := range g.custom.Accounts {
		addr := tier.Address(a.Address)
		if bal := a.Balance.Big(); bal.Sign() > 0 {
			if err := c.Token.Mint(addr, bal); err != nil {
				return errors.Wrapf(err, "%s: mint balance", addr)
			}
		}
		for _, id := range a.NFTs {
			if err := c.Collection.Mint(addr, id.Big()); err != nil {
				return errors.Wrapf(err, "%s: mint nft %s", addr, id.Big())
			}
		}
	}
	return nil
}

// TotalNFTs returns the count of collection tokens minted at deployment.
func (g *Genesis) TotalNFTs() int {
	n := 0
	for _, a := range g.custom.Accounts {
		n += len(a.NFTs)
	}
	return n
}

func amounts(ids ...int64) []*Amount {
	out := make([]*Amount, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewAmount(big.NewInt(id)))
	}
	return out
}
