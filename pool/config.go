// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

var (
	slotOwner         = solidity.Slot("pool-owner")
	slotTrustedSigner = solidity.Slot("pool-trusted-signer")
	slotNFT           = solidity.Slot("pool-nft")
	slotVault         = solidity.Slot("pool-vault")
	slotMaxSupply     = solidity.Slot("pool-max-supply")
	slotRate          = solidity.Slot("pool-distribute-per-block")
	slotBoosts        = [tier.NumRarities]tier.Bytes32{
		solidity.Slot("pool-boost-common"),
		solidity.Slot("pool-boost-rare"),
		solidity.Slot("pool-boost-super-rare"),
	}
)

// Config is the deployment configuration of a pool.
type Config struct {
	Owner                   tier.Address
	TrustedSigner           tier.Address
	NFT                     tier.Address
	Vault                   tier.Address
	MaxSupply               *big.Int
	DistributeTokenPerBlock *big.Int
	Boosts                  [tier.NumRarities]uint64
}

// DefaultConfig returns the launch parameters for the given owner and signer.
func DefaultConfig(owner, signer tier.Address) Config {
	return Config{
		Owner:                   owner,
		TrustedSigner:           signer,
		NFT:                     tier.CollectionAddress,
		Vault:                   tier.VaultAddress,
		MaxSupply:               new(big.Int).SetUint64(tier.InitialMaxSupply),
		DistributeTokenPerBlock: new(big.Int).Set(tier.InitialDistributeTokenPerBlock),
		Boosts:                  tier.InitialBoosts(),
	}
}

type config struct {
	owner         *solidity.Address
	trustedSigner *solidity.Address
	nft           *solidity.Address
	vault         *solidity.Address
	maxSupply     *solidity.Uint256
	rate          *solidity.Uint256
	boosts        [tier.NumRarities]*solidity.Uint256
}

func newConfig(ctx *solidity.Context) *config {
	c := &config{
		owner:         solidity.NewAddress(ctx, slotOwner),
		trustedSigner: solidity.NewAddress(ctx, slotTrustedSigner),
		nft:           solidity.NewAddress(ctx, slotNFT),
		vault:         solidity.NewAddress(ctx, slotVault),
		maxSupply:     solidity.NewUint256(ctx, slotMaxSupply),
		rate:          solidity.NewUint256(ctx, slotRate),
	}
	for i := range c.boosts {
		c.boosts[i] = solidity.NewUint256(ctx, slotBoosts[i])
	}
	return c
}

func positive(v *big.Int, name string) (*uint256.Int, error) {
	if v == nil || v.Sign() <= 0 {
		return nil, reverts.NewInputErrorf("invalid %s", name)
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return nil, reverts.NewInputErrorf("invalid %s", name)
	}
	return u, nil
}

func (p *Pool) onlyOwner(caller tier.Address) error {
	owner, err := p.config.owner.Get()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrNotOwner
	}
	return nil
}

// setting runs an owner only configuration change.
func (p *Pool) setting(op string, caller tier.Address, fn func() error) error {
	logger.Debug("changing config", "op", op, "caller", caller)
	return p.atomic(op, func() error {
		if err := p.onlyOwner(caller); err != nil {
			return err
		}
		return fn()
	})
}

func (p *Pool) SetTrustedSigner(caller, signer tier.Address) error {
	return p.setting("setTrustedSigner", caller, func() error {
		p.config.trustedSigner.Set(signer)
		p.context.Emit(&state.Event{Name: "TrustedSignerChanged", Actor: caller, Target: signer})
		return nil
	})
}

func (p *Pool) SetMaxSupply(caller tier.Address, maxSupply *big.Int) error {
	return p.setting("setMaxSupply", caller, func() error {
		v, err := positive(maxSupply, "max supply")
		if err != nil {
			return err
		}
		p.config.maxSupply.Set(v)
		p.context.Emit(&state.Event{Name: "MaxSupplyChanged", Actor: caller, Amount: v.ToBig()})
		return nil
	})
}

func (p *Pool) SetDistributeTokenPerBlock(caller tier.Address, rate *big.Int) error {
	return p.setting("setDistributeTokenPerBlock", caller, func() error {
		v, err := positive(rate, "distribute token per block")
		if err != nil {
			return err
		}
		p.config.rate.Set(v)
		p.context.Emit(&state.Event{Name: "DistributeTokenPerBlockChanged", Actor: caller, Amount: v.ToBig()})
		return nil
	})
}

func (p *Pool) SetCommonBoost(caller tier.Address, boost uint64) error {
	return p.setBoost("setCommonBoost", caller, tier.Common, boost)
}

func (p *Pool) SetRareBoost(caller tier.Address, boost uint64) error {
	return p.setBoost("setRareBoost", caller, tier.Rare, boost)
}

func (p *Pool) SetSuperRareBoost(caller tier.Address, boost uint64) error {
	return p.setBoost("setSuperRareBoost", caller, tier.SuperRare, boost)
}

func (p *Pool) setBoost(op string, caller tier.Address, rarity tier.Rarity, boost uint64) error {
	return p.setting(op, caller, func() error {
		p.config.boosts[rarity].Set(uint256.NewInt(boost))
		p.context.Emit(&state.Event{
			Name:   "BoostChanged",
			Actor:  caller,
			Rarity: rarity,
			Amount: new(big.Int).SetUint64(boost),
		})
		return nil
	})
}

// TransferOwnership hands the pool over to newOwner.
func (p *Pool) TransferOwnership(caller, newOwner tier.Address) error {
	return p.setting("transferOwnership", caller, func() error {
		if newOwner.IsZero() {
			return reverts.NewInputError("new owner is the zero address")
		}
		p.config.owner.Set(newOwner)
		p.context.Emit(&state.Event{Name: "OwnershipTransferred", Actor: caller, Target: newOwner})
		return nil
	})
}

//
// Getters - no state change
//

func (p *Pool) Owner() (tier.Address, error)         { return p.config.owner.Get() }
func (p *Pool) TrustedSigner() (tier.Address, error) { return p.config.trustedSigner.Get() }
func (p *Pool) NFT() (tier.Address, error)           { return p.config.nft.Get() }
func (p *Pool) Vault() (tier.Address, error)         { return p.config.vault.Get() }

func (p *Pool) MaxSupply() (*big.Int, error) {
	v, err := p.config.maxSupply.Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (p *Pool) DistributeTokenPerBlock() (*big.Int, error) {
	v, err := p.config.rate.Get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

// Boost returns the weight of a tier.
func (p *Pool) Boost(rarity tier.Rarity) (uint64, error) {
	if !rarity.Valid() {
		return 0, ErrInvalidRarity
	}
	v, err := p.config.boosts[rarity].Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (p *Pool) Boosts() (boosts [tier.NumRarities]uint64, err error) {
	for _, r := range tier.Rarities {
		if boosts[r], err = p.Boost(r); err != nil {
			return
		}
	}
	return
}

func (p *Pool) CommonBoost() (uint64, error)    { return p.Boost(tier.Common) }
func (p *Pool) RareBoost() (uint64, error)      { return p.Boost(tier.Rare) }
func (p *Pool) SuperRareBoost() (uint64, error) { return p.Boost(tier.SuperRare) }
