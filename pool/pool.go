// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the staking pool: holders lock attested NFTs and earn
// the reward token, split over three rarity tiers.
package pool

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/pool/ledger"
	"github.com/tierpool/tierpool/pool/reward"
	"github.com/tierpool/tierpool/reverts"
	"github.com/tierpool/tierpool/solidity"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
	"github.com/tierpool/tierpool/token"
)

var logger = log.WithContext("pkg", "pool")

var (
	ErrInvalidInput     = reverts.NewInputError("invalid input")
	ErrInvalidSignature = reverts.NewInputError("invalid signature")
	ErrInvalidRarity    = reverts.NewInputError("invalid rarity")
	ErrNotNFTOwner      = reverts.NewInputError("caller is not the nft owner")
	ErrMaxSupply        = reverts.NewInputError("max supply reached")
	ErrNotOwner         = reverts.NewAuthorizationError("caller is not the owner")
)

// Distributor pays rewards out of the reward float.
type Distributor interface {
	DistributeToken(caller, to tier.Address, amount *big.Int) error
}

// Pool implements the staking pool contract.
type Pool struct {
	context  *solidity.Context
	config   *config
	ledger   *ledger.Ledger
	reward   *reward.Accumulator
	nft      token.NonFungible
	vault    Distributor
	verifier *attest.Verifier
}

// New create a pool instance over its storage in state.
func New(
	addr tier.Address,
	state *state.State,
	nft token.NonFungible,
	vault Distributor,
	verifier *attest.Verifier,
) *Pool {
	ctx := solidity.NewContext(addr, state)
	return &Pool{
		context:  ctx,
		config:   newConfig(ctx),
		ledger:   ledger.New(ctx),
		reward:   reward.New(ctx),
		nft:      nft,
		vault:    vault,
		verifier: verifier,
	}
}

// Init writes the deployment configuration. Accrual starts at block.
func (p *Pool) Init(cfg Config, block uint32) error {
	return p.context.Atomic(func() error {
		if cfg.Owner.IsZero() {
			return reverts.NewInputError("owner is the zero address")
		}
		maxSupply, err := positive(cfg.MaxSupply, "max supply")
		if err != nil {
			return err
		}
		rate, err := positive(cfg.DistributeTokenPerBlock, "distribute token per block")
		if err != nil {
			return err
		}
		p.config.owner.Set(cfg.Owner)
		p.config.trustedSigner.Set(cfg.TrustedSigner)
		p.config.nft.Set(cfg.NFT)
		p.config.vault.Set(cfg.Vault)
		p.config.maxSupply.Set(maxSupply)
		p.config.rate.Set(rate)
		for _, r := range tier.Rarities {
			p.config.boosts[r].Set(uint256.NewInt(cfg.Boosts[r]))
		}
		p.reward.Init(block)
		p.context.Emit(&state.Event{Name: "OwnershipTransferred", Target: cfg.Owner})
		return nil
	})
}

func (p *Pool) Address() tier.Address {
	return p.context.Address()
}

// atomic runs fn as one call, reverting all of its effects on error.
func (p *Pool) atomic(op string, fn func() error) error {
	err := p.context.Atomic(fn)
	result := "ok"
	switch {
	case err == nil:
	case reverts.IsRevertErr(err):
		result = "reverted"
	default:
		result = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
	return err
}

// updatePool advances the accumulators to block with the current populations and parameters.
func (p *Pool) updatePool(block uint32) error {
	counts, err := p.ledger.Counts()
	if err != nil {
		return err
	}
	boosts, err := p.Boosts()
	if err != nil {
		return err
	}
	rate, err := p.DistributeTokenPerBlock()
	if err != nil {
		return err
	}
	return p.reward.Advance(block, counts, boosts, rate)
}

func (p *Pool) recordPopulation() {
	counts, err := p.ledger.Counts()
	if err != nil {
		return
	}
	for _, r := range tier.Rarities {
		metricStakedNFTs().SetWithLabel(int64(counts[r]), map[string]string{"rarity": r.String()})
	}
}

// ownedRecord returns the record of id if caller staked it.
func (p *Pool) ownedRecord(caller tier.Address, id *big.Int) (*ledger.Record, error) {
	rec, err := p.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Owner != caller {
		return nil, ErrNotNFTOwner
	}
	return rec, nil
}

//
// Setters - state change
//

// UpdatePool accrues rewards up to block.
func (p *Pool) UpdatePool(block uint32) error {
	return p.atomic("updatePool", func() error {
		return p.updatePool(block)
	})
}

// Stake locks ids into the pool. Each rarity must be attested by the trusted signer.
func (p *Pool) Stake(caller tier.Address, ids []*big.Int, rarities []tier.Rarity, sigs [][]byte, block uint32) error {
	logger.Debug("staking", "caller", caller, "count", len(ids), "block", block)

	err := p.atomic("stake", func() error {
		if len(ids) == 0 || len(ids) != len(rarities) || len(ids) != len(sigs) {
			return ErrInvalidInput
		}
		if err := p.updatePool(block); err != nil {
			return err
		}
		signer, err := p.TrustedSigner()
		if err != nil {
			return err
		}
		maxSupply, err := p.MaxSupply()
		if err != nil {
			return err
		}
		for i, id := range ids {
			rarity := rarities[i]
			if id == nil || id.Sign() < 0 || !rarity.Valid() {
				return ErrInvalidInput
			}
			if !p.verifier.Verify(id, rarity, sigs[i], signer) {
				return ErrInvalidSignature
			}
			rec, err := p.ledger.Get(id)
			if err != nil {
				return err
			}
			if rec != nil {
				return ledger.ErrAlreadyStaked
			}
			total, err := p.ledger.Total()
			if err != nil {
				return err
			}
			if new(big.Int).SetUint64(total+1).Cmp(maxSupply) > 0 {
				return ErrMaxSupply
			}
			if err := p.nft.TransferFrom(p.Address(), caller, p.Address(), id); err != nil {
				return err
			}
			acc, err := p.reward.Acc(rarity)
			if err != nil {
				return err
			}
			if err := p.ledger.RecordStake(caller, id, rarity, acc); err != nil {
				return err
			}
			p.context.Emit(&state.Event{
				Name:    "Staked",
				Actor:   caller,
				TokenID: new(big.Int).Set(id),
				Rarity:  rarity,
			})
		}
		return nil
	})
	if err != nil {
		logger.Info("stake failed", "caller", caller, "error", err)
		return err
	}
	p.recordPopulation()
	logger.Info("staked", "caller", caller, "count", len(ids))
	return nil
}

// settle pays out what id has earned to caller.
func (p *Pool) settle(caller tier.Address, id *big.Int) (*big.Int, error) {
	owed, err := p.reward.Settle(p.ledger, id)
	if err != nil {
		return nil, err
	}
	if owed.Sign() > 0 {
		if err := p.vault.DistributeToken(p.Address(), caller, owed); err != nil {
			return nil, err
		}
	}
	return owed, nil
}

// Claim pays out the rewards of ids, which stay staked.
func (p *Pool) Claim(caller tier.Address, ids []*big.Int, block uint32) error {
	logger.Debug("claiming", "caller", caller, "count", len(ids), "block", block)

	err := p.atomic("claim", func() error {
		if len(ids) == 0 {
			return ErrInvalidInput
		}
		if err := p.updatePool(block); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := p.ownedRecord(caller, id); err != nil {
				return err
			}
			owed, err := p.settle(caller, id)
			if err != nil {
				return err
			}
			p.context.Emit(&state.Event{Name: "Claimed", Actor: caller, TokenID: new(big.Int).Set(id), Amount: owed})
		}
		return nil
	})
	if err != nil {
		logger.Info("claim failed", "caller", caller, "error", err)
	}
	return err
}

// Unstake pays out the rewards of ids and returns them to caller.
func (p *Pool) Unstake(caller tier.Address, ids []*big.Int, block uint32) error {
	logger.Debug("unstaking", "caller", caller, "count", len(ids), "block", block)

	err := p.atomic("unstake", func() error {
		if len(ids) == 0 {
			return ErrInvalidInput
		}
		if err := p.updatePool(block); err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := p.ownedRecord(caller, id)
			if err != nil {
				return err
			}
			owed, err := p.settle(caller, id)
			if err != nil {
				return err
			}
			if err := p.nft.TransferFrom(p.Address(), p.Address(), caller, id); err != nil {
				return err
			}
			if err := p.ledger.Clear(id); err != nil {
				return err
			}
			p.context.Emit(&state.Event{
				Name:    "Unstaked",
				Actor:   caller,
				TokenID: new(big.Int).Set(id),
				Rarity:  rec.Rarity,
				Amount:  owed,
			})
		}
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "caller", caller, "error", err)
		return err
	}
	p.recordPopulation()
	logger.Info("unstaked", "caller", caller, "count", len(ids))
	return nil
}

// EmergencyWithdraw returns ids to caller without paying out. Rewards earned by ids are forfeited.
// It touches neither the vault nor the reward token.
func (p *Pool) EmergencyWithdraw(caller tier.Address, ids []*big.Int, block uint32) error {
	logger.Debug("emergency withdraw", "caller", caller, "count", len(ids), "block", block)

	err := p.atomic("emergencyWithdraw", func() error {
		if len(ids) == 0 {
			return ErrInvalidInput
		}
		if err := p.updatePool(block); err != nil {
			return err
		}
		for _, id := range ids {
			rec, err := p.ownedRecord(caller, id)
			if err != nil {
				return err
			}
			forfeited, err := p.reward.Pending(rec.Rarity, rec.Checkpoint)
			if err != nil {
				return err
			}
			if err := p.nft.TransferFrom(p.Address(), p.Address(), caller, id); err != nil {
				return err
			}
			if err := p.ledger.Clear(id); err != nil {
				return err
			}
			p.context.Emit(&state.Event{
				Name:    "EmergencyWithdrawn",
				Actor:   caller,
				TokenID: new(big.Int).Set(id),
				Rarity:  rec.Rarity,
				Amount:  forfeited,
			})
		}
		return nil
	})
	if err != nil {
		logger.Info("emergency withdraw failed", "caller", caller, "error", err)
		return err
	}
	p.recordPopulation()
	logger.Warn("emergency withdrawn", "caller", caller, "count", len(ids))
	return nil
}

//
// Getters - no state change
//

// GetUserRewardByNFT returns what id has earned as of the last accrual. It is zero for an unstaked id.
func (p *Pool) GetUserRewardByNFT(id *big.Int) (*big.Int, error) {
	rec, err := p.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return new(big.Int), nil
	}
	return p.reward.Pending(rec.Rarity, rec.Checkpoint)
}

// PendingReward returns what id would have earned if the pool were updated at block.
func (p *Pool) PendingReward(id *big.Int, block uint32) (*big.Int, error) {
	rec, err := p.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return new(big.Int), nil
	}
	counts, err := p.ledger.Counts()
	if err != nil {
		return nil, err
	}
	boosts, err := p.Boosts()
	if err != nil {
		return nil, err
	}
	rate, err := p.DistributeTokenPerBlock()
	if err != nil {
		return nil, err
	}
	accs, err := p.reward.Simulate(block, counts, boosts, rate)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(accs[rec.Rarity].ToBig(), rec.Checkpoint), nil
}

// StakedNFT is the view of a staked token.
type StakedNFT struct {
	TokenID    *big.Int
	Owner      tier.Address
	Rarity     tier.Rarity
	RewardDebt *big.Int
}

// StakedNFT returns the record of id, or nil if it is not staked.
func (p *Pool) StakedNFT(id *big.Int) (*StakedNFT, error) {
	rec, err := p.ledger.Get(id)
	if err != nil || rec == nil {
		return nil, err
	}
	return &StakedNFT{
		TokenID:    new(big.Int).Set(id),
		Owner:      rec.Owner,
		Rarity:     rec.Rarity,
		RewardDebt: rec.Checkpoint,
	}, nil
}

// UserStakedNft returns the token id, reward debt and rarity of id. All are zero unless owner staked it.
func (p *Pool) UserStakedNft(owner tier.Address, id *big.Int) (*big.Int, *big.Int, tier.Rarity, error) {
	rec, err := p.ledger.Get(id)
	if err != nil {
		return nil, nil, 0, err
	}
	if rec == nil || rec.Owner != owner {
		return new(big.Int), new(big.Int), 0, nil
	}
	return new(big.Int).Set(id), rec.Checkpoint, rec.Rarity, nil
}

// NftRarity returns the rarity id was staked with, Common if it is not staked.
func (p *Pool) NftRarity(id *big.Int) (tier.Rarity, error) {
	rec, err := p.ledger.Get(id)
	if err != nil || rec == nil {
		return 0, err
	}
	return rec.Rarity, nil
}

func (p *Pool) TotalNftCommon() (uint64, error)    { return p.ledger.Count(tier.Common) }
func (p *Pool) TotalNftRare() (uint64, error)      { return p.ledger.Count(tier.Rare) }
func (p *Pool) TotalNftSuperRare() (uint64, error) { return p.ledger.Count(tier.SuperRare) }
func (p *Pool) TotalNftIsStaked() (uint64, error)  { return p.ledger.Total() }

func (p *Pool) LastRewardBlock() (uint32, error) { return p.reward.LastRewardBlock() }

func (p *Pool) CommonReward() (*big.Int, error)    { return p.reward.Acc(tier.Common) }
func (p *Pool) RareReward() (*big.Int, error)      { return p.reward.Acc(tier.Rare) }
func (p *Pool) SuperRareReward() (*big.Int, error) { return p.reward.Acc(tier.SuperRare) }

// BalanceOf returns the number of tokens owner has staked.
func (p *Pool) BalanceOf(owner tier.Address) (uint64, error) {
	return p.ledger.BalanceOf(owner)
}

// TokensOfOwner returns the ids owner has staked, in staking order.
func (p *Pool) TokensOfOwner(owner tier.Address) ([]*big.Int, error) {
	return p.ledger.TokensOf(owner)
}
