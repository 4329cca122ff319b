// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/tierpool/tierpool/api/restutil"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/runtime"
	"github.com/tierpool/tierpool/tier"
)

type Pool struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Pool {
	return &Pool{rt}
}

// block returns the block reads and syncs are evaluated at, never behind the head.
func (p *Pool) block() uint32 {
	block := p.rt.BlockNumber()
	if head := p.rt.Head(); block < head {
		return head
	}
	return block
}

func (p *Pool) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	block := p.block()
	head := p.rt.Head()

	var sum Summary
	err := p.rt.View(func(c *builtin.Contracts) (err error) {
		pl := c.Pool
		if sum.Owner, err = pl.Owner(); err != nil {
			return err
		}
		if sum.TrustedSigner, err = pl.TrustedSigner(); err != nil {
			return err
		}
		if sum.NFT, err = pl.NFT(); err != nil {
			return err
		}
		if sum.Vault, err = pl.Vault(); err != nil {
			return err
		}
		maxSupply, err := pl.MaxSupply()
		if err != nil {
			return err
		}
		rate, err := pl.DistributeTokenPerBlock()
		if err != nil {
			return err
		}
		boosts, err := pl.Boosts()
		if err != nil {
			return err
		}
		var (
			counts [tier.NumRarities]uint64
			accs   [tier.NumRarities]*math.HexOrDecimal256
		)
		if counts[tier.Common], err = pl.TotalNftCommon(); err != nil {
			return err
		}
		if counts[tier.Rare], err = pl.TotalNftRare(); err != nil {
			return err
		}
		if counts[tier.SuperRare], err = pl.TotalNftSuperRare(); err != nil {
			return err
		}
		for r, get := range [tier.NumRarities]func() (*big.Int, error){pl.CommonReward, pl.RareReward, pl.SuperRareReward} {
			acc, err := get()
			if err != nil {
				return err
			}
			accs[r] = restutil.Big(acc)
		}
		if sum.TotalStaked, err = pl.TotalNftIsStaked(); err != nil {
			return err
		}
		if sum.LastRewardBlock, err = pl.LastRewardBlock(); err != nil {
			return err
		}
		sum.MaxSupply = restutil.Big(maxSupply)
		sum.DistributeTokenPerBlock = restutil.Big(rate)
		sum.Boosts = newTiers(boosts)
		sum.Staked = newTiers(counts)
		sum.Accumulators = newTiers(accs)
		return nil
	})
	if err != nil {
		return err
	}
	sum.Head = head
	sum.BlockNumber = block
	return restutil.WriteJSON(w, &sum)
}

func (p *Pool) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseTokenID("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	block := p.block()

	tok := Token{TokenID: restutil.Big(id), BlockNumber: block}
	err = p.rt.View(func(c *builtin.Contracts) error {
		staked, err := c.Pool.StakedNFT(id)
		if err != nil {
			return err
		}
		earned, err := c.Pool.GetUserRewardByNFT(id)
		if err != nil {
			return err
		}
		pending, err := c.Pool.PendingReward(id, block)
		if err != nil {
			return err
		}
		tok.Earned = restutil.Big(earned)
		tok.PendingReward = restutil.Big(pending)
		if staked != nil {
			tok.Staked = true
			tok.Owner = &staked.Owner
			tok.Rarity = staked.Rarity.String()
			tok.RewardDebt = restutil.Big(staked.RewardDebt)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &tok)
}

func (p *Pool) handleGetOwnerTokens(w http.ResponseWriter, req *http.Request) error {
	owner, err := restutil.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	res := OwnerTokens{Owner: owner, TokenIDs: []*math.HexOrDecimal256{}}
	err = p.rt.View(func(c *builtin.Contracts) error {
		ids, err := c.Pool.TokensOfOwner(owner)
		if err != nil {
			return err
		}
		for _, id := range ids {
			res.TokenIDs = append(res.TokenIDs, restutil.Big(id))
		}
		res.Count, err = c.Pool.BalanceOf(owner)
		return err
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &res)
}

func (p *Pool) handleSync(w http.ResponseWriter, _ *http.Request) error {
	block := p.block()

	res := SyncResult{BlockNumber: block}
	err := p.rt.Exec(block, func(c *builtin.Contracts) error {
		if err := c.Pool.UpdatePool(block); err != nil {
			return err
		}
		var err error
		res.LastRewardBlock, err = c.Pool.LastRewardBlock()
		return err
	})
	if err != nil {
		return restutil.FromRevert(err)
	}
	return restutil.WriteJSON(w, &res)
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetSummary))
	sub.Path("/tokens/{id}").
		Methods(http.MethodGet).
		Name("GET /pool/tokens/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetToken))
	sub.Path("/owners/{address}/tokens").
		Methods(http.MethodGet).
		Name("GET /pool/owners/{address}/tokens").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetOwnerTokens))
	sub.Path("/sync").
		Methods(http.MethodPost).
		Name("POST /pool/sync").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleSync))
}
