// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain runs the dev network on in-memory stores with a pinned clock.
package testchain

import (
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/genesis"
	"github.com/tierpool/tierpool/logdb"
	"github.com/tierpool/tierpool/lvldb"
	"github.com/tierpool/tierpool/runtime"
	"github.com/tierpool/tierpool/tier"
)

// Chain is a dev network runtime whose current block is set by the test.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	genesis *genesis.Genesis
	rt      *runtime.Runtime
	block   atomic.Uint32
}

// NewIntegrationTestChain creates a dev network chain positioned at block 0.
func NewIntegrationTestChain() (*Chain, error) {
	return NewIntegrationTestChainWithGenesis(genesis.NewDevnet())
}

// NewIntegrationTestChainWithGenesis creates a chain from gene positioned at block 0.
func NewIntegrationTestChainWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db := lvldb.NewMem()
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, fmt.Errorf("unable to open log db: %w", err)
	}
	rt, err := runtime.New(db, logDB, gene)
	if err != nil {
		logDB.Close()
		return nil, fmt.Errorf("unable to create runtime: %w", err)
	}

	c := &Chain{db: db, logDB: logDB, genesis: gene, rt: rt}
	rt.SetClock(func() time.Time {
		ts := gene.LaunchTime() + uint64(c.block.Load())*gene.BlockInterval()
		return time.Unix(int64(ts), 0)
	})
	return c, nil
}

func (c *Chain) Database() *lvldb.LevelDB        { return c.db }
func (c *Chain) LogDB() *logdb.LogDB             { return c.logDB }
func (c *Chain) Genesis() *genesis.Genesis       { return c.genesis }
func (c *Chain) Runtime() *runtime.Runtime       { return c.rt }
func (c *Chain) BlockNumber() uint32             { return c.block.Load() }
func (c *Chain) SetBlockNumber(n uint32)         { c.block.Store(n) }
func (c *Chain) Owner() genesis.DevAccount       { return genesis.DevAccounts()[0] }
func (c *Chain) Signer() genesis.DevAccount      { return genesis.DevAccounts()[1] }
func (c *Chain) Holder(i int) genesis.DevAccount { return genesis.DevAccounts()[2+i] }

// Close releases the stores.
func (c *Chain) Close() error {
	if err := c.logDB.Close(); err != nil {
		return err
	}
	return c.db.Close()
}

// HolderTokens returns the collection tokens the i-th holder got at genesis.
func (c *Chain) HolderTokens(i int) []*big.Int {
	ids := make([]*big.Int, 0, genesis.NFTsPerDevAccount)
	for k := range genesis.NFTsPerDevAccount {
		ids = append(ids, big.NewInt(int64(i*genesis.NFTsPerDevAccount+k+1)))
	}
	return ids
}

// Exec runs fn at the current block.
func (c *Chain) Exec(fn func(*builtin.Contracts) error) error {
	return c.rt.Exec(c.block.Load(), fn)
}

// Stake approves the pool and stakes ids on behalf of holder at the current block,
// with attestations signed by the dev signer.
func (c *Chain) Stake(holder genesis.DevAccount, ids []*big.Int, rarities []tier.Rarity) error {
	sigs := make([][]byte, len(ids))
	for i, id := range ids {
		att, err := attest.Sign(id, rarities[i], c.Signer().PrivateKey)
		if err != nil {
			return err
		}
		sigs[i] = att.Signature
	}
	block := c.block.Load()
	return c.rt.Exec(block, func(contracts *builtin.Contracts) error {
		if err := contracts.Collection.SetApprovalForAll(holder.Address, builtin.Pool.Address, true); err != nil {
			return err
		}
		return contracts.Pool.Stake(holder.Address, ids, rarities, sigs, block)
	})
}

// Claim claims ids on behalf of holder at the current block.
func (c *Chain) Claim(holder genesis.DevAccount, ids ...*big.Int) error {
	block := c.block.Load()
	return c.rt.Exec(block, func(contracts *builtin.Contracts) error {
		return contracts.Pool.Claim(holder.Address, ids, block)
	})
}

// Unstake unstakes ids on behalf of holder at the current block.
func (c *Chain) Unstake(holder genesis.DevAccount, ids ...*big.Int) error {
	block := c.block.Load()
	return c.rt.Exec(block, func(contracts *builtin.Contracts) error {
		return contracts.Pool.Unstake(holder.Address, ids, block)
	})
}

// Balance returns the reward token balance of addr.
func (c *Chain) Balance(addr tier.Address) (bal *big.Int, err error) {
	err = c.rt.View(func(contracts *builtin.Contracts) error {
		bal, err = contracts.Token.BalanceOf(addr)
		return err
	})
	return
}
