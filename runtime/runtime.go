// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes contract operations block by block over persistent storage.
package runtime

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/attest"
	"github.com/tierpool/tierpool/builtin"
	"github.com/tierpool/tierpool/genesis"
	"github.com/tierpool/tierpool/kv"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/logdb"
	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

var logger = log.WithContext("pkg", "runtime")

const metaBucket kv.Bucket = "m"

var (
	genesisIDKey = []byte("genesis-id")
	headKey      = []byte("head")
)

// ErrStaleBlock is returned when executing at a block older than the head.
var ErrStaleBlock = errors.New("block is older than head")

// ErrGenesisMismatch is returned when the store was built from another genesis.
var ErrGenesisMismatch = errors.New("genesis mismatch")

// Runtime serializes operations on the contracts. Each successful execution is
// committed to the main db and its events are written to the log db.
type Runtime struct {
	mu       sync.Mutex
	db       kv.Store
	meta     kv.Store
	logDB    *logdb.LogDB
	genesis  *genesis.Genesis
	state    *state.State
	verifier *attest.Verifier
	head     uint32
	newHead  chan struct{}
	now      func() time.Time
}

// New opens the runtime over db. The genesis deployment is built when db is empty.
func New(db kv.Store, logDB *logdb.LogDB, gen *genesis.Genesis) (*Runtime, error) {
	rt := &Runtime{
		db:       db,
		meta:     metaBucket.NewStore(db),
		logDB:    logDB,
		genesis:  gen,
		state:    state.New(db),
		verifier: attest.NewVerifier(),
		newHead:  make(chan struct{}),
		now:      time.Now,
	}

	id, err := rt.meta.Get(genesisIDKey)
	if err != nil {
		if !rt.meta.IsNotFound(err) {
			return nil, errors.Wrap(err, "read genesis id")
		}
		if err := rt.initGenesis(); err != nil {
			return nil, err
		}
		return rt, nil
	}
	if tier.BytesToBytes32(id) != gen.ID() {
		return nil, errors.Wrapf(ErrGenesisMismatch, "want %v, stored %v", gen.ID(), tier.BytesToBytes32(id))
	}

	head, err := rt.meta.Get(headKey)
	if err != nil {
		return nil, errors.Wrap(err, "read head")
	}
	rt.head = binary.BigEndian.Uint32(head)
	metricHead().Set(int64(rt.head))
	return rt, nil
}

func (rt *Runtime) initGenesis() error {
	if err := rt.genesis.Build(rt.state); err != nil {
		return errors.Wrap(err, "build genesis")
	}
	if err := rt.commit(0); err != nil {
		return err
	}
	id := rt.genesis.ID()
	if err := rt.meta.Put(genesisIDKey, id[:]); err != nil {
		return errors.Wrap(err, "write genesis id")
	}
	logger.Info("genesis built", "id", id, "network", rt.genesis.Name())
	return nil
}

// SetClock replaces the wall clock used by BlockNumber.
func (rt *Runtime) SetClock(now func() time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.now = now
}

// Genesis returns the deployment the runtime was built from.
func (rt *Runtime) Genesis() *genesis.Genesis { return rt.genesis }

// LogDB returns the event log db.
func (rt *Runtime) LogDB() *logdb.LogDB { return rt.logDB }

// Verifier returns the attestation verifier shared by executions.
func (rt *Runtime) Verifier() *attest.Verifier { return rt.verifier }

// Head returns the number of the last executed block.
func (rt *Runtime) Head() uint32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.head
}

// NewHeadWaiter returns a channel closed on the next commit.
func (rt *Runtime) NewHeadWaiter() <-chan struct{} {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.newHead
}

// BlockNumber returns the number of the current block by wall clock.
func (rt *Runtime) BlockNumber() uint32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.genesis.BlockNumberAt(uint64(rt.now().Unix()))
}

// Exec runs fn against the contracts at block and commits its changes.
// If fn fails nothing is written.
func (rt *Runtime) Exec(block uint32, fn func(c *builtin.Contracts) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if block < rt.head {
		return errors.Wrapf(ErrStaleBlock, "block %d, head %d", block, rt.head)
	}

	start := time.Now()
	if err := fn(builtin.Bind(rt.state, rt.verifier)); err != nil {
		rt.state.Discard()
		return err
	}
	if err := rt.commit(block); err != nil {
		rt.state.Discard()
		return err
	}
	metricExecDuration().Observe(time.Since(start).Milliseconds())
	return nil
}

// View runs fn against the contracts and drops any change it makes.
func (rt *Runtime) View(fn func(c *builtin.Contracts) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	defer rt.state.Discard()
	return fn(builtin.Bind(rt.state, rt.verifier))
}

func (rt *Runtime) commit(block uint32) error {
	events := rt.state.Events()
	stage := rt.state.Stage()
	if err := stage.Commit(rt.db); err != nil {
		return errors.Wrap(err, "commit state")
	}

	var head [4]byte
	binary.BigEndian.PutUint32(head[:], block)
	if err := rt.meta.Put(headKey, head[:]); err != nil {
		return errors.Wrap(err, "write head")
	}
	rt.head = block
	metricHead().Set(int64(block))
	defer func() {
		close(rt.newHead)
		rt.newHead = make(chan struct{})
	}()

	if len(events) > 0 {
		if err := rt.logDB.Write(block, events); err != nil {
			logger.Warn("failed to write events", "block", block, "err", err)
			return errors.Wrap(err, "write events")
		}
	}
	logger.Debug("block executed", "block", block, "changes", stage.Len(), "events", len(events))
	return nil
}
