// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes committed contract events in sqlite for filtering.
package logdb

import (
	"context"
	"database/sql"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/state"
	"github.com/tierpool/tierpool/tier"
)

const (
	maxSeqQuery      = "SELECT MAX(seq) FROM event WHERE seq >= ? AND seq <= ?"
	insertEventQuery = "INSERT INTO event(seq, address, name, actor, target, tokenID, rarity, amount) VALUES(?, ?, ?, ?, ?, ?, ?, ?)"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()

	// a memory db lives and dies with its single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;" + eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// Write appends events committed at blockNum, after any already written for that block.
func (db *LogDB) Write(blockNum uint32, events []*state.Event) error {
	if len(events) == 0 {
		return nil
	}
	// prepared before the tx takes the only connection
	insert, release, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	defer release()
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := db.write(tx, tx.Stmt(insert), blockNum, events); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWrittenEvents().Add(int64(len(events)))
	return nil
}

func (db *LogDB) write(tx *sql.Tx, insert *sql.Stmt, blockNum uint32, events []*state.Event) error {
	first, last := blockBounds(blockNum)
	var maxSeq sql.NullInt64
	if err := tx.QueryRow(maxSeqQuery, first, last).Scan(&maxSeq); err != nil {
		return err
	}
	var next uint32
	if maxSeq.Valid {
		next = sequence(maxSeq.Int64).Index() + 1
	}

	defer insert.Close()

	for i, ev := range events {
		if _, err := insert.Exec(
			newSequence(blockNum, next+uint32(i)),
			ev.Address.Bytes(),
			ev.Name,
			addressValue(ev.Actor),
			addressValue(ev.Target),
			uintValue(ev.TokenID),
			ev.Rarity,
			uintValue(ev.Amount),
		); err != nil {
			return err
		}
	}
	return nil
}

// NewestBlockNumber returns the block of the latest written event.
func (db *LogDB) NewestBlockNumber() (uint32, bool, error) {
	var maxSeq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&maxSeq); err != nil {
		return 0, false, err
	}
	if !maxSeq.Valid {
		return 0, false, nil
	}
	return sequence(maxSeq.Int64).BlockNumber(), true, nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, address, name, actor, target, tokenID, rarity, amount FROM event WHERE 1"

	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args []any
		stmt = query
	)
	if filter.Range != nil {
		stmt += " AND seq >= ?"
		args = append(args, newSequence(filter.Range.From, 0))
		if filter.Range.To >= filter.Range.From {
			stmt += " AND seq <= ?"
			args = append(args, newSequence(filter.Range.To, maxIndex))
		}
	}

	if len(filter.CriteriaSet) > 0 {
		stmt += " AND ("
		for i, c := range filter.CriteriaSet {
			if i > 0 {
				stmt += " OR "
			}
			stmt += "(1"
			if c.Address != nil {
				stmt += " AND address = ?"
				args = append(args, c.Address.Bytes())
			}
			if c.Name != "" {
				stmt += " AND name = ?"
				args = append(args, c.Name)
			}
			if c.Actor != nil {
				stmt += " AND actor = ?"
				args = append(args, c.Actor.Bytes())
			}
			if c.TokenID != nil {
				stmt += " AND tokenID = ?"
				args = append(args, uintValue(c.TokenID))
			}
			stmt += ")"
		}
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, release, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	defer release()
	if changed, hit, miss := db.stmtCache.Stats(); changed {
		metricStmtCacheHitRate().Set(hit * 1000 / (hit + miss))
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     sequence
			address []byte
			name    string
			actor   []byte
			target  []byte
			tokenID []byte
			rarity  tier.Rarity
			amount  []byte
		)
		if err := rows.Scan(&seq, &address, &name, &actor, &target, &tokenID, &rarity, &amount); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			BlockNumber: seq.BlockNumber(),
			Index:       seq.Index(),
			Address:     tier.BytesToAddress(address),
			Name:        name,
			Actor:       tier.BytesToAddress(actor),
			Target:      tier.BytesToAddress(target),
			TokenID:     bigValue(tokenID),
			Rarity:      rarity,
			Amount:      bigValue(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func addressValue(addr tier.Address) []byte {
	if addr.IsZero() {
		return nil
	}
	return addr.Bytes()
}

// uintValue stores an unsigned integer as 32 bytes, so equality holds for every value including zero.
func uintValue(v *big.Int) []byte {
	if v == nil {
		return nil
	}
	return common.LeftPadBytes(v.Bytes(), 32)
}

func bigValue(b []byte) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).SetBytes(b)
}
