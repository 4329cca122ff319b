// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"sync"

	"github.com/tierpool/tierpool/cache"
)

// maxCachedStmts bounds the number of distinct query shapes kept prepared.
// Filters build their query from the criteria set, so shapes are open ended.
const maxCachedStmts = 64

// stmtCache keeps prepared statements by query string.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
	stats cache.Stats
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

// Prepare returns the statement for query. When the cache is full the
// statement is not retained and release closes it.
func (sc *stmtCache) Prepare(query string) (stmt *sql.Stmt, release func(), err error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, ok := sc.stmts[query]; ok {
		sc.stats.Hit()
		return stmt, func() {}, nil
	}
	sc.stats.Miss()

	if stmt, err = sc.db.Prepare(query); err != nil {
		return nil, nil, err
	}
	if len(sc.stmts) >= maxCachedStmts {
		return stmt, func() { _ = stmt.Close() }, nil
	}
	sc.stmts[query] = stmt
	return stmt, func() {}, nil
}

// Stats reports hits and misses, and whether the hit rate moved since the last call.
func (sc *stmtCache) Stats() (bool, int64, int64) {
	return sc.stats.Stats()
}

func (sc *stmtCache) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.stmts)
}

func (sc *stmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for query, stmt := range sc.stmts {
		_ = stmt.Close()
		delete(sc.stmts, query)
	}
}
