// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStmtCache(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	sc := db.stmtCache
	for i := range maxCachedStmts + 2 {
		stmt, release, err := sc.Prepare(fmt.Sprintf("SELECT %d", i))
		require.NoError(t, err)
		var n int
		require.NoError(t, stmt.QueryRow().Scan(&n))
		assert.Equal(t, i, n)
		release()
	}
	assert.Equal(t, maxCachedStmts, sc.Len())

	// cached statements are reused
	_, release, err := sc.Prepare("SELECT 0")
	require.NoError(t, err)
	release()
	_, hit, miss := sc.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(maxCachedStmts+2), miss)

	sc.Clear()
	assert.Zero(t, sc.Len())

	_, _, err = sc.Prepare("SELECT FROM")
	assert.Error(t, err)
}

func TestFilterReusesStatements(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	filter := &EventFilter{Order: DESC, Options: &Options{Limit: 10}}
	for range 3 {
		_, err := db.FilterEvents(context.Background(), filter)
		require.NoError(t, err)
	}
	_, hit, _ := db.stmtCache.Stats()
	assert.Equal(t, int64(2), hit)
}
