// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUGetOrLoad(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	loads := 0
	loader := func(key string) (int, error) {
		loads++
		return len(key), nil
	}

	v, err := c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("x", func(string) (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")
	_, ok := c.Get("x")
	assert.False(t, ok)
}

func TestLRUEviction(t *testing.T) {
	c, err := NewLRU[int, int](2)
	require.NoError(t, err)
	c.Add(1, 1)
	c.Add(2, 2)
	c.Add(3, 3)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Remove(2)
	_, ok = c.Get(2)
	assert.False(t, ok)

	c.Purge()
	assert.Zero(t, c.Len())
}

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := NewLRU[int, int](0)
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	var s Stats
	s.Hit()
	s.Miss()
	changed, hit, miss := s.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = s.Stats()
	assert.False(t, changed)
}
