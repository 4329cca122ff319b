// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	type args struct {
		blockNum uint32
		index    uint32
	}
	tests := []struct {
		name string
		args args
	}{
		{"regular", args{1, 2}},
		{"max bn", args{math.MaxUint32, 1}},
		{"max index", args{5, math.MaxInt32}},
		{"both max", args{math.MaxUint32, math.MaxInt32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newSequence(tt.args.blockNum, tt.args.index)
			assert.Equal(t, tt.args.blockNum, got.BlockNumber())
			assert.Equal(t, tt.args.index, got.Index())
		})
	}

	assert.PanicsWithValue(t, errIndexOverflow, func() { newSequence(1, math.MaxInt32+1) })
	assert.True(t, newSequence(2, 0) > newSequence(1, math.MaxInt32))
}

func TestBlockBounds(t *testing.T) {
	first, last := blockBounds(7)
	assert.Equal(t, uint32(7), first.BlockNumber())
	assert.Equal(t, uint32(0), first.Index())
	assert.Equal(t, uint32(7), last.BlockNumber())
	assert.Equal(t, uint32(maxIndex), last.Index())

	next, _ := blockBounds(8)
	assert.Equal(t, last+1, next)
}
