// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "github.com/pkg/errors"

const (
	indexBits = 31
	maxIndex  = 1<<indexBits - 1
)

var errIndexOverflow = errors.New("event index overflows sequence")

// sequence is the event primary key: block number in the high bits and the
// index within the block in the low 31 bits, so that seq order is event order.
type sequence int64

func newSequence(blockNum uint32, index uint32) sequence {
	if index > maxIndex {
		panic(errIndexOverflow)
	}
	return sequence(blockNum)<<indexBits | sequence(index)
}

// blockBounds returns the first and last sequence a block can hold.
func blockBounds(blockNum uint32) (sequence, sequence) {
	return newSequence(blockNum, 0), newSequence(blockNum, maxIndex)
}

func (s sequence) BlockNumber() uint32 { return uint32(s >> indexBits) }

func (s sequence) Index() uint32 { return uint32(s & maxIndex) }
