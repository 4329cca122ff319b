// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomValues(t *testing.T) {
	assert.NotEqual(t, RandomHash(), RandomHash())
	assert.NotEqual(t, RandAddress(), RandAddress())
	assert.LessOrEqual(t, RandTokenID().BitLen(), 256)
	for range 20 {
		assert.True(t, RandRarity().Valid())
		n := RandIntN(5)
		assert.True(t, n >= 0 && n < 5)
	}
}
