// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"github.com/tierpool/tierpool/cache"
	"github.com/tierpool/tierpool/tier"
)

// Recoverer recovers signers and remembers recent results, since the same
// attestation is often presented more than once.
type Recoverer struct {
	cache *cache.LRU[tier.Bytes32, tier.Address]
}

// NewRecoverer creates a recoverer caching up to size results.
func NewRecoverer(size int) (*Recoverer, error) {
	c, err := cache.NewLRU[tier.Bytes32, tier.Address](size)
	if err != nil {
		return nil, err
	}
	return &Recoverer{c}, nil
}

// Recover is the cached version of the package level Recover.
func (r *Recoverer) Recover(hash, sig []byte) (tier.Address, error) {
	key := tier.Blake2b(hash, sig)
	return r.cache.GetOrLoad(key, func(tier.Bytes32) (tier.Address, error) {
		return Recover(hash, sig)
	})
}

// Stats returns cache hit/miss counters.
func (r *Recoverer) Stats() (bool, int64, int64) {
	return r.cache.Stats()
}
