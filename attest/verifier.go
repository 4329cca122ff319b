// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package attest

import (
	"math/big"

	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/log"
	"github.com/tierpool/tierpool/tier"
)

var logger = log.WithContext("pkg", "attest")

const recovererCacheSize = 4096

// Verifier checks attestations against a trusted signer.
// It keeps no state besides a cache of recovered signers.
type Verifier struct {
	recoverer *cry.Recoverer
}

// NewVerifier creates a verifier.
func NewVerifier() *Verifier {
	r, err := cry.NewRecoverer(recovererCacheSize)
	if err != nil {
		panic(err)
	}
	return &Verifier{r}
}

// Verify reports whether sig is the trusted signer's attestation of (tokenID, rarity).
// A malformed signature, an unknown rarity or an out of range id are all rejections.
func (v *Verifier) Verify(tokenID *big.Int, rarity tier.Rarity, sig []byte, trusted tier.Address) bool {
	if !rarity.Valid() {
		return false
	}
	hash, err := SigningHash(tokenID, rarity)
	if err != nil {
		return false
	}
	signer, err := v.recoverer.Recover(hash[:], sig)
	if err != nil {
		logger.Trace("attestation rejected", "tokenId", tokenID, "err", err)
		return false
	}
	return signer == trusted
}

// VerifyAttestation is Verify for an Attestation value.
func (v *Verifier) VerifyAttestation(a *Attestation, trusted tier.Address) bool {
	if a == nil || a.TokenID == nil {
		return false
	}
	return v.Verify((*big.Int)(a.TokenID), a.Rarity, a.Signature, trusted)
}
