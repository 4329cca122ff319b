// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package attest encodes and verifies rarity attestations: a trusted signer's
// endorsement binding a token id to a rarity tier.
package attest

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/cry"
	"github.com/tierpool/tierpool/tier"
)

// MessageLength is the length of the canonical attestation message.
const MessageLength = 64

var errTokenIDRange = errors.New("token id out of uint256 range")

// Attestation is a signed (token id, rarity) claim.
type Attestation struct {
	TokenID   *math.HexOrDecimal256 `json:"tokenId"`
	Rarity    tier.Rarity           `json:"rarity"`
	Signature hexutil.Bytes         `json:"signature"`
}

// Message returns the canonical encoding: the token id and the rarity ordinal,
// each as a 32 bytes big-endian integer.
func Message(tokenID *big.Int, rarity tier.Rarity) ([]byte, error) {
	if tokenID.Sign() < 0 || tokenID.BitLen() > 256 {
		return nil, errTokenIDRange
	}
	msg := make([]byte, MessageLength)
	tokenID.FillBytes(msg[:32])
	msg[63] = byte(rarity)
	return msg, nil
}

// Digest returns keccak256 of the canonical message.
func Digest(tokenID *big.Int, rarity tier.Rarity) (tier.Bytes32, error) {
	msg, err := Message(tokenID, rarity)
	if err != nil {
		return tier.Bytes32{}, err
	}
	return tier.Keccak256(msg), nil
}

// SigningHash returns the hash actually signed by the attester, which is the
// digest under the personal message transform.
func SigningHash(tokenID *big.Int, rarity tier.Rarity) (tier.Bytes32, error) {
	digest, err := Digest(tokenID, rarity)
	if err != nil {
		return tier.Bytes32{}, err
	}
	return cry.PersonalHash(digest[:]), nil
}

// Sign produces an attestation for (tokenID, rarity) with the attester key.
func Sign(tokenID *big.Int, rarity tier.Rarity, key *ecdsa.PrivateKey) (*Attestation, error) {
	digest, err := Digest(tokenID, rarity)
	if err != nil {
		return nil, err
	}
	sig, err := cry.SignPersonal(digest[:], key)
	if err != nil {
		return nil, errors.Wrap(err, "sign attestation")
	}
	return &Attestation{
		TokenID:   (*math.HexOrDecimal256)(new(big.Int).Set(tokenID)),
		Rarity:    rarity,
		Signature: sig,
	}, nil
}
