// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry provides secp256k1 signing and signer recovery for Ethereum style signatures.
package cry

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/tierpool/tierpool/tier"
)

// SignatureLength is the length of [R || S || V] signatures.
const SignatureLength = crypto.SignatureLength

// personalPrefix is prepended to the data before hashing by personal message signers.
const personalPrefix = "\x19Ethereum Signed Message:\n"

var errInvalidSignature = errors.New("invalid signature")

// PersonalHash returns keccak256(prefix || len(data) || data), the hash signed by
// wallets on a personal message request.
func PersonalHash(data []byte) tier.Bytes32 {
	return tier.Keccak256([]byte(personalPrefix+strconv.Itoa(len(data))), data)
}

// GenerateKey creates a random secp256k1 private key.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return crypto.GenerateKey()
}

// HexToKey parses a hex encoded private key, with or without 0x prefix.
func HexToKey(s string) (*ecdsa.PrivateKey, error) {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	return crypto.HexToECDSA(s)
}

// PubkeyToAddress derives the account address of a public key.
func PubkeyToAddress(pub ecdsa.PublicKey) tier.Address {
	return tier.Address(crypto.PubkeyToAddress(pub))
}

// Sign signs the 32 bytes hash, the signature is in the [R || S || V] format where V is 0 or 1.
func Sign(hash []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(hash, key)
}

// SignPersonal signs data as a personal message, the signature V is 27 or 28.
func SignPersonal(data []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	hash := PersonalHash(data)
	sig, err := Sign(hash[:], key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// Recover returns the address of the key that produced sig over hash.
// V is accepted either as 0/1 or as 27/28.
func Recover(hash, sig []byte) (tier.Address, error) {
	if len(hash) != 32 {
		return tier.Address{}, fmt.Errorf("hash is required to be exactly 32 bytes (%d)", len(hash))
	}
	if len(sig) != SignatureLength {
		return tier.Address{}, errors.WithMessage(errInvalidSignature, "wrong length")
	}
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return tier.Address{}, errors.WithMessage(errInvalidSignature, "recovery id out of range")
	}

	// the compact format is [V || R || S], V being 27 + recovery id for uncompressed keys.
	var compact [SignatureLength]byte
	compact[0] = 27 + v
	copy(compact[1:], sig[:64])

	pub, _, err := dcrecdsa.RecoverCompact(compact[:], hash)
	if err != nil {
		return tier.Address{}, errors.Wrap(err, "recover")
	}
	return pubkeyBytesToAddress(pub), nil
}

func pubkeyBytesToAddress(pub *secp256k1.PublicKey) tier.Address {
	raw := pub.SerializeUncompressed()
	return tier.BytesToAddress(tier.Keccak256(raw[1:]).Bytes()[12:])
}
