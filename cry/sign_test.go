// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tierpool/tierpool/tier"
)

func TestPersonalHashMatchesWalletHash(t *testing.T) {
	data := []byte("hello")
	assert.Equal(t, accounts.TextHash(data), PersonalHash(data).Bytes())
}

func TestSignRecover(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	addr := PubkeyToAddress(key.PublicKey)

	hash := tier.Keccak256([]byte("message"))
	sig, err := Sign(hash[:], key)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	signer, err := Recover(hash[:], sig)
	require.NoError(t, err)
	assert.Equal(t, addr, signer)

	// 27/28 form recovers to the same signer.
	sig[64] += 27
	signer, err = Recover(hash[:], sig)
	require.NoError(t, err)
	assert.Equal(t, addr, signer)
}

func TestSignPersonal(t *testing.T) {
	key, err := HexToKey("0xdce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65")
	require.NoError(t, err)
	assert.Equal(t, "0xf077b491b355e64048ce21e3a6fc4751eeea77fa", PubkeyToAddress(key.PublicKey).String())

	data := []byte("rarity")
	sig, err := SignPersonal(data, key)
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig[64])

	hash := PersonalHash(data)
	signer, err := Recover(hash[:], sig)
	require.NoError(t, err)
	assert.Equal(t, PubkeyToAddress(key.PublicKey), signer)
}

func TestRecoverRejectsMalformed(t *testing.T) {
	hash := tier.Keccak256([]byte("message"))

	_, err := Recover(hash[:], make([]byte, 10))
	assert.Error(t, err)

	sig := make([]byte, SignatureLength)
	sig[64] = 29
	_, err = Recover(hash[:], sig)
	assert.Error(t, err)

	// r = s = 0 is not a valid signature
	sig[64] = 27
	_, err = Recover(hash[:], sig)
	assert.Error(t, err)

	_, err = Recover(hash[:4], sig)
	assert.Error(t, err)
}

func TestRecoverer(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	r, err := NewRecoverer(16)
	require.NoError(t, err)

	hash := tier.Keccak256([]byte("cached"))
	sig, err := Sign(hash[:], key)
	require.NoError(t, err)

	for range 3 {
		signer, err := r.Recover(hash[:], sig)
		require.NoError(t, err)
		assert.Equal(t, PubkeyToAddress(key.PublicKey), signer)
	}
	_, hit, miss := r.Stats()
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	other, err := hex.DecodeString("00")
	require.NoError(t, err)
	_, err = r.Recover(hash[:], other)
	assert.Error(t, err)
}
