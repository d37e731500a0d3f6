package vaa

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTimestamp = time.Unix(1699276800, 0).UTC()

func testEmitterAddress() Address {
	var a Address
	for i := range a {
		a[i] = 0x74
	}
	return a
}

func testVAA(t *testing.T) *VAA {
	t.Helper()
	return &VAA{
		Version:          SupportedVAAVersion,
		GuardianSetIndex: 0,
		Timestamp:        testTimestamp,
		Nonce:            0,
		EmitterChain:     1,
		EmitterAddress:   testEmitterAddress(),
		Sequence:         42,
		ConsistencyLevel: 200,
		Payload:          []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0xe8},
	}
}

// TestBodyBytesLayout pins the exact wire layout of the body fields described in §4.2
// and §8/S1 of the specification: timestamp || nonce || emitter_chain ||
// emitter_address || sequence || consistency_level || payload, all big-endian.
func TestBodyBytesLayout(t *testing.T) {
	v := testVAA(t)
	expected := "6548e800" + "00000000" + "0001" + hex.EncodeToString(v.EmitterAddress[:]) + "000000000000002a" + "c8" + "0100000000000003e8"
	assert.Equal(t, expected, hex.EncodeToString(v.bodyBytes()))
}

// TestHashIdentity covers invariant 1: two observations with identical body fields
// produce the same hash, and a VAA assembled from one of them has the same
// MessageHash as that Observation's Hash.
func TestHashIdentity(t *testing.T) {
	v := testVAA(t)
	o := &Observation{
		BlockTimestamp:   v.Timestamp,
		Nonce:            v.Nonce,
		EmitterChain:     v.EmitterChain,
		EmitterAddress:   v.EmitterAddress,
		Sequence:         v.Sequence,
		ConsistencyLevel: v.ConsistencyLevel,
		Payload:          v.Payload,
		TxHash:           []byte{1, 2, 3},
		BlockNumber:      9999,
	}

	assert.Equal(t, v.MessageHash(), o.Hash())

	o2 := *o
	o2.TxHash = []byte{9, 9, 9}
	o2.BlockNumber = 1
	assert.Equal(t, o.Hash(), o2.Hash(), "tx_hash/block_number must not affect identity hash")
}

// TestVAARoundTrip covers invariant 2: deserialize(serialize(v)) == v.
func TestVAARoundTrip(t *testing.T) {
	key1, _ := ethcrypto.GenerateKey()
	key2, _ := ethcrypto.GenerateKey()

	v := testVAA(t)
	require.NoError(t, v.AddSignature(key2, 5))
	require.NoError(t, v.AddSignature(key1, 1))

	raw, err := v.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)

	assert.Equal(t, v.Version, got.Version)
	assert.Equal(t, v.GuardianSetIndex, got.GuardianSetIndex)
	assert.Equal(t, v.Timestamp.Unix(), got.Timestamp.Unix())
	assert.Equal(t, v.Nonce, got.Nonce)
	assert.Equal(t, v.EmitterChain, got.EmitterChain)
	assert.Equal(t, v.EmitterAddress, got.EmitterAddress)
	assert.Equal(t, v.Sequence, got.Sequence)
	assert.Equal(t, v.ConsistencyLevel, got.ConsistencyLevel)
	assert.Equal(t, v.Payload, got.Payload)
	require.Len(t, got.Signatures, 2)
	assert.Equal(t, uint8(1), got.Signatures[0].GuardianIndex)
	assert.Equal(t, uint8(5), got.Signatures[1].GuardianIndex)
}

func TestUnmarshalRejectsWrongVersion(t *testing.T) {
	v := testVAA(t)
	raw, err := v.Marshal()
	require.NoError(t, err)
	raw[0] = 2

	_, err = Unmarshal(raw)
	require.ErrorIs(t, err, ErrInvalidVAA)
}

func TestUnmarshalRejectsTruncatedBuffer(t *testing.T) {
	v := testVAA(t)
	require.NoError(t, v.AddSignature(mustKey(t), 0))
	raw, err := v.Marshal()
	require.NoError(t, err)

	// The payload runs to the end of the buffer, so cut into the fixed body
	// header itself: 5 bytes short of the 51-byte minimum.
	_, err = Unmarshal(raw[:len(raw)-len(v.Payload)-5])
	require.ErrorIs(t, err, ErrInvalidVAA)
}

func TestUnmarshalRejectsOverflowingSignatureCount(t *testing.T) {
	v := testVAA(t)
	raw, err := v.Marshal()
	require.NoError(t, err)
	// claim 10 signatures while carrying none
	raw[5] = 10

	_, err = Unmarshal(raw)
	require.ErrorIs(t, err, ErrInvalidVAA)
}

func TestUnmarshalRejectsShortBody(t *testing.T) {
	// version + guardian_set_index + zero signatures + a body far shorter than 51 bytes.
	raw := []byte{1, 0, 0, 0, 0, 0, 1, 2, 3}
	_, err := Unmarshal(raw)
	require.ErrorIs(t, err, ErrInvalidVAA)
}

// TestAddSignatureKeepsAscendingOrder covers invariant 5: signatures are strictly
// increasing by guardian_index regardless of insertion order, and re-adding an index
// overwrites rather than duplicating it.
func TestAddSignatureKeepsAscendingOrder(t *testing.T) {
	v := testVAA(t)
	k0, k1, k2 := mustKey(t), mustKey(t), mustKey(t)

	require.NoError(t, v.AddSignature(k2, 9))
	require.NoError(t, v.AddSignature(k0, 0))
	require.NoError(t, v.AddSignature(k1, 4))

	require.Len(t, v.Signatures, 3)
	assert.Equal(t, uint8(0), v.Signatures[0].GuardianIndex)
	assert.Equal(t, uint8(4), v.Signatures[1].GuardianIndex)
	assert.Equal(t, uint8(9), v.Signatures[2].GuardianIndex)

	// re-signing index 4 must replace, not duplicate.
	require.NoError(t, v.AddSignature(k1, 4))
	assert.Len(t, v.Signatures, 3)
}

// TestVerifySignaturesDuality covers invariant 6: recover(sign(key, digest)) derives
// the address of key.
func TestVerifySignaturesDuality(t *testing.T) {
	key := mustKey(t)
	addr := ethcrypto.PubkeyToAddress(key.PublicKey)

	v := testVAA(t)
	require.NoError(t, v.AddSignature(key, 0))

	err := v.VerifySignatures([]ethcommon.Address{addr})
	require.NoError(t, err)
}

func TestVerifySignaturesRejectsDuplicateIndex(t *testing.T) {
	key0 := mustKey(t)
	key1 := mustKey(t)
	addr0 := ethcrypto.PubkeyToAddress(key0.PublicKey)
	addr1 := ethcrypto.PubkeyToAddress(key1.PublicKey)

	v := testVAA(t)
	sig, err := Sign(key0, v.SigningDigest())
	require.NoError(t, err)
	sig.GuardianIndex = 0
	v.Signatures = append(v.Signatures, sig)

	sig2, err := Sign(key1, v.SigningDigest())
	require.NoError(t, err)
	sig2.GuardianIndex = 0 // duplicate on the wire, bypassing AddSignature's dedup
	v.Signatures = append(v.Signatures, sig2)

	err = v.VerifySignatures([]ethcommon.Address{addr0, addr1})
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignaturesRejectsMismatchedKey(t *testing.T) {
	signer := mustKey(t)
	other := mustKey(t)
	otherAddr := ethcrypto.PubkeyToAddress(other.PublicKey)

	v := testVAA(t)
	require.NoError(t, v.AddSignature(signer, 0))

	err := v.VerifySignatures([]ethcommon.Address{otherAddr})
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignaturesRejectsOutOfRangeIndex(t *testing.T) {
	key := mustKey(t)
	addr := ethcrypto.PubkeyToAddress(key.PublicKey)

	v := testVAA(t)
	require.NoError(t, v.AddSignature(key, 5))

	err := v.VerifySignatures([]ethcommon.Address{addr})
	require.ErrorIs(t, err, ErrInvalidGuardianSet)
}

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	return key
}
