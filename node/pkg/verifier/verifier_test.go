package verifier

import (
	"crypto/ecdsa"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

const numGuardians = 19
const quorum = 13

func testSetup(t *testing.T) (*Bridge, []*ecdsa.PrivateKey, *common.GuardianSet) {
	t.Helper()
	keys := make([]*ecdsa.PrivateKey, numGuardians)
	addrs := make([]ethcommon.Address, numGuardians)
	for i := range keys {
		k, err := ethcrypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = k
		addrs[i] = ethcrypto.PubkeyToAddress(k.PublicKey)
	}

	gs := &common.GuardianSet{Index: 0, Keys: addrs, CreationTime: time.Unix(1000, 0)}

	registry := NewRegistry()
	require.NoError(t, registry.Install(gs))

	b := NewBridge(registry, NewMemoryReplayStore())
	return b, keys, gs
}

func testVAABody() *vaa.VAA {
	var addr vaa.Address
	for i := range addr {
		addr[i] = 0x74
	}
	return &vaa.VAA{
		Version:          vaa.SupportedVAAVersion,
		GuardianSetIndex: 0,
		Timestamp:        time.Unix(1699276800, 0).UTC(),
		EmitterChain:     vaa.ChainIDEthereum,
		EmitterAddress:   addr,
		Sequence:         42,
		ConsistencyLevel: 200,
		Payload:          []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03, 0xe8},
	}
}

func signAndBuffer(t *testing.T, v *vaa.VAA, keys []*ecdsa.PrivateKey, count int) *VaaBuffer {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, v.AddSignature(keys[i], uint8(i)))
	}
	raw, err := v.Marshal()
	require.NoError(t, err)

	buf := InitVaaBuffer(len(raw))
	require.NoError(t, buf.AppendChunk(0, raw))
	require.NoError(t, buf.Finalize())
	return buf
}

// TestPostVAAHappyPath covers S1/S5: quorum signatures verify and the VAA is
// accepted exactly once.
func TestPostVAAHappyPath(t *testing.T) {
	b, keys, _ := testSetup(t)
	v := testVAABody()
	buf := signAndBuffer(t, v, keys, numGuardians)

	now := time.Unix(2000, 0)
	posted, err := b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, now)
	require.NoError(t, err)
	assert.Equal(t, v.Payload, posted.Payload)

	// S5: replay of the same triple fails.
	buf2 := signAndBuffer(t, testVAABody(), keys, numGuardians)
	_, err = b.PostVAA(buf2, v.EmitterChain, v.EmitterAddress, v.Sequence, now)
	require.ErrorIs(t, err, vaa.ErrVAAAlreadyConsumed)
}

// TestPostVAAInsufficientSignatures covers the lower side of the quorum
// boundary: 12 signatures must fail (TestPostVAAAtQuorum covers 13).
func TestPostVAAInsufficientSignatures(t *testing.T) {
	b, keys, _ := testSetup(t)
	v := testVAABody()
	buf := signAndBuffer(t, v, keys, quorum-1)

	_, err := b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, time.Unix(2000, 0))
	require.ErrorIs(t, err, vaa.ErrInsufficientSignatures)
}

func TestPostVAAAtQuorum(t *testing.T) {
	b, keys, _ := testSetup(t)
	v := testVAABody()
	buf := signAndBuffer(t, v, keys, quorum)

	_, err := b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, time.Unix(2000, 0))
	require.NoError(t, err)
}

// TestPostVAAWrongTriple covers §4.5's explicit-argument-must-match-body check.
func TestPostVAAWrongTriple(t *testing.T) {
	b, keys, _ := testSetup(t)
	v := testVAABody()
	buf := signAndBuffer(t, v, keys, numGuardians)

	_, err := b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence+1, time.Unix(2000, 0))
	require.ErrorIs(t, err, vaa.ErrInvalidVAA)
}

// TestGuardianSetExpiry covers S4: a VAA referencing an expired set fails
// after the grace window lapses, but verifies fine before it.
func TestGuardianSetExpiry(t *testing.T) {
	b, keys, gs := testSetup(t)
	v := testVAABody()
	buf := signAndBuffer(t, v, keys, numGuardians)

	addrs := make([]ethcommon.Address, numGuardians)
	for i := range addrs {
		k, err := ethcrypto.GenerateKey()
		require.NoError(t, err)
		addrs[i] = ethcrypto.PubkeyToAddress(k.PublicKey)
	}
	installTime := time.Unix(3000, 0)
	next := &common.GuardianSet{Index: 1, Keys: addrs, CreationTime: installTime}
	require.NoError(t, b.GuardianSets.Install(next))

	assert.False(t, gs.ExpirationTime.IsZero())

	// before expiry: VAA-B (set 0) still verifies.
	beforeExpiry := installTime.Add(time.Hour)
	_, err := b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, beforeExpiry)
	require.NoError(t, err)

	// after expiry: a fresh VAA against set 0 fails.
	v2 := testVAABody()
	v2.Sequence = 43
	buf2 := signAndBuffer(t, v2, keys, numGuardians)
	afterExpiry := gs.ExpirationTime.Add(time.Second)
	_, err = b.PostVAA(buf2, v2.EmitterChain, v2.EmitterAddress, v2.Sequence, afterExpiry)
	require.ErrorIs(t, err, vaa.ErrGuardianSetExpired)
}

// TestChunkedUploadOverflow covers S6's boundary: chunks whose last
// offset+len equals total_size are accepted, and appending after finalize
// fails (TestChunkedUploadOffsetOverflow covers offset+len beyond total_size).
func TestChunkedUploadOverflow(t *testing.T) {
	buf := InitVaaBuffer(1007)
	require.NoError(t, buf.AppendChunk(0, make([]byte, 500)))
	require.NoError(t, buf.AppendChunk(500, make([]byte, 507)))
	require.NoError(t, buf.Finalize())

	err := buf.AppendChunk(1007, []byte{1})
	require.ErrorIs(t, err, vaa.ErrInvalidVAA)
}

func TestChunkedUploadOffsetOverflow(t *testing.T) {
	buf := InitVaaBuffer(100)
	err := buf.AppendChunk(50, make([]byte, 51))
	require.ErrorIs(t, err, vaa.ErrInvalidVAA)
}

// TestPostMessagePayloadLimit covers the 1024 vs 1025 byte boundary.
func TestPostMessagePayloadLimit(t *testing.T) {
	b, _, _ := testSetup(t)
	var emitter vaa.Address

	_, err := b.PostMessage(emitter, 0, make([]byte, 1024), 1, time.Unix(1, 0))
	require.NoError(t, err)

	_, err = b.PostMessage(emitter, 0, make([]byte, 1025), 1, time.Unix(1, 0))
	require.ErrorIs(t, err, vaa.ErrPayloadTooLarge)
}

// TestPostMessageSequenceMonotone covers per-emitter monotone sequencing.
func TestPostMessageSequenceMonotone(t *testing.T) {
	b, _, _ := testSetup(t)
	var emitter vaa.Address

	m1, err := b.PostMessage(emitter, 0, []byte("a"), 1, time.Unix(1, 0))
	require.NoError(t, err)
	m2, err := b.PostMessage(emitter, 0, []byte("b"), 1, time.Unix(2, 0))
	require.NoError(t, err)

	assert.Equal(t, uint64(0), m1.Sequence)
	assert.Equal(t, uint64(1), m2.Sequence)
}

// TestPauseBlocksEntrypoints covers the paused flag's effect on both
// post_message and post_vaa.
func TestPauseBlocksEntrypoints(t *testing.T) {
	b, keys, _ := testSetup(t)
	b.Paused = true

	var emitter vaa.Address
	_, err := b.PostMessage(emitter, 0, []byte("x"), 1, time.Unix(1, 0))
	require.ErrorIs(t, err, vaa.ErrBridgePaused)

	v := testVAABody()
	buf := signAndBuffer(t, v, keys, numGuardians)
	_, err = b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, time.Unix(2000, 0))
	require.ErrorIs(t, err, vaa.ErrBridgePaused)
}

// TestUpdateGuardianSetViaGovernance covers S4's upgrade path end to end: a
// governance VAA signed by quorum of the current set installs the next one,
// and the current set's expiration moves from zero to a future time.
func TestUpdateGuardianSetViaGovernance(t *testing.T) {
	b, keys, gs := testSetup(t)

	nextKeys := make([]ethcommon.Address, numGuardians)
	for i := range nextKeys {
		k, err := ethcrypto.GenerateKey()
		require.NoError(t, err)
		nextKeys[i] = ethcrypto.PubkeyToAddress(k.PublicKey)
	}
	body := &vaa.BodyGuardianSetUpdate{Keys: nextKeys, NewIndex: 1}

	govVAA := vaa.CreateGovernanceVAA(time.Unix(3000, 0), 0, 0, gs.Index, body.Serialize())
	for i := 0; i < quorum; i++ {
		require.NoError(t, govVAA.AddSignature(keys[i], uint8(i)))
	}

	now := time.Unix(3000, 0)
	require.NoError(t, b.UpdateGuardianSet(govVAA, now))

	assert.False(t, gs.ExpirationTime.IsZero())
	assert.Equal(t, now.Add(7*24*time.Hour), gs.ExpirationTime)

	next, ok := b.GuardianSets.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, nextKeys, next.Keys)
}

// TestUpdateGuardianSetInsufficientSignatures covers the governance path's own
// quorum requirement: fewer than 13 signatures must not install a new set.
func TestUpdateGuardianSetInsufficientSignatures(t *testing.T) {
	b, keys, gs := testSetup(t)

	body := &vaa.BodyGuardianSetUpdate{Keys: gs.Keys, NewIndex: 1}
	govVAA := vaa.CreateGovernanceVAA(time.Unix(3000, 0), 0, 0, gs.Index, body.Serialize())
	for i := 0; i < quorum-1; i++ {
		require.NoError(t, govVAA.AddSignature(keys[i], uint8(i)))
	}

	err := b.UpdateGuardianSet(govVAA, time.Unix(3000, 0))
	require.ErrorIs(t, err, vaa.ErrInsufficientSignatures)
}

// TestUpdateGuardianSetRejectsWrongPayloadAction covers the "parse, don't
// trust" contract directly: a validly-signed governance VAA whose payload
// carries a different action must not be accepted as a guardian-set update,
// regardless of what the installed guardian set would have looked like.
func TestUpdateGuardianSetRejectsWrongPayloadAction(t *testing.T) {
	b, keys, gs := testSetup(t)

	pause := vaa.BodySetPaused{Paused: true}
	govVAA := vaa.CreateGovernanceVAA(time.Unix(3000, 0), 0, 0, gs.Index, pause.Serialize())
	for i := 0; i < quorum; i++ {
		require.NoError(t, govVAA.AddSignature(keys[i], uint8(i)))
	}

	err := b.UpdateGuardianSet(govVAA, time.Unix(3000, 0))
	require.ErrorIs(t, err, vaa.ErrInvalidVAA)
	_, ok := b.GuardianSets.Lookup(1)
	assert.False(t, ok)
}

// TestSetPausedViaGovernance covers the governance-gated pause toggle.
func TestSetPausedViaGovernance(t *testing.T) {
	b, keys, gs := testSetup(t)

	body := vaa.BodySetPaused{Paused: true}
	govVAA := vaa.CreateGovernanceVAA(time.Unix(3000, 0), 0, 0, gs.Index, body.Serialize())
	for i := 0; i < quorum; i++ {
		require.NoError(t, govVAA.AddSignature(keys[i], uint8(i)))
	}

	require.NoError(t, b.SetPaused(govVAA, time.Unix(3000, 0)))
	assert.True(t, b.Paused)
}

// TestDuplicateGuardianIndexRejected covers the duplicate-index-within-one-VAA
// boundary case.
func TestDuplicateGuardianIndexRejected(t *testing.T) {
	b, keys, _ := testSetup(t)
	v := testVAABody()
	for i := 0; i < numGuardians; i++ {
		require.NoError(t, v.AddSignature(keys[i], uint8(i)))
	}
	// force a duplicate index by appending a second signature at index 0,
	// bypassing AddSignature's own dedup.
	dupSig, err := vaa.Sign(keys[1], v.SigningDigest())
	require.NoError(t, err)
	dupSig.GuardianIndex = 0
	v.Signatures = append(v.Signatures, dupSig)

	raw, err := v.Marshal()
	require.NoError(t, err)
	buf := InitVaaBuffer(len(raw))
	require.NoError(t, buf.AppendChunk(0, raw))
	require.NoError(t, buf.Finalize())

	_, err = b.PostVAA(buf, v.EmitterChain, v.EmitterAddress, v.Sequence, time.Unix(2000, 0))
	require.ErrorIs(t, err, vaa.ErrInvalidSignature)
}
