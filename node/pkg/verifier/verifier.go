// Package verifier implements the on-chain verifier state machine: guardian
// set resolution, full VAA signature verification, chunked-upload ingest,
// replay prevention, and outbound message publication. It is written as a
// plain sequential Go state machine - no internal locking - mirroring the
// single-writer, one-transaction-at-a-time execution model described for
// the on-chain side.
package verifier

import (
	"fmt"
	"time"

	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// PostedVAA is the durable record produced by a successful PostVAA call.
type PostedVAA struct {
	EmitterChain     vaa.ChainID
	EmitterAddress   vaa.Address
	Sequence         uint64
	Timestamp        time.Time
	ConsistencyLevel uint8
	Payload          []byte
}

// PostedMessage is the durable record produced by a successful PostMessage
// call - the outbound side watchers observe.
type PostedMessage struct {
	EmitterAddress   vaa.Address
	Sequence         uint64
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8
	SubmissionTime   time.Time
}

// GuardianSetSource resolves a guardian set by index, the same lookup
// contract §4.3 assigns to the registry.
type GuardianSetSource interface {
	Lookup(index uint32) (*common.GuardianSet, bool)
	Current() (*common.GuardianSet, bool)
	Install(next *common.GuardianSet) error
}

// ReplayStore records (emitter_chain, emitter_address, sequence) triples
// that have already been consumed by PostVAA.
type ReplayStore interface {
	MarkConsumed(chain vaa.ChainID, emitter vaa.Address, sequence uint64) (alreadyConsumed bool, err error)
}

// Bridge is the root on-chain state: the paused flag, the outbound message
// fee, and per-emitter sequence counters, plus the guardian-set and replay
// collaborators it verifies against.
type Bridge struct {
	Paused     bool
	MessageFee uint64

	GuardianSets GuardianSetSource
	Replay       ReplayStore

	sequences map[vaa.Address]uint64
}

// NewBridge constructs a Bridge over the given guardian-set and
// replay-prevention collaborators.
func NewBridge(guardianSets GuardianSetSource, replay ReplayStore) *Bridge {
	return &Bridge{
		GuardianSets: guardianSets,
		Replay:       replay,
		sequences:    make(map[vaa.Address]uint64),
	}
}

// PostMessage implements the outbound entry point: payload must not exceed
// 1024 bytes, and the returned sequence number is monotone per emitter
// starting at 0.
func (b *Bridge) PostMessage(emitter vaa.Address, nonce uint32, payload []byte, consistencyLevel uint8, now time.Time) (*PostedMessage, error) {
	if b.Paused {
		return nil, vaa.ErrBridgePaused
	}
	if len(payload) > 1024 {
		return nil, fmt.Errorf("%w: payload is %d bytes", vaa.ErrPayloadTooLarge, len(payload))
	}

	seq := b.sequences[emitter]
	b.sequences[emitter] = seq + 1

	return &PostedMessage{
		EmitterAddress:   emitter,
		Sequence:         seq,
		Nonce:            nonce,
		Payload:          payload,
		ConsistencyLevel: consistencyLevel,
		SubmissionTime:   now,
	}, nil
}

// PostVAA implements the full §4.5 verification procedure against a
// fully-populated buffer, then records the replay mark.
func (b *Bridge) PostVAA(buf *VaaBuffer, emitterChain vaa.ChainID, emitterAddress vaa.Address, sequence uint64, now time.Time) (*PostedVAA, error) {
	if b.Paused {
		return nil, vaa.ErrBridgePaused
	}
	if !buf.finalized {
		return nil, fmt.Errorf("%w: buffer not finalized", vaa.ErrInvalidVAA)
	}

	v, err := vaa.Unmarshal(buf.data)
	if err != nil {
		return nil, err
	}

	if v.EmitterChain != emitterChain || v.EmitterAddress != emitterAddress || v.Sequence != sequence {
		return nil, fmt.Errorf("%w: supplied (chain, emitter, sequence) does not match body", vaa.ErrInvalidVAA)
	}

	gs, ok := b.GuardianSets.Lookup(v.GuardianSetIndex)
	if !ok {
		return nil, fmt.Errorf("%w: unknown guardian set index %d", vaa.ErrInvalidGuardianSet, v.GuardianSetIndex)
	}
	if !gs.AcceptableForVerification(now) {
		return nil, vaa.ErrGuardianSetExpired
	}

	quorum := gs.Quorum()
	if len(v.Signatures) < quorum {
		return nil, fmt.Errorf("%w: got %d, need %d", vaa.ErrInsufficientSignatures, len(v.Signatures), quorum)
	}

	digest := v.SigningDigest()
	seen := make(map[uint8]bool, len(v.Signatures))
	valid := 0
	for _, sig := range v.Signatures {
		if int(sig.GuardianIndex) >= len(gs.Keys) {
			return nil, fmt.Errorf("%w: guardian index %d out of range", vaa.ErrInvalidGuardianSet, sig.GuardianIndex)
		}
		if seen[sig.GuardianIndex] {
			return nil, fmt.Errorf("%w: duplicate guardian index %d", vaa.ErrInvalidSignature, sig.GuardianIndex)
		}
		seen[sig.GuardianIndex] = true

		recovered, err := vaa.Recover(digest, sig)
		if err != nil {
			return nil, err
		}
		if recovered != gs.Keys[sig.GuardianIndex] {
			return nil, fmt.Errorf("%w: signature at index %d does not match guardian key", vaa.ErrInvalidSignature, sig.GuardianIndex)
		}
		valid++
	}
	if valid < quorum {
		return nil, fmt.Errorf("%w: got %d valid, need %d", vaa.ErrInsufficientSignatures, valid, quorum)
	}

	alreadyConsumed, err := b.Replay.MarkConsumed(v.EmitterChain, v.EmitterAddress, v.Sequence)
	if err != nil {
		return nil, err
	}
	if alreadyConsumed {
		return nil, vaa.ErrVAAAlreadyConsumed
	}

	return &PostedVAA{
		EmitterChain:     v.EmitterChain,
		EmitterAddress:   v.EmitterAddress,
		Sequence:         v.Sequence,
		Timestamp:        v.Timestamp,
		ConsistencyLevel: v.ConsistencyLevel,
		Payload:          v.Payload,
	}, nil
}

// SetPaused toggles the paused flag. Per the original program this action is
// itself governance-gated: govVAA must carry a Core-module action and verify
// against the current guardian set before the flag changes. The new value is
// never taken from the caller - it is parsed out of govVAA.Payload itself, so
// a caller cannot pair a validly-signed governance VAA with an arbitrary flag
// value of its own choosing.
func (b *Bridge) SetPaused(govVAA *vaa.VAA, now time.Time) error {
	if err := b.verifyGovernanceVAA(govVAA, now); err != nil {
		return err
	}
	body, err := vaa.ParseBodySetPaused(govVAA.Payload)
	if err != nil {
		return err
	}
	b.Paused = body.Paused
	return nil
}

// UpdateGuardianSet installs a new guardian set from a governance VAA,
// per §4.3: the current set's expiration is set to now+7 days and the new
// set is inserted at current.Index+1. The installed keys and index are
// parsed out of govVAA.Payload itself, never taken as a caller-supplied
// argument - verifying the VAA's signatures only proves who signed it, not
// that a separately-supplied body matches what was actually signed.
func (b *Bridge) UpdateGuardianSet(govVAA *vaa.VAA, now time.Time) error {
	if err := b.verifyGovernanceVAA(govVAA, now); err != nil {
		return err
	}
	body, err := vaa.ParseBodyGuardianSetUpdate(govVAA.Payload)
	if err != nil {
		return err
	}
	if len(body.Keys) > common.MaxGuardianCount {
		return fmt.Errorf("%w: guardian set exceeds maximum size", vaa.ErrInvalidGuardianSet)
	}

	current, ok := b.GuardianSets.Current()
	if !ok {
		return fmt.Errorf("%w: no current guardian set installed", vaa.ErrInvalidGuardianSet)
	}
	if body.NewIndex != current.Index+1 {
		return fmt.Errorf("%w: new index %d does not follow current index %d", vaa.ErrInvalidGuardianSet, body.NewIndex, current.Index)
	}

	next := &common.GuardianSet{
		Index:        body.NewIndex,
		Keys:         body.Keys,
		CreationTime: now,
	}
	return b.GuardianSets.Install(next)
}

func (b *Bridge) verifyGovernanceVAA(govVAA *vaa.VAA, now time.Time) error {
	gs, ok := b.GuardianSets.Lookup(govVAA.GuardianSetIndex)
	if !ok {
		return fmt.Errorf("%w: unknown guardian set index %d", vaa.ErrInvalidGuardianSet, govVAA.GuardianSetIndex)
	}
	if !gs.AcceptableForVerification(now) {
		return vaa.ErrGuardianSetExpired
	}
	if quorum := gs.Quorum(); len(govVAA.Signatures) < quorum {
		return fmt.Errorf("%w: got %d, need %d", vaa.ErrInsufficientSignatures, len(govVAA.Signatures), quorum)
	}
	return govVAA.VerifySignatures(gs.Keys)
}
