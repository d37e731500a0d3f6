package vaa

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// CoreModule identifies the Core module in a governance payload's 1-byte module field,
// per §6's byte-exact layout.
const CoreModule byte = 0x01

// GovernanceAction identifies what a governance VAA's payload instructs the receiving
// chain to do. Token-bridge and relayer governance actions are out of scope for this
// core - only the three Core-module actions below are modeled.
type GovernanceAction uint8

const (
	ActionContractUpgrade   GovernanceAction = 1
	ActionGuardianSetUpdate GovernanceAction = 2
	ActionSetPaused         GovernanceAction = 3
)

// governanceHeaderLen is module(1) + action(1) + chain(2) + new_index(4), the fixed
// header every Core-module governance payload shares per §6.
const governanceHeaderLen = 1 + 1 + 2 + 4

type (
	// BodyContractUpgrade is a governance message requesting a contract upgrade of the
	// Core module on the target chain.
	BodyContractUpgrade struct {
		ChainID     ChainID
		NewContract Address
	}

	// BodyGuardianSetUpdate is a governance message installing a new guardian set.
	BodyGuardianSetUpdate struct {
		Keys     []ethcommon.Address
		NewIndex uint32
	}

	// BodySetPaused is a governance message toggling the bridge's paused flag.
	BodySetPaused struct {
		Paused bool
	}
)

// Serialize encodes module(1) || action(1) || chain(2) || new_contract(32), mirroring
// BodyGuardianSetUpdate's header for the other Core-module governance action.
func (b BodyContractUpgrade) Serialize() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(CoreModule)
	buf.WriteByte(byte(ActionContractUpgrade))
	_ = binary.Write(buf, binary.BigEndian, uint16(b.ChainID))
	buf.Write(b.NewContract[:])
	return buf.Bytes()
}

// Serialize encodes the governance payload byte-exactly per §6: module(1) ||
// action(1) || chain(2, always 0 - universal) || new_index(4) || guardians(20*K).
// There is no explicit guardian-count field - K is always inferred from payload
// length, on both the write and read side.
func (b BodyGuardianSetUpdate) Serialize() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(CoreModule)
	buf.WriteByte(byte(ActionGuardianSetUpdate))
	_ = binary.Write(buf, binary.BigEndian, uint16(0))
	_ = binary.Write(buf, binary.BigEndian, b.NewIndex)
	for _, k := range b.Keys {
		buf.Write(k[:])
	}
	return buf.Bytes()
}

// ParseBodyGuardianSetUpdate parses a guardian-set-update governance payload per §6's
// byte-exact layout: module(1) || action(1) || chain(2) || new_index(4) ||
// guardians(20*K), with K = (payload_len - 8) / 20 - there is no guardian-count field
// on the wire, so K is always derived from the payload's length.
func ParseBodyGuardianSetUpdate(payload []byte) (*BodyGuardianSetUpdate, error) {
	if len(payload) < governanceHeaderLen {
		return nil, fmt.Errorf("%w: governance payload too short", ErrInvalidVAA)
	}
	if GovernanceAction(payload[1]) != ActionGuardianSetUpdate {
		return nil, fmt.Errorf("%w: not a guardian set update action", ErrInvalidVAA)
	}

	newIndex := binary.BigEndian.Uint32(payload[4:governanceHeaderLen])

	rest := payload[governanceHeaderLen:]
	if len(rest)%20 != 0 {
		return nil, fmt.Errorf("%w: guardian key section is not a multiple of 20 bytes", ErrInvalidVAA)
	}
	count := len(rest) / 20

	keys := make([]ethcommon.Address, count)
	for i := 0; i < count; i++ {
		copy(keys[i][:], rest[i*20:(i+1)*20])
	}

	return &BodyGuardianSetUpdate{Keys: keys, NewIndex: newIndex}, nil
}

// pausedPayloadLen is module(1) + action(1) + chain(2) + paused(1), the fixed
// width of a set-paused governance payload - there is no variable-length
// section, unlike the guardian-set-update payload.
const pausedPayloadLen = 1 + 1 + 2 + 1

// Serialize encodes module(1) || action(1) || chain(2, always 0 - universal) ||
// paused(1, 0x00 or 0x01).
func (b BodySetPaused) Serialize() []byte {
	buf := &bytes.Buffer{}
	buf.WriteByte(CoreModule)
	buf.WriteByte(byte(ActionSetPaused))
	_ = binary.Write(buf, binary.BigEndian, uint16(0))
	if b.Paused {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// ParseBodySetPaused parses a set-paused governance payload per the layout
// BodySetPaused.Serialize writes.
func ParseBodySetPaused(payload []byte) (*BodySetPaused, error) {
	if len(payload) != pausedPayloadLen {
		return nil, fmt.Errorf("%w: set-paused payload must be %d bytes, got %d", ErrInvalidVAA, pausedPayloadLen, len(payload))
	}
	if GovernanceAction(payload[1]) != ActionSetPaused {
		return nil, fmt.Errorf("%w: not a set-paused action", ErrInvalidVAA)
	}
	return &BodySetPaused{Paused: payload[4] != 0}, nil
}

// CreateGovernanceVAA builds an unsigned VAA carrying a governance payload. Callers
// append guardian signatures afterwards via VAA.AddSignature.
func CreateGovernanceVAA(timestamp time.Time, nonce uint32, sequence uint64, guardianSetIndex uint32, payload []byte) *VAA {
	return &VAA{
		Version:          SupportedVAAVersion,
		GuardianSetIndex: guardianSetIndex,
		Signatures:       nil,
		Timestamp:        timestamp,
		Nonce:            nonce,
		EmitterChain:     GovernanceChain,
		EmitterAddress:   GovernanceEmitter,
		Sequence:         sequence,
		ConsistencyLevel: 32,
		Payload:          payload,
	}
}

// GovernanceChain and GovernanceEmitter are the canonical (emitter_chain,
// emitter_address) pair governance VAAs are published under - chain 1 with an emitter
// address that left-pads the ASCII string "Core". This is unrelated to the 1-byte
// CoreModule value carried inside the payload.
var (
	GovernanceChain   = ChainIDEthereum
	GovernanceEmitter = Address{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x43, 0x6f, 0x72, 0x65,
	}
)
