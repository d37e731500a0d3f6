package vaa

import (
	"fmt"
	"time"
)

// Observation is a single guardian's witness of one message-emission event. TxHash
// and BlockNumber are chain-local metadata used for re-observation requests; they are
// deliberately excluded from Hash so that every guardian observing the same emission
// computes the same identity hash regardless of which transaction or block they saw
// it confirm in.
type Observation struct {
	TxHash           []byte
	BlockNumber      uint64
	BlockTimestamp   time.Time
	EmitterChain     ChainID
	EmitterAddress   Address
	Sequence         uint64
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8
}

// Hash computes keccak256 over the body fields only, in wire order:
// timestamp || nonce || emitter_chain || emitter_address || sequence ||
// consistency_level || payload. Two guardians observing the same emission must
// compute identical hashes here - this is the key that the aggregator uses to
// coalesce independently-collected signatures.
func (o *Observation) Hash() [32]byte {
	buf := make([]byte, 0, minBodyLen+len(o.Payload))
	buf = appendUint32(buf, uint32(o.BlockTimestamp.Unix()))
	buf = appendUint32(buf, o.Nonce)
	buf = appendUint16(buf, uint16(o.EmitterChain))
	buf = append(buf, o.EmitterAddress[:]...)
	buf = appendUint64(buf, o.Sequence)
	buf = append(buf, o.ConsistencyLevel)
	buf = append(buf, o.Payload...)
	return Keccak256(buf)
}

// MessageID returns the same human-readable chain/emitter/sequence tuple VAA.MessageID
// uses, so logs can correlate an Observation with the VAA it eventually becomes part
// of.
func (o *Observation) MessageID() string {
	return MessageIDString(o.EmitterChain, o.EmitterAddress, o.Sequence)
}

// MessageIDString formats the (chain, emitter, sequence) primary key shared by
// Observation, VAA and the replay table.
func MessageIDString(chain ChainID, emitter Address, sequence uint64) string {
	return fmt.Sprintf("%d/%s/%d", uint16(chain), emitter, sequence)
}
