package vaa

import (
	"crypto/ecdsa"
	"fmt"
	"sort"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// SupportedVAAVersion is the only version this codec accepts or produces.
const SupportedVAAVersion = uint8(1)

// minBodyLen is the fixed-header length of a VAA body: timestamp(4) + nonce(4) +
// emitter_chain(2) + emitter_address(32) + sequence(8) + consistency_level(1).
const minBodyLen = 4 + 4 + 2 + 32 + 8 + 1

// VAA is the assembled, multi-signature attestation record. It is immutable once
// built: the body fields are the canonical message and signatures only ever get
// appended through AddSignature before the VAA is considered final.
type VAA struct {
	Version          uint8
	GuardianSetIndex uint32
	Signatures       []*Signature

	Timestamp        time.Time
	Nonce            uint32
	EmitterChain     ChainID
	EmitterAddress   Address
	Sequence         uint64
	ConsistencyLevel uint8
	Payload          []byte
}

// HexDigest returns the double-hash signing digest as a hex string, primarily for
// logging and gossip message IDs.
func (v *VAA) HexDigest() string {
	d := v.SigningDigest()
	return fmt.Sprintf("%x", d[:])
}

// MessageID returns a human-readable chain/emitter/sequence tuple identifying the
// message independent of any particular VAA encoding.
func (v *VAA) MessageID() string {
	return MessageIDString(v.EmitterChain, v.EmitterAddress, v.Sequence)
}

// bodyBytes returns the canonical body encoding: timestamp through the end of the
// payload, the slice that is both hashed for message identity and signed.
func (v *VAA) bodyBytes() []byte {
	buf := make([]byte, 0, minBodyLen+len(v.Payload))
	buf = appendUint32(buf, uint32(v.Timestamp.Unix()))
	buf = appendUint32(buf, v.Nonce)
	buf = appendUint16(buf, uint16(v.EmitterChain))
	buf = append(buf, v.EmitterAddress[:]...)
	buf = appendUint64(buf, v.Sequence)
	buf = append(buf, v.ConsistencyLevel)
	buf = append(buf, v.Payload...)
	return buf
}

// MessageHash returns keccak256(body_bytes) - the identity hash every guardian
// observing the same emission must agree on, and the preimage of the signing digest.
func (v *VAA) MessageHash() [32]byte {
	return Keccak256(v.bodyBytes())
}

// SigningDigest returns the double-hash keccak256(keccak256(body_bytes)) that every
// signature in the VAA must verify against.
func (v *VAA) SigningDigest() [32]byte {
	body := v.MessageHash()
	return Keccak256(body[:])
}

// AddSignature signs the VAA's double-hash digest with key and inserts the resulting
// signature under guardianIndex, keeping the signature set sorted by ascending
// guardian index with no duplicates (last write wins for a repeated index).
func (v *VAA) AddSignature(key *ecdsa.PrivateKey, guardianIndex uint8) error {
	sig, err := Sign(key, v.SigningDigest())
	if err != nil {
		return err
	}
	sig.GuardianIndex = guardianIndex

	for i, existing := range v.Signatures {
		if existing.GuardianIndex == guardianIndex {
			v.Signatures[i] = sig
			return nil
		}
	}
	v.Signatures = append(v.Signatures, sig)
	sort.Slice(v.Signatures, func(i, j int) bool {
		return v.Signatures[i].GuardianIndex < v.Signatures[j].GuardianIndex
	})
	return nil
}

// VerifySignatures checks that every signature in the VAA recovers to the
// corresponding entry of guardianKeys, that guardian indices are strictly increasing
// (so no index repeats), and that each index is in range. It does not know about
// quorum thresholds or guardian set expiry - those are on-chain verifier concerns.
func (v *VAA) VerifySignatures(guardianKeys []ethcommon.Address) error {
	digest := v.SigningDigest()

	var lastIndex int = -1
	for _, sig := range v.Signatures {
		idx := int(sig.GuardianIndex)
		if idx <= lastIndex {
			return fmt.Errorf("%w: signatures not strictly increasing by guardian index", ErrInvalidSignature)
		}
		lastIndex = idx

		if idx >= len(guardianKeys) {
			return fmt.Errorf("%w: guardian index %d out of range (set has %d members)", ErrInvalidGuardianSet, idx, len(guardianKeys))
		}

		recovered, err := Recover(digest, sig)
		if err != nil {
			return err
		}
		if recovered != guardianKeys[idx] {
			return fmt.Errorf("%w: signature at index %d does not match guardian key", ErrInvalidSignature, idx)
		}
	}
	return nil
}

// Marshal serializes the VAA to its canonical wire format:
//
//	version(1) || guardian_set_index(4) || sig_count(1) || sigs(66*N) || body
func (v *VAA) Marshal() ([]byte, error) {
	if v.Version != SupportedVAAVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidVAA, v.Version)
	}
	if len(v.Signatures) > 255 {
		return nil, fmt.Errorf("%w: too many signatures (%d)", ErrInvalidVAA, len(v.Signatures))
	}

	buf := make([]byte, 0, 1+4+1+len(v.Signatures)*SignatureWireLen+minBodyLen+len(v.Payload))
	buf = append(buf, v.Version)
	buf = appendUint32(buf, v.GuardianSetIndex)
	buf = append(buf, uint8(len(v.Signatures)))

	for _, sig := range v.Signatures {
		buf = append(buf, sig.GuardianIndex)
		buf = append(buf, sig.R[:]...)
		buf = append(buf, sig.S[:]...)
		buf = append(buf, sig.V)
	}

	buf = append(buf, v.bodyBytes()...)
	return buf, nil
}

// Unmarshal parses the canonical VAA wire format produced by Marshal. It fails with
// ErrInvalidVAA on truncation, an unsupported version, a signature count that would
// overflow the buffer, or a body shorter than the fixed 51-byte header.
func Unmarshal(data []byte) (*VAA, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("%w: buffer too short for header", ErrInvalidVAA)
	}

	v := &VAA{}
	off := 0

	v.Version = data[off]
	off++
	if v.Version != SupportedVAAVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidVAA, v.Version)
	}

	v.GuardianSetIndex = readUint32(data[off:])
	off += 4

	sigCount := int(data[off])
	off++

	sigSectionLen := sigCount * SignatureWireLen
	if off+sigSectionLen > len(data) {
		return nil, fmt.Errorf("%w: signature count %d overflows buffer", ErrInvalidVAA, sigCount)
	}

	v.Signatures = make([]*Signature, 0, sigCount)
	for i := 0; i < sigCount; i++ {
		sig := &Signature{}
		sig.GuardianIndex = data[off]
		off++
		copy(sig.R[:], data[off:off+32])
		off += 32
		copy(sig.S[:], data[off:off+32])
		off += 32
		sig.V = data[off]
		off++
		v.Signatures = append(v.Signatures, sig)
	}

	body := data[off:]
	if len(body) < minBodyLen {
		return nil, fmt.Errorf("%w: body shorter than minimum %d bytes", ErrInvalidVAA, minBodyLen)
	}

	bodyOff := 0
	ts := readUint32(body[bodyOff:])
	v.Timestamp = time.Unix(int64(ts), 0).UTC()
	bodyOff += 4

	v.Nonce = readUint32(body[bodyOff:])
	bodyOff += 4

	v.EmitterChain = ChainID(readUint16(body[bodyOff:]))
	bodyOff += 2

	copy(v.EmitterAddress[:], body[bodyOff:bodyOff+32])
	bodyOff += 32

	v.Sequence = readUint64(body[bodyOff:])
	bodyOff += 8

	v.ConsistencyLevel = body[bodyOff]
	bodyOff++

	v.Payload = append([]byte(nil), body[bodyOff:]...)

	return v, nil
}

func appendUint16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint64(buf []byte, v uint64) []byte {
	return append(buf, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func readUint16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func readUint64(b []byte) uint64 {
	var out uint64
	for i := 0; i < 8; i++ {
		out = out<<8 | uint64(b[i])
	}
	return out
}
