package vaa

import "fmt"

// Signature is a secp256k1 recoverable signature over a message digest, tagged with
// the index of the guardian that produced it. On the wire within a VAA the layout is
// guardian_index(1) || r(32) || s(32) || v(1) - 66 bytes per entry.
type Signature struct {
	GuardianIndex uint8
	R             [32]byte
	S             [32]byte
	V             uint8
}

// SignatureByteLen is the encoded length of the r || s || v portion of a Signature,
// excluding the guardian index byte.
const SignatureByteLen = 65

// SignatureWireLen is the full per-signature length within a VAA, including the
// leading guardian_index byte.
const SignatureWireLen = 1 + SignatureByteLen

// Bytes65 returns the r || s || v encoding used for recovery and gossip messages.
func (s *Signature) Bytes65() [65]byte {
	var out [65]byte
	copy(out[0:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

func (s *Signature) String() string {
	b := s.Bytes65()
	return fmt.Sprintf("%d:%x", s.GuardianIndex, b)
}
