package processor

import "github.com/vaanet/guardian-core/sdk/vaa"

// ObservationMessage is broadcast by a guardian when it first observes and
// signs a message. The transport carrying this struct is external to this
// package; the field list mirrors the wire message named in the external
// interfaces section of the specification this node implements.
type ObservationMessage struct {
	MessageHash      [32]byte
	EmitterChain     vaa.ChainID
	EmitterAddress   vaa.Address
	Sequence         uint64
	Timestamp        uint32
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8
	GuardianIndex    uint8
	Signature        [65]byte
}

// SignatureMessage is broadcast by a guardian in response to another
// guardian's ObservationMessage.
type SignatureMessage struct {
	MessageHash   [32]byte
	GuardianIndex uint8
	Signature     [65]byte
}

// VAAReadyMessage is broadcast once a message hash has reached quorum.
type VAAReadyMessage struct {
	MessageHash [32]byte
	VAA         []byte
}
