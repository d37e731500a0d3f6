package vaa

import "errors"

// Error kinds surfaced by the codec, the aggregator and the on-chain verifier. The
// taxonomy is shared across both sides so that a guardian and a verifying chain agree
// on why a VAA was rejected.
var (
	ErrInvalidVAA             = errors.New("invalid VAA")
	ErrInvalidGuardianSet     = errors.New("invalid guardian set")
	ErrGuardianSetExpired     = errors.New("guardian set expired")
	ErrInsufficientSignatures = errors.New("insufficient signatures")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrVAAAlreadyConsumed     = errors.New("VAA already consumed")
	ErrBridgePaused           = errors.New("bridge paused")
	ErrPayloadTooLarge        = errors.New("payload too large")
	ErrInvalidAddress         = errors.New("invalid address")
)
