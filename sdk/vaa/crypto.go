package vaa

import (
	"crypto/ecdsa"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 is the Keccak-256 hash used throughout the wire format. It must never be
// confused with standard SHA-3: the two disagree on padding and would silently break
// interoperability with every on-chain verifier.
func Keccak256(data ...[]byte) [32]byte {
	return ethcrypto.Keccak256Hash(data...)
}

// Sign produces a deterministic secp256k1 recoverable ECDSA signature over a 32-byte
// digest. The digest is signed as-is - no additional prefixing is applied - and the
// recovery parameter is normalized to the Ethereum convention (27 or 28).
func Sign(key *ecdsa.PrivateKey, digest [32]byte) (*Signature, error) {
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Signature{}
	copy(out.R[:], sig[0:32])
	copy(out.S[:], sig[32:64])
	out.V = sig[64] + 27
	return out, nil
}

// Recover recovers the 20-byte guardian address that produced sig over digest. It
// fails with ErrInvalidSignature when v is not 27 or 28, or when recovery itself
// fails.
func Recover(digest [32]byte, sig *Signature) (ethcommon.Address, error) {
	if sig.V != 27 && sig.V != 28 {
		return ethcommon.Address{}, fmt.Errorf("%w: invalid recovery id %d", ErrInvalidSignature, sig.V)
	}

	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V - 27

	pubkey, err := ethcrypto.Ecrecover(digest[:], raw)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	// The recovered public key is 65 bytes, uncompressed, with a leading 0x04 byte.
	// Strip it before hashing - the address is the low 20 bytes of Keccak256(pubkey).
	hash := Keccak256(pubkey[1:])
	var addr ethcommon.Address
	copy(addr[:], hash[12:])
	return addr, nil
}
