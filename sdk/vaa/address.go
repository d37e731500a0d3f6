package vaa

import (
	"encoding/hex"
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Address is a 32-byte, left-zero-padded emitter address. Every chain's native
// address format - 20-byte EVM addresses, 32-byte SVM public keys - normalizes to
// this width.
type Address [32]byte

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// AddressFromEth left-pads a 20-byte EVM address into a 32-byte Address.
func AddressFromEth(a ethcommon.Address) Address {
	var out Address
	copy(out[12:], a[:])
	return out
}

// StringToAddress parses a hex-encoded address of either 20 or 32 bytes, left-padding
// as needed. Accepts an optional "0x" prefix.
func StringToAddress(s string) (Address, error) {
	s = trimHexPrefix(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return addressFromBytes(b)
}

// Base58ToAddress decodes a base58-encoded SVM public key (32 bytes) into an Address.
// SVM-family chains publish their native account keys in base58, so this is the entry
// point chain watchers use to normalize SVM emitter addresses.
func Base58ToAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return addressFromBytes(b)
}

func addressFromBytes(b []byte) (Address, error) {
	var out Address
	switch len(b) {
	case 20:
		copy(out[12:], b)
	case 32:
		copy(out[:], b)
	default:
		return Address{}, fmt.Errorf("%w: address must be 20 or 32 bytes, got %d", ErrInvalidAddress, len(b))
	}
	return out, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
