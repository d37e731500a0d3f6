package common

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

// EVMCapabilities is the WatcherCapabilities value shared by every EVM-family
// chain: a raw 20-byte address left-padded into the wire Address width.
var EVMCapabilities = WatcherCapabilities{
	Type: ChainTypeEVM,
	AddressTo32Bytes: func(native []byte) (vaa.Address, error) {
		if len(native) != ethcommon.AddressLength {
			return vaa.Address{}, fmt.Errorf("evm address must be %d bytes, got %d", ethcommon.AddressLength, len(native))
		}
		return vaa.AddressFromEth(ethcommon.BytesToAddress(native)), nil
	},
}

// SVMCapabilities is the WatcherCapabilities value for Solana-family chains.
// native is the base58 text of a solana.PublicKey as returned by the RPC
// client; this validates it parses as one before normalizing.
var SVMCapabilities = WatcherCapabilities{
	Type: ChainTypeSVM,
	AddressTo32Bytes: func(native []byte) (vaa.Address, error) {
		pubkey, err := solana.PublicKeyFromBase58(string(native))
		if err != nil {
			return vaa.Address{}, err
		}
		return vaa.Base58ToAddress(pubkey.String())
	},
}
