package vaa

import "fmt"

// ChainID is the Wormhole assigned chain identifier used to tag the emitter and
// recipient of a message. Identifiers are opaque to the core - this package just
// knows the handful of chains exercised by tests and tooling.
type ChainID uint16

const (
	ChainIDUnset ChainID = 0

	// ChainIDEthereum and ChainIDSolana are the two identifiers called out explicitly
	// by the wire-format discussion: Ethereum is always 1; the Solana-family host has
	// used both 2 (current) and 900 (early devnet era) depending on deployment.
	ChainIDEthereum ChainID = 1
	ChainIDSolana   ChainID = 2
	ChainIDBSC      ChainID = 56

	// ChainIDSolanaDevnetLegacy is the chain ID used by early Solana devnet
	// deployments, kept around so historical VAAs still decode to a known chain.
	ChainIDSolanaDevnetLegacy ChainID = 900
)

func (c ChainID) String() string {
	switch c {
	case ChainIDUnset:
		return "unset"
	case ChainIDEthereum:
		return "ethereum"
	case ChainIDSolana:
		return "solana"
	case ChainIDBSC:
		return "bsc"
	case ChainIDSolanaDevnetLegacy:
		return "solana-devnet-legacy"
	default:
		return fmt.Sprintf("unknown chain ID: %d", uint16(c))
	}
}
