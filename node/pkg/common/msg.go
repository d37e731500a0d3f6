package common

import "github.com/vaanet/guardian-core/sdk/vaa"

// MessagePublication is a watcher-observed emission event, ready to be fed
// into the aggregator. It is a thin alias over vaa.Observation: the watcher
// is an external collaborator (spec Non-goal), so this type exists only to
// give call sites in this node package a name distinct from the wire-level
// Observation type.
type MessagePublication = vaa.Observation

// ChainType tags which family of chain a watcher is configured for. The
// watcher implementation itself stays external; this tag only lets
// address-normalization helpers pick the right native-address codec.
type ChainType int

const (
	ChainTypeUnknown ChainType = iota
	ChainTypeEVM
	ChainTypeSVM
)

// WatcherCapabilities is the minimal capability set a chain-specific watcher
// exposes to the rest of the node, per the static-vs-dynamic polymorphism
// design note: a tagged ChainType plus an address-normalization function,
// with no chain-specific logic leaking past this boundary.
type WatcherCapabilities struct {
	Type             ChainType
	AddressTo32Bytes func(native []byte) (vaa.Address, error)
}
