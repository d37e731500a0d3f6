// Package query implements the lookup-by-(chain, emitter, sequence)
// contract: Ready/Aggregating/NotFound status plus the illustrative HTTP
// surface described in the external interfaces section. Neither is part of
// the verifier's trust boundary - they are read paths over the aggregator
// and VAA store.
package query

import (
	"github.com/vaanet/guardian-core/node/pkg/processor"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// Status mirrors processor.Status with the vocabulary the query contract
// uses externally.
type Status int

const (
	StatusNotFound Status = iota
	StatusAggregating
	StatusReady
)

// Result is the outcome of a Lookup call.
type Result struct {
	Status   Status
	Current  int
	Required int
	VAA      *vaa.VAA
}

// Store is the durable read-side collaborator Lookup needs alongside the
// aggregator: a VAA getter for already-assembled VAAs that may have since
// been persisted and dropped from the aggregator's in-memory state.
type Store interface {
	GetSignedVAA(chain vaa.ChainID, emitter vaa.Address, sequence uint64) (*vaa.VAA, bool, error)
}

// Lookup resolves (chain, emitter, sequence) against the aggregator and the
// durable VAA store, in that order: an emitted-but-not-yet-persisted VAA
// still reads as Ready.
func Lookup(agg *processor.Aggregator, store Store, chain vaa.ChainID, emitter vaa.Address, sequence uint64) (Result, error) {
	if hash, ok := agg.Resolve(chain, emitter, sequence); ok {
		if v, ok := agg.VAA(hash); ok {
			return Result{Status: StatusReady, VAA: v}, nil
		}

		// Resolve having succeeded already means SetObservation was called for
		// this hash, so agg.Status reading back StatusPending here (zero
		// signatures collected yet) still reflects a known observation, not an
		// absent one - both non-Ready statuses map to the external Aggregating.
		status, current, required := agg.Status(hash)
		if status == processor.StatusAggregating || status == processor.StatusPending {
			return Result{Status: StatusAggregating, Current: current, Required: required}, nil
		}
	}

	v, found, err := store.GetSignedVAA(chain, emitter, sequence)
	if err != nil {
		return Result{}, err
	}
	if found {
		return Result{Status: StatusReady, VAA: v}, nil
	}

	return Result{Status: StatusNotFound}, nil
}
