// Package processor implements the per-message signature aggregator: the
// state machine that collects guardian signatures for a message hash,
// detects quorum, and assembles the resulting VAA exactly once.
package processor

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

var (
	vaasEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_core_vaas_emitted_total",
		Help: "Total number of VAAs assembled by the aggregator.",
	})
	signaturesReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardian_core_signatures_received_total",
		Help: "Total number of signatures handed to the aggregator, including re-deliveries.",
	})
)

// Status is the aggregator's externally observable state for one message.
type Status int

const (
	StatusPending Status = iota
	StatusAggregating
	StatusReady
	StatusConsumed
)

// aggregationState is the per-message-hash bookkeeping the aggregator keeps:
// the originating observation (once a local watcher has supplied it), the
// signatures collected so far keyed by guardian index, and the VAA once
// assembled.
type aggregationState struct {
	mu          sync.Mutex
	observation *vaa.Observation
	sigs        map[uint8]*vaa.Signature
	vaa         *vaa.VAA
	emitted     bool
}

// Aggregator collects signatures per message hash and emits a VAA exactly
// once quorum is reached, per the current guardian set.
type Aggregator struct {
	logger *zap.Logger

	mu     sync.Mutex
	states map[[32]byte]*aggregationState
	byKey  map[messageKey][32]byte

	guardianSetIndex func() uint32
	quorum           func() int
}

// messageKey is the (emitter_chain, emitter_address, sequence) primary key
// the query interface looks VAAs up by, distinct from the keccak message
// hash the aggregator and gossip layer key signature sets by.
type messageKey struct {
	chain    vaa.ChainID
	emitter  vaa.Address
	sequence uint64
}

func keyOf(o *vaa.Observation) messageKey {
	return messageKey{chain: o.EmitterChain, emitter: o.EmitterAddress, sequence: o.Sequence}
}

// New constructs an Aggregator. guardianSetIndex and quorum are called at
// VAA-assembly time so the aggregator always reflects the currently
// installed guardian set rather than one captured at construction.
func New(logger *zap.Logger, guardianSetIndex func() uint32, quorum func() int) *Aggregator {
	return &Aggregator{
		logger:           logger,
		states:           make(map[[32]byte]*aggregationState),
		byKey:            make(map[messageKey][32]byte),
		guardianSetIndex: guardianSetIndex,
		quorum:           quorum,
	}
}

func (a *Aggregator) stateFor(messageHash [32]byte) *aggregationState {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.states[messageHash]
	if !ok {
		st = &aggregationState{sigs: make(map[uint8]*vaa.Signature)}
		a.states[messageHash] = st
	}
	return st
}

// SetObservation records the locally-witnessed Observation backing
// messageHash, needed before a VAA can be assembled for it.
func (a *Aggregator) SetObservation(messageHash [32]byte, o *vaa.Observation) {
	st := a.stateFor(messageHash)
	st.mu.Lock()
	st.observation = o
	st.mu.Unlock()

	a.mu.Lock()
	a.byKey[keyOf(o)] = messageHash
	a.mu.Unlock()
}

// Resolve maps a (chain, emitter, sequence) primary key to the message hash
// the aggregator and gossip layer actually key signature state by. It
// returns false until a local Observation for that key has been recorded
// via SetObservation.
func (a *Aggregator) Resolve(chain vaa.ChainID, emitter vaa.Address, sequence uint64) ([32]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	hash, ok := a.byKey[messageKey{chain: chain, emitter: emitter, sequence: sequence}]
	return hash, ok
}

// AddSignature implements the §4.4 contract: store sig under messageHash
// (last-write-wins per guardian index), and if this call crosses the
// message from below quorum to at-or-above quorum and a local Observation
// is available, assemble and return the VAA - exactly once per message
// hash. Returns (vaa, true) only on the call that performs that transition.
func (a *Aggregator) AddSignature(messageHash [32]byte, sig *vaa.Signature) (*vaa.VAA, bool) {
	signaturesReceivedTotal.Inc()

	st := a.stateFor(messageHash)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.sigs[sig.GuardianIndex] = sig

	if st.emitted {
		// Signatures arriving after emission are kept: the stored VAA is
		// replaced by a copy carrying every signature collected so far, in
		// ascending index order, leaving the already-returned VAA untouched.
		updated := *st.vaa
		updated.Signatures = nil
		later := make([]uint8, 0, len(st.sigs))
		for idx := range st.sigs {
			later = append(later, idx)
		}
		sort.Slice(later, func(i, j int) bool { return later[i] < later[j] })
		for _, idx := range later {
			updated.Signatures = append(updated.Signatures, st.sigs[idx])
		}
		st.vaa = &updated
		return nil, false
	}

	required := a.quorum()
	if len(st.sigs) < required {
		return nil, false
	}

	if st.observation == nil {
		return nil, false
	}

	assembled := &vaa.VAA{
		Version:          vaa.SupportedVAAVersion,
		GuardianSetIndex: a.guardianSetIndex(),
		Timestamp:        st.observation.BlockTimestamp,
		Nonce:            st.observation.Nonce,
		EmitterChain:     st.observation.EmitterChain,
		EmitterAddress:   st.observation.EmitterAddress,
		Sequence:         st.observation.Sequence,
		ConsistencyLevel: st.observation.ConsistencyLevel,
		Payload:          st.observation.Payload,
	}

	indices := make([]uint8, 0, len(st.sigs))
	for idx := range st.sigs {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, idx := range indices {
		assembled.Signatures = append(assembled.Signatures, st.sigs[idx])
	}

	st.vaa = assembled
	st.emitted = true

	vaasEmittedTotal.Inc()
	if a.logger != nil {
		a.logger.Info("assembled VAA", zap.String("message_id", assembled.MessageID()), zap.Int("signatures", len(assembled.Signatures)))
	}

	return assembled, true
}

// Status reports the aggregator's current view of a message hash.
func (a *Aggregator) Status(messageHash [32]byte) (Status, int, int) {
	a.mu.Lock()
	st, ok := a.states[messageHash]
	a.mu.Unlock()
	if !ok {
		return StatusPending, 0, a.quorum()
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	required := a.quorum()
	if st.emitted {
		return StatusReady, len(st.sigs), required
	}
	if len(st.sigs) == 0 {
		return StatusPending, 0, required
	}
	return StatusAggregating, len(st.sigs), required
}

// VAA returns the assembled VAA for a message hash, if one has been emitted.
func (a *Aggregator) VAA(messageHash [32]byte) (*vaa.VAA, bool) {
	a.mu.Lock()
	st, ok := a.states[messageHash]
	a.mu.Unlock()
	if !ok {
		return nil, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.vaa == nil {
		return nil, false
	}
	return st.vaa, true
}
