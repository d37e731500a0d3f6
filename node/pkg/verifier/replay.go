package verifier

import (
	"sync"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

type replayKey struct {
	chain    vaa.ChainID
	emitter  vaa.Address
	sequence uint64
}

// MemoryReplayStore is an in-process ReplayStore keyed by
// (emitter_chain, emitter_address, sequence).
type MemoryReplayStore struct {
	mu       sync.Mutex
	consumed map[replayKey]bool
}

// NewMemoryReplayStore constructs an empty replay store.
func NewMemoryReplayStore() *MemoryReplayStore {
	return &MemoryReplayStore{consumed: make(map[replayKey]bool)}
}

// MarkConsumed records the triple as consumed, reporting whether it was
// already marked.
func (s *MemoryReplayStore) MarkConsumed(chain vaa.ChainID, emitter vaa.Address, sequence uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := replayKey{chain: chain, emitter: emitter, sequence: sequence}
	if s.consumed[key] {
		return true, nil
	}
	s.consumed[key] = true
	return false, nil
}
