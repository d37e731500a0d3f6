package verifier

import (
	"fmt"
	"sync"
	"time"

	"github.com/vaanet/guardian-core/node/pkg/common"
	"github.com/vaanet/guardian-core/sdk/vaa"
)

// Registry is an in-process GuardianSetSource: a map of installed sets plus
// the index of whichever one currently has a zero expiration time. A single
// set holds the zero-expiration slot at any moment, per §4.3's invariant.
type Registry struct {
	mu           sync.RWMutex
	sets         map[uint32]*common.GuardianSet
	currentIndex uint32
	hasCurrent   bool
}

// NewRegistry constructs an empty registry. Callers install the genesis set
// with Install before anything can verify against it.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[uint32]*common.GuardianSet)}
}

// Lookup retrieves a set by index for verification purposes. Expired sets
// remain queryable forever; callers decide acceptability via
// GuardianSet.AcceptableForVerification.
func (r *Registry) Lookup(index uint32) (*common.GuardianSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gs, ok := r.sets[index]
	return gs, ok
}

// Current returns the set currently holding the zero-expiration slot.
func (r *Registry) Current() (*common.GuardianSet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasCurrent {
		return nil, false
	}
	return r.sets[r.currentIndex], true
}

// Install inserts next as the new current set, per §4.3: the previously
// current set's expiration is set to 7 days after next.CreationTime before next takes the
// zero-expiration slot. next.Index must be exactly current.Index+1, or, if
// no set is installed yet, any index (the genesis case).
func (r *Registry) Install(next *common.GuardianSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasCurrent {
		prev := r.sets[r.currentIndex]
		if next.Index != prev.Index+1 {
			return fmt.Errorf("%w: new index %d does not follow current index %d", vaa.ErrInvalidGuardianSet, next.Index, prev.Index)
		}
		prev.ExpirationTime = next.CreationTime.Add(7 * 24 * time.Hour)
	}

	r.sets[next.Index] = next
	r.currentIndex = next.Index
	r.hasCurrent = true
	return nil
}
