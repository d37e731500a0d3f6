package common

import (
	"fmt"
	"sync"

	"github.com/vaanet/guardian-core/sdk/vaa"
)

var (
	readyMu        sync.Mutex
	readyComponents = map[string]bool{}
)

// readinessKey names the readiness component for a given chain's watcher.
func readinessKey(c vaa.ChainID) string {
	return fmt.Sprintf("chainWatcherReady:%s", c)
}

// MustRegisterReadinessSyncing registers a readiness component for the given
// chain's watcher. It panics on an unset chain ID, since that indicates a
// caller wiring up a watcher before deciding which chain it serves.
func MustRegisterReadinessSyncing(c vaa.ChainID) {
	if c == vaa.ChainIDUnset {
		panic("cannot register readiness for an unset chain ID")
	}

	readyMu.Lock()
	defer readyMu.Unlock()
	readyComponents[readinessKey(c)] = false
}

// SetReady marks the given chain's watcher readiness component as ready.
func SetReady(c vaa.ChainID) {
	readyMu.Lock()
	defer readyMu.Unlock()
	readyComponents[readinessKey(c)] = true
}

// AllReady reports whether every registered readiness component is ready.
func AllReady() bool {
	readyMu.Lock()
	defer readyMu.Unlock()
	for _, ready := range readyComponents {
		if !ready {
			return false
		}
	}
	return true
}
