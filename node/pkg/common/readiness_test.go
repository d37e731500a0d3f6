package common

import (
	"testing"

	"github.com/vaanet/guardian-core/sdk/vaa"

	"github.com/stretchr/testify/assert"
)

func TestMustRegisterReadinessSyncing(t *testing.T) {
	// An invalid chainID should panic.
	assert.Panics(t, func() {
		MustRegisterReadinessSyncing(vaa.ChainIDUnset)
	})
}

// TestSetReadyAndAllReady covers the registry the panic guard above is gating
// access to: a freshly-registered component blocks AllReady until SetReady is
// called for it, and adding a second unready component re-blocks AllReady
// even after the first has gone ready.
func TestSetReadyAndAllReady(t *testing.T) {
	// readyComponents is process-global state shared by every caller of this
	// package; reset it so this test is independent of what ran before it.
	readyMu.Lock()
	readyComponents = map[string]bool{}
	readyMu.Unlock()

	assert.True(t, AllReady(), "no registered components means nothing is outstanding")

	MustRegisterReadinessSyncing(vaa.ChainIDEthereum)
	assert.False(t, AllReady(), "a registered-but-not-ready component must block AllReady")

	SetReady(vaa.ChainIDEthereum)
	assert.True(t, AllReady())

	MustRegisterReadinessSyncing(vaa.ChainIDSolana)
	assert.False(t, AllReady(), "a second unready component re-blocks AllReady even though the first is ready")

	SetReady(vaa.ChainIDSolana)
	assert.True(t, AllReady())
}
