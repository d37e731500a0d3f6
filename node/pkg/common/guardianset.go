// Package common holds types shared across the guardian node that are not
// owned by any single subsystem: the guardian-set roster, message
// publication records, and process readiness bookkeeping.
package common

import (
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// MaxGuardianCount bounds the size of a guardian set. The codec supports up
// to 255 entries, but no deployed set has ever exceeded this.
const MaxGuardianCount = 19

// Quorum returns the minimum number of distinct valid signatures required
// for a set of the given size: floor(2n/3) + 1.
func Quorum(numGuardians int) int {
	return (numGuardians*2)/3 + 1
}

// GuardianSet is a versioned committee roster.
type GuardianSet struct {
	Index          uint32
	Keys           []ethcommon.Address
	CreationTime   time.Time
	ExpirationTime time.Time
}

// KeyIndex returns the position of addr in the set, or -1 if absent.
func (g *GuardianSet) KeyIndex(addr ethcommon.Address) int {
	return slices.IndexFunc(g.Keys, func(k ethcommon.Address) bool { return k == addr })
}

// Quorum is the number of distinct valid signatures this set requires.
func (g *GuardianSet) Quorum() int {
	return Quorum(len(g.Keys))
}

// AcceptableForVerification reports whether a VAA carrying this set's index
// may still be verified against it at time now: either the set is current
// (ExpirationTime is zero) or now is still within its grace window.
func (g *GuardianSet) AcceptableForVerification(now time.Time) bool {
	if g.ExpirationTime.IsZero() {
		return true
	}
	return now.Before(g.ExpirationTime)
}
