// Package epoch handles the week alignment rules of gauge voting: every
// vote and reward period lives on a 604800-second boundary, and a
// campaign's epochs must be proven in order without gaps.
package epoch

import (
	"errors"
	"fmt"
	"sort"
)

// Week is the epoch length in seconds. Gauge controllers round all vote
// accounting down to this boundary.
const Week uint64 = 604800

var (
	// ErrEpochNotSequential is returned when an epoch before the target
	// has not been processed yet.
	ErrEpochNotSequential = errors.New("epoch not sequential")
	// ErrEpochInFuture is returned when the target epoch lies past the
	// chain's current epoch.
	ErrEpochInFuture = errors.New("epoch in future")
)

// Canonical rounds a timestamp down to its week boundary.
func Canonical(timestamp uint64) uint64 {
	return timestamp - timestamp%Week
}

// Set tracks the processed epochs of one campaign. All members are
// canonical; inputs are rounded on the way in.
type Set struct {
	start uint64
	done  map[uint64]struct{}
}

// NewSet returns an empty set for a campaign starting at the given
// timestamp, rounded down to its epoch.
func NewSet(campaignStart uint64) *Set {
	return &Set{
		start: Canonical(campaignStart),
		done:  make(map[uint64]struct{}),
	}
}

// Start returns the campaign's first epoch.
func (s *Set) Start() uint64 {
	return s.start
}

// Add marks an epoch as processed.
func (s *Set) Add(epoch uint64) {
	s.done[Canonical(epoch)] = struct{}{}
}

// Has reports whether an epoch has been processed.
func (s *Set) Has(epoch uint64) bool {
	_, ok := s.done[Canonical(epoch)]
	return ok
}

// Len returns the number of processed epochs.
func (s *Set) Len() int {
	return len(s.done)
}

// Epochs returns the processed epochs in ascending order.
func (s *Set) Epochs() []uint64 {
	out := make([]uint64, 0, len(s.done))
	for e := range s.done {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Missing returns the unprocessed epochs in [start, through], ascending.
func (s *Set) Missing(through uint64) []uint64 {
	through = Canonical(through)
	var out []uint64
	for e := s.start; e <= through; e += Week {
		if !s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// CheckSequential verifies that the target epoch can be processed next:
// every epoch in [start, target) must already be in the processed set,
// and the target must not lie past the epoch of the current block time.
// Proving the current epoch itself is allowed.
func CheckSequential(processed *Set, target, currentBlockTime uint64) error {
	target = Canonical(target)
	if current := Canonical(currentBlockTime); target > current {
		return fmt.Errorf("%w: target %d is past current epoch %d", ErrEpochInFuture, target, current)
	}
	for e := processed.Start(); e < target; e += Week {
		if !processed.Has(e) {
			return fmt.Errorf("%w: epoch %d not processed before target %d", ErrEpochNotSequential, e, target)
		}
	}
	return nil
}
