package events

import "sync/atomic"

// Guard implements the "emission guard" pattern: a global atomic
// initialized to the number of participating threads, each of
// which decrements it; the participant whose decrement brings the counter
// to exactly zero is the one that emits the guarded event (a REROOT_END
// payload carries this post-decrement value, which must read back as 0).
// This guarantees "exactly one" emission semantics across any number of
// cooperating goroutines standing in for GPU workgroups.
type Guard struct {
	remaining atomic.Int32
}

// NewGuard initializes the guard for n participants.
func NewGuard(n int) *Guard {
	g := &Guard{}
	g.remaining.Store(int32(n))
	return g
}

// Arrive signals this participant is done with its share of work. It
// returns true for exactly one caller across the whole guard's lifetime:
// whichever decrement observes the counter reach zero.
func (g *Guard) Arrive() bool {
	return g.remaining.Add(-1) == 0
}
