package reroot

import (
	"testing"

	"github.com/aryanbdps9/gpumcts/internal/events"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixture constructs a small hand-wired tree under the pool's root:
//
//	root(0) -> a, b
//	a        -> a1, a2
//	b        -> b1
//
// and returns the live indices so tests can assert on reachability.
func buildFixture(t *testing.T) (p *nodepool.Pool, a, b, a1, a2, b1 nodepool.NodeIndex) {
	t.Helper()
	p = nodepool.NewPool(32)

	alloc := func() nodepool.NodeIndex {
		idx, ok := p.Allocate(0)
		require.True(t, ok)
		return idx
	}
	a, b = alloc(), alloc()
	a1, a2 = alloc(), alloc()
	b1 = alloc()

	root := p.Root()
	root.NumChildren = 2
	root.Children[0], root.Children[1] = a, b

	an := p.Node(a)
	an.Parent = 0
	an.NumChildren = 2
	an.Children[0], an.Children[1] = a1, a2
	p.Node(a1).Parent = a
	p.Node(a2).Parent = a

	bn := p.Node(b)
	bn.Parent = 0
	bn.NumChildren = 1
	bn.Children[0] = b1
	p.Node(b1).Parent = b

	return p, a, b, a1, a2, b1
}

func TestAdvanceRootReclaimsUnreachableSubtree(t *testing.T) {
	p, a, b, _, _, b1 := buildFixture(t)
	ring := events.NewRing()

	before := p.LiveCount()
	reclaimed := AdvanceRoot(p, a, ring, 3)

	// b and b1 (2 nodes) are unreachable from a and must be reclaimed; a's
	// own two children (a1, a2) survive since they are reachable from a.
	// promote then releases a's old slot after copying it into index 0, so
	// the live count drops by one more than the reclaimed count.
	assert.EqualValues(t, 2, reclaimed)
	assert.EqualValues(t, before-3, p.LiveCount())
	_ = b
	_ = b1
}

func TestAdvanceRootPromotesChosenIntoSlotZero(t *testing.T) {
	p, a, _, a1, a2, _ := buildFixture(t)
	an := p.Node(a)
	an.Visits.Store(9)
	an.Wins.Store(4)

	ring := events.NewRing()
	AdvanceRoot(p, a, ring, 1)

	root := p.Root()
	assert.EqualValues(t, 9, root.Visits.Load())
	assert.EqualValues(t, 4, root.Wins.Load())
	assert.EqualValues(t, 2, root.NumChildren)
	assert.ElementsMatch(t, []nodepool.NodeIndex{a1, a2}, root.Children[:2])
	assert.Equal(t, nodepool.NoNode, root.Parent)

	assert.EqualValues(t, 0, p.Node(a1).Parent)
	assert.EqualValues(t, 0, p.Node(a2).Parent)
}

func TestAdvanceRootConservesNodePool(t *testing.T) {
	p, a, _, _, _, _ := buildFixture(t)
	ring := events.NewRing()
	AdvanceRoot(p, a, ring, 1)

	assert.EqualValues(t, p.Capacity(), p.FreeCount()+int(p.LiveCount()))
}

func TestAdvanceRootEmitsExactlyOneRerootEndEvent(t *testing.T) {
	p, a, _, _, _, _ := buildFixture(t)
	ring := events.NewRing()
	AdvanceRoot(p, a, ring, 42)

	recs, _, overflow := ring.Drain(0)
	require.EqualValues(t, 0, overflow)
	require.Len(t, recs, 2)
	assert.Equal(t, events.EventRerootStart, recs[0].EventType)
	assert.Equal(t, events.EventRerootEnd, recs[1].EventType)
	assert.EqualValues(t, 42, recs[1].Payload[0])
	assert.EqualValues(t, 0, recs[1].Payload[1])
}
