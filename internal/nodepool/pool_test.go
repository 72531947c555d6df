package nodepool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolFreelistConservation(t *testing.T) {
	p := NewPool(1024)
	require.Equal(t, 1024, p.Capacity())
	// every index except root (0) starts on some freelist shard.
	assert.Equal(t, 1023, p.FreeCount())
	assert.EqualValues(t, 1, p.LiveCount())
}

func TestAllocateReleaseConservation(t *testing.T) {
	p := NewPool(256)
	const total = 256

	allocated := make([]NodeIndex, 0, total-1)
	for {
		i, ok := p.Allocate(0)
		if !ok {
			break
		}
		allocated = append(allocated, i)
	}
	assert.Equal(t, total-1, len(allocated))
	assert.Equal(t, 0, p.FreeCount())
	assert.EqualValues(t, total, p.LiveCount())

	// the loop's final failed call already counted once; this is the second.
	_, ok := p.Allocate(0)
	assert.False(t, ok)
	assert.EqualValues(t, 2, p.AllocFailures())

	for _, i := range allocated {
		p.Release(i)
	}
	assert.Equal(t, total-1, p.FreeCount())
	assert.EqualValues(t, 1, p.LiveCount())
}

func TestAllocateConcurrentConservation(t *testing.T) {
	const capacity = 5000
	p := NewPool(capacity)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var seen []NodeIndex

	for w := 0; w < 32; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			var local []NodeIndex
			for i := 0; i < (capacity-1)/32; i++ {
				idx, ok := p.Allocate(workerID)
				if ok {
					local = append(local, idx)
				}
			}
			mu.Lock()
			seen = append(seen, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	unique := make(map[NodeIndex]struct{}, len(seen))
	for _, idx := range seen {
		_, dup := unique[idx]
		require.False(t, dup, "node index allocated twice: %v", idx)
		unique[idx] = struct{}{}
	}
	assert.InDelta(t, capacity-1, len(seen), 32) // every worker may lose the last partial batch
}

func TestNodeResetClearsChildren(t *testing.T) {
	p := NewPool(8)
	n := p.Node(1)
	n.NumChildren = 2
	n.Children[0] = 5
	n.ChildPriors[0] = 0.5
	n.StateFlags.Store(uint32(FlagExpanded))
	n.Visits.Store(10)

	p.Release(1)

	n = p.Node(1)
	assert.EqualValues(t, FlagUninitialized, n.State())
	assert.Zero(t, n.NumChildren)
	assert.EqualValues(t, NoNode, n.Children[0])
	assert.Zero(t, n.Visits.Load())
}

func TestQComputation(t *testing.T) {
	p := NewPool(2)
	n := p.Node(1)
	assert.Zero(t, n.Q())
	n.Visits.Store(4)
	n.Wins.Store(6) // 2 wins + 2 draws, say
	assert.InDelta(t, float32(0.75), n.Q(), 1e-6)
}
