package kernel

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/events"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/aryanbdps9/gpumcts/internal/worklist"
)

// Diagnostics accumulates the per-dispatch counters exposed to the host:
// selection hitting a node with zero active children, expansion
// attempts/successes, and allocation failures.
type Diagnostics struct {
	SelectionNoChildren atomic.Int64
	ExpansionAttempts   atomic.Int64
	ExpansionSuccess    atomic.Int64
	AllocFailures       atomic.Int64
	IterationsRun       atomic.Int64
}

// Dispatch runs one batch of MCTS iterations: every item in items is driven
// by its own persistent goroutine, each pulling from the shared
// iterationsRemaining counter until it is exhausted or halt is observed
// true. No per-iteration dispatch overhead, and halt is checked promptly
// rather than only between batches.
//
// rootBoard is the board at item.Root right now; it is copied into each
// item's scratch board at the start of every iteration.
func Dispatch(
	p *nodepool.Pool,
	params *Params,
	items []*worklist.Item,
	root nodepool.NodeIndex,
	rootBoard []games.Cell,
	ring *events.Ring,
	iterationsRemaining *atomic.Int64,
	halt *atomic.Bool,
) *Diagnostics {
	diag := &Diagnostics{}

	var wg sync.WaitGroup
	wg.Add(len(items))
	for _, it := range items {
		it := it
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(params.Seed + int64(it.WorkerID)))
			runWorker(p, params, it, root, rootBoard, ring, iterationsRemaining, halt, diag, rng)
		}()
	}
	wg.Wait()
	return diag
}

func runWorker(
	p *nodepool.Pool,
	params *Params,
	it *worklist.Item,
	root nodepool.NodeIndex,
	rootBoard []games.Cell,
	ring *events.Ring,
	iterationsRemaining *atomic.Int64,
	halt *atomic.Bool,
	diag *Diagnostics,
	rng *rand.Rand,
) {
	for {
		if halt.Load() {
			return
		}
		if iterationsRemaining.Add(-1) < 0 {
			return
		}

		it.Reset(root, rootBoard)
		selectLeaf(p, params, it)

		leaf := p.Node(it.Last())
		if leaf.State()&nodepool.FlagExpanded != 0 && leaf.NumChildren == 0 {
			diag.SelectionNoChildren.Add(1)
		}

		res := expandLeaf(p, params, it, rng, diag)
		if res.aborted {
			ring.Push(events.Record{EventType: events.EventMemoryPressure})
			diag.AllocFailures.Add(1)
			continue
		}

		backprop(p, params, it, res)
		diag.IterationsRun.Add(1)
	}
}
