// Package reroot implements the three-phase re-root/prune protocol: mark
// every node reachable from the chosen child, reclaim every unreachable
// node back to internal/nodepool's freelists, then promote the chosen
// child into index 0 so the tree's root identity never moves. Grounded on
// alphabeth's newRootState/cleanup/cleanChildren (mcts/search.go,
// mcts/tree.go), generalized from its single-mutex subtree walk into an
// explicit mark-then-reclaim-then-promote sequence.
package reroot

import (
	"github.com/aryanbdps9/gpumcts/internal/events"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
)

// AdvanceRoot moves the tree's root to chosen, one of the current root's
// children, reclaiming everything else reachable from the old root. It
// returns the number of unreachable nodes reclaimed; chosen's own old slot,
// released by promote after its fields are copied into index 0, is not
// counted. ring receives REROOT_START and exactly one REROOT_END event,
// emitted through a single-participant events.Guard (the reclaim phase runs
// on one goroutine).
//
// turn is an opaque counter the caller supplies (e.g. the ply number) and is
// carried in the REROOT_END payload for host-side diagnostics correlation.
func AdvanceRoot(p *nodepool.Pool, chosen nodepool.NodeIndex, ring *events.Ring, turn uint32) int {
	ring.Push(events.Record{EventType: events.EventRerootStart})

	root := p.Root()
	if chosen == nodepool.NoNode || chosen == nodepool.NodeIndex(0) {
		panic("reroot: chosen child must be a live, non-root node index")
	}

	reachable := mark(p, chosen)
	reclaimed := reclaim(p, root, chosen, reachable)
	promote(p, chosen)

	guard := events.NewGuard(1)
	if guard.Arrive() {
		ring.Push(events.Record{
			EventType: events.EventRerootEnd,
			Payload:   [events.PayloadWords]uint32{turn, 0},
		})
	}

	return reclaimed
}

// mark performs a BFS over Children[] starting at chosen and returns the
// set of node indices reachable from it.
func mark(p *nodepool.Pool, chosen nodepool.NodeIndex) map[nodepool.NodeIndex]struct{} {
	reachable := map[nodepool.NodeIndex]struct{}{chosen: {}}
	queue := []nodepool.NodeIndex{chosen}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		node := p.Node(idx)
		for i := uint8(0); i < node.NumChildren; i++ {
			c := node.Children[i]
			if c == nodepool.NoNode {
				continue
			}
			if _, seen := reachable[c]; seen {
				continue
			}
			reachable[c] = struct{}{}
			queue = append(queue, c)
		}
	}
	return reachable
}

// reclaim walks every node reachable from the old root (index 0) other than
// index 0 itself and chosen's surviving subtree, releasing the unreachable
// ones back to the pool's freelists. The old root's own slot is reset in
// place by promote, not released, since index 0 is permanent.
//
// This walk reuses mark's BFS shape over the old root instead of scanning
// the whole arena, since only nodes reachable from the old root were ever
// live in the first place — the pool only ever contains nodes reachable
// from root, plus free ones.
func reclaim(p *nodepool.Pool, oldRoot *nodepool.Node, chosen nodepool.NodeIndex, keep map[nodepool.NodeIndex]struct{}) int {
	reclaimed := 0
	queue := make([]nodepool.NodeIndex, 0, oldRoot.NumChildren)
	for i := uint8(0); i < oldRoot.NumChildren; i++ {
		c := oldRoot.Children[i]
		if c == nodepool.NoNode {
			continue
		}
		queue = append(queue, c)
	}

	visited := map[nodepool.NodeIndex]struct{}{}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if _, seen := visited[idx]; seen {
			continue
		}
		visited[idx] = struct{}{}

		if _, survives := keep[idx]; survives {
			continue // part of the surviving subtree; its own children are handled by promote's new tree
		}

		node := p.Node(idx)
		for i := uint8(0); i < node.NumChildren; i++ {
			c := node.Children[i]
			if c != nodepool.NoNode {
				queue = append(queue, c)
			}
		}
		p.Release(idx)
		reclaimed++
	}
	return reclaimed
}

// promote copies chosen's fields into index 0, so the root's identity (its
// NodeIndex) never changes even though the logical root has moved down the
// tree. Copying into slot 0 was chosen over swapping pointers, since index
// 0 is the only address every worklist.Item and the host API hold onto.
// chosen's old slot is then released.
func promote(p *nodepool.Pool, chosen nodepool.NodeIndex) {
	src := p.Node(chosen)
	dst := p.Root()

	dst.Visits.Store(src.Visits.Load())
	dst.Wins.Store(src.Wins.Load())
	dst.VirtualLosses.Store(0) // a promoted root never has anything in flight against it
	dst.NumChildren = src.NumChildren
	dst.Children = src.Children
	dst.ChildPriors = src.ChildPriors
	dst.PlayerToMove = src.PlayerToMove
	dst.MoverInto = src.MoverInto
	dst.Winner = src.Winner
	dst.WinnerValid = src.WinnerValid
	dst.Parent = nodepool.NoNode
	dst.MoveInto = nodepool.NoMove
	dst.StateFlags.Store(src.StateFlags.Load())

	// Re-parent the promoted children to their new parent index (0),
	// matching alphabeth's cleanChildren re-pointing the surviving
	// subtree's parent links to the new root.
	for i := uint8(0); i < dst.NumChildren; i++ {
		c := dst.Children[i]
		if c != nodepool.NoNode {
			p.Node(c).Parent = 0
		}
	}

	p.Release(chosen)
}
