package kernel

import (
	"math/rand"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/aryanbdps9/gpumcts/internal/worklist"
)

// expandResult tells the dispatch loop how to proceed after expandLeaf: it
// always yields a (winner, ok) outcome ready for backprop, except when
// allocation failed outright, in which case the iteration must be aborted
// with no visit/win accounting — the virtual loss is unwound and nothing
// else is touched.
type expandResult struct {
	winner  int8
	ok      bool
	aborted bool
}

// expandLeaf expands the leaf selectLeaf stopped at (it.Last()), or
// simulates through it if another worker already owns its expansion.
// it.Board already reflects that leaf's position.
func expandLeaf(p *nodepool.Pool, params *Params, it *worklist.Item, rng *rand.Rand, diag *Diagnostics) expandResult {
	leafIdx := it.Last()
	leaf := p.Node(leafIdx)

	if leaf.State()&nodepool.FlagTerminal != 0 {
		return expandResult{winner: leaf.Winner, ok: leaf.WinnerValid}
	}

	diag.ExpansionAttempts.Add(1)
	if !leaf.StateFlags.CompareAndSwap(uint32(nodepool.FlagUninitialized), uint32(nodepool.FlagExpanding)) {
		// Another worker owns this leaf's expansion: simulate straight from
		// its current board without adding children.
		return simulateFrom(params, it.Board, leaf.PlayerToMove, rng)
	}
	diag.ExpansionSuccess.Add(1)

	moves := params.Game.EnumerateMoves(it.Board, leaf.PlayerToMove)
	if len(moves) == 0 {
		winner, ok := params.Game.Winner(it.Board)
		leaf.Winner = winner
		leaf.WinnerValid = ok
		leaf.StateFlags.Store(uint32(nodepool.FlagTerminal))
		return expandResult{winner: winner, ok: ok}
	}

	selected := truncateMoves(moves, nodepool.MaxChildren, rng)

	children := make([]nodepool.NodeIndex, 0, len(selected))
	for range selected {
		idx, ok := p.Allocate(it.WorkerID)
		if !ok {
			break
		}
		children = append(children, idx)
	}

	if len(children) == 0 {
		// Total allocation failure: release the CAS claim and unwind.
		leaf.StateFlags.Store(uint32(nodepool.FlagUninitialized))
		unwindVirtualLoss(p, params, it)
		return expandResult{aborted: true}
	}

	prior := float32(1) / float32(len(children))
	board := make([]games.Cell, len(it.Board))
	for i, childIdx := range children {
		move := selected[i]
		copy(board, it.Board)
		nextPlayer := params.Game.ApplyMove(board, leaf.PlayerToMove, move)

		child := p.Node(childIdx)
		child.Parent = leafIdx
		child.MoveInto = nodepool.MoveID(move)
		child.PlayerToMove = nextPlayer
		child.MoverInto = leaf.PlayerToMove

		leaf.Children[i] = childIdx
		leaf.ChildPriors[i] = prior
	}
	leaf.NumChildren = uint8(len(children))
	for i := len(children); i < nodepool.MaxChildren; i++ {
		leaf.Children[i] = nodepool.NoNode
	}
	leaf.StateFlags.Store(uint32(nodepool.FlagExpanded))

	// Descend into one freshly-created child to continue this iteration's
	// simulation from, as if selection had chosen it.
	pick := rng.Intn(len(children))
	pickedIdx := children[pick]
	picked := p.Node(pickedIdx)
	params.Game.ApplyMove(it.Board, leaf.PlayerToMove, games.MoveID(picked.MoveInto))
	it.PushExpanded(pickedIdx)

	return simulateFrom(params, it.Board, picked.PlayerToMove, rng)
}

// truncateMoves returns at most max moves, sampled without replacement when
// moves exceeds max, so truncation exposes a uniform-random subset rather
// than always favouring move-enumeration order.
func truncateMoves(moves []games.MoveID, max int, rng *rand.Rand) []games.MoveID {
	if len(moves) <= max {
		return moves
	}
	shuffled := make([]games.MoveID, len(moves))
	copy(shuffled, moves)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:max]
}

// unwindVirtualLoss reverts the virtual-loss increments applied during this
// iteration's selection descent without touching visits or wins, used only
// on the total-allocation-failure abort path.
func unwindVirtualLoss(p *nodepool.Pool, params *Params, it *worklist.Item) {
	for i := 1; i < it.PathLen; i++ {
		if !it.ReceivedVL[i] {
			continue
		}
		p.Node(it.Path[i]).VirtualLosses.Add(-params.VirtualLossMagnitude)
	}
}
