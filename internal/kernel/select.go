package kernel

import (
	"github.com/chewxy/math32"

	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/aryanbdps9/gpumcts/internal/worklist"
)

// selectLeaf descends from item.Root, pushing every visited node onto the
// item's path, applying a virtual-loss increment to each child it commits
// to, and mutating item.Board to match the position at the returned leaf.
// It stops at the first node that is not yet FlagExpanded, or that is
// FlagTerminal.
func selectLeaf(p *nodepool.Pool, params *Params, it *worklist.Item) {
	it.PushSelected(it.Root)
	current := it.Root

	for {
		node := p.Node(current)
		state := node.State()
		if state&nodepool.FlagExpanded == 0 || state&nodepool.FlagTerminal != 0 {
			return
		}
		if it.Full() {
			return
		}

		child := puctBestChild(p, params.ExplorationConstant, node)
		if child == nodepool.NoNode {
			// Expanded but with zero live children shouldn't happen (a
			// zero-legal-move node is marked Terminal instead), but don't
			// index a NoNode child if it somehow does.
			return
		}

		childNode := p.Node(child)
		params.Game.ApplyMove(it.Board, node.PlayerToMove, games.MoveID(childNode.MoveInto))
		childNode.VirtualLosses.Add(params.VirtualLossMagnitude)
		it.PushSelected(child)
		current = child
	}
}

// puctBestChild returns the child of node with the highest PUCT score,
// breaking ties toward the lowest child index for determinism under
// identical priors.
//
// Virtual losses only inflate the exploration term's denominator
// (effVisits = visits + virtualLosses), discouraging other workers from
// piling onto the same in-flight child. The exploitation term q is computed
// from the real completed-visit count alone, never effVisits, so a child
// with genuine wins doesn't have its win rate diluted by another worker's
// still-unresolved virtual loss.
func puctBestChild(p *nodepool.Pool, c float32, node *nodepool.Node) nodepool.NodeIndex {
	parentVisits := node.Visits.Load() + node.VirtualLosses.Load()
	sqrtParent := math32.Sqrt(float32(parentVisits))

	best := nodepool.NoNode
	bestScore := math32.Inf(-1)

	for i := uint8(0); i < node.NumChildren; i++ {
		childIdx := node.Children[i]
		if childIdx == nodepool.NoNode {
			continue
		}
		child := p.Node(childIdx)
		visits := child.Visits.Load()
		vl := child.VirtualLosses.Load()
		effVisits := visits + vl

		var q float32
		if visits > 0 {
			q = float32(child.Wins.Load()) / float32(2*visits)
		}
		exploration := c * node.ChildPriors[i] * sqrtParent / float32(1+effVisits)
		score := q + exploration

		if score > bestScore || (score == bestScore && (best == nodepool.NoNode || childIdx < best)) {
			bestScore = score
			best = childIdx
		}
	}
	return best
}
