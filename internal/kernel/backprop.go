package kernel

import (
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
	"github.com/aryanbdps9/gpumcts/internal/worklist"
)

// backprop walks it.Path from the deepest node back to the root, crediting
// each node's Visits/Wins from its own MoverInto perspective and undoing the
// virtual-loss increments applied during selection.
//
// Root (Path[0]) never received a virtual-loss increment during selection -
// only a child being descended into does - so it is excluded from the
// unwind, matching selectLeaf's symmetric application.
func backprop(p *nodepool.Pool, params *Params, it *worklist.Item, res expandResult) {
	for i := it.PathLen - 1; i >= 0; i-- {
		node := p.Node(it.Path[i])
		reward := rewardFor(node.MoverInto, res)
		node.Visits.Add(1)
		node.Wins.Add(int32(reward))

		if i > 0 && it.ReceivedVL[i] {
			node.VirtualLosses.Add(-params.VirtualLossMagnitude)
		}
	}
}

// rewardFor converts a simulation/terminal outcome into the 2/1/0 scale
// (an integer reward avoids float accumulation drift under concurrent
// atomic adds) from mover's perspective: 2 for a win, 1 for a draw or
// no-decided-winner, 0 for a loss.
func rewardFor(mover int8, res expandResult) int8 {
	if !res.ok {
		return 1
	}
	if res.winner == mover {
		return 2
	}
	return 0
}
