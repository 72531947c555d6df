// Package kernel implements the selection/expansion/simulation/
// backpropagation loop as a persistent pool of goroutines operating
// directly on internal/nodepool's shared atomic arrays
// (see internal/device for why this stands in for an actual GPU kernel).
// Structure mirrors alphabeth's mcts/search.go recursive walk, rewritten as
// an explicit iterative descent over a bounded path buffer so a single
// worker never recurses past nodepool.MaxDepth.
package kernel

import "github.com/aryanbdps9/gpumcts/games"

// SimMode selects how a leaf's outcome is estimated once selection bottoms
// out: either a lightweight random rollout or a cheap heuristic evaluation.
type SimMode uint8

const (
	SimRandomRollout SimMode = iota
	SimHeuristicEval
)

// Params configures one kernel's worth of dispatches. All fields are set
// once at supervisor.CreateContext time and read-only afterward, so workers
// never contend over them.
type Params struct {
	Game games.Game

	// ExplorationConstant is PUCT's c term.
	ExplorationConstant float32

	// VirtualLossMagnitude is added to a node's VirtualLosses counter on
	// selection descent through it, and removed during backpropagation. It
	// discourages other workers from re-selecting the same path before it
	// resolves.
	VirtualLossMagnitude int32

	// SimMode picks the leaf-evaluation strategy.
	SimMode SimMode

	// HeuristicMargin is the minimum score gap between the best and
	// second-best player under SimHeuristicEval before a node is treated
	// as decided rather than a draw.
	HeuristicMargin float32

	// MaxRolloutPlies bounds a random rollout's length; games that haven't
	// terminated by then are scored as a draw.
	MaxRolloutPlies int

	// Seed seeds each worker's PRNG (offset by worker id) so a dispatch is
	// reproducible given the same seed and worker count.
	Seed int64
}
