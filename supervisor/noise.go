package supervisor

import (
	"time"

	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/aryanbdps9/gpumcts/internal/nodepool"
)

// applyRootExplorationNoise blends Dirichlet noise into the root's child
// priors the first time the root has live children, exactly once per
// InitTree. Grounded on alphabeth's MCTS.dirichletSample field and its
// distmv.NewDirichlet(...).Rand(nil) construction in mcts/tree.go (New);
// alphabeth draws one sample per tree and mixes it into selection scores to
// keep root exploration from collapsing onto the single highest-prior move
// too early. This release's priors start uniform (no NN), so the practical
// effect is smaller, but the mechanism - and the dependency it exercises -
// is carried over unchanged.
func (s *Supervisor) applyRootExplorationNoise() {
	if s.rootNoiseApplied {
		return
	}
	root := s.pool.Root()
	if root.State()&nodepool.FlagExpanded == 0 || root.NumChildren == 0 {
		return
	}
	s.rootNoiseApplied = true

	if s.cfg.RootNoiseEpsilon <= 0 {
		return
	}

	n := int(root.NumChildren)
	alpha := make([]float64, n)
	for i := range alpha {
		alpha[i] = s.cfg.RootNoiseAlpha
	}

	dist := distmv.NewDirichlet(alpha, distrand.NewSource(uint64(time.Now().UnixNano())+uint64(s.turn)))
	sample := dist.Rand(nil)

	eps := s.cfg.RootNoiseEpsilon
	for i := 0; i < n; i++ {
		root.ChildPriors[i] = (1-eps)*root.ChildPriors[i] + float32(eps*sample[i])
	}
}
