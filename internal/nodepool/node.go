// Package nodepool implements the GPU-resident search tree: a pre-allocated,
// index-addressed node arena with sharded lock-free-ish freelists. Every
// worker goroutine in internal/kernel operates directly on this pool instead
// of a pointer-chasing tree, the way alphabeth's mcts.MCTS kept its nodes in
// a single `[]Node` arena addressed by a `Naughty` int32 handle.
package nodepool

import (
	"sync/atomic"
)

// NodeIndex addresses a node in the pool. Index 0 is reserved for the root
// and is never reclaimed.
type NodeIndex int32

// NoNode is the sentinel for "no node" (a nil parent, an empty child slot).
const NoNode NodeIndex = -1

// MaxChildren bounds the branching factor of any single node. Games whose
// legal-move count exceeds this (e.g. Blokus midgame) are truncated to a
// uniformly random subset of MaxChildren moves at expansion time.
const MaxChildren = 64

// MaxDepth bounds a search path's length (selection depth), sized generously
// for the largest supported board (Blokus, 400 cells, 4 players).
const MaxDepth = 512

// MoveID is the move that produced a node, in a game's own move-index space.
type MoveID int32

// NoMove is the sentinel move for the root.
const NoMove MoveID = -1

// StateFlags is the node's monotonic lifecycle bit field. State
// transitions are monotonic except via the re-root reclamation path.
type StateFlags uint32

const (
	FlagUninitialized StateFlags = 0
	FlagExpanding     StateFlags = 1 << 0
	FlagExpanded      StateFlags = 1 << 1
	FlagTerminal      StateFlags = 1 << 2
	FlagReclaimed     StateFlags = 1 << 3
)

// Node is a fixed-layout record, stored by value inside Pool.nodes so that
// workers touch atomics in place rather than chasing a pointer per visit.
type Node struct {
	Visits        atomic.Int32
	Wins          atomic.Int32
	VirtualLosses atomic.Int32
	StateFlags    atomic.Uint32

	Parent      NodeIndex
	NumChildren uint8
	Children    [MaxChildren]NodeIndex
	ChildPriors [MaxChildren]float32

	MoveInto     MoveID
	PlayerToMove int8

	// MoverInto is the player who made the move that produced this node
	// (the opponent of PlayerToMove in a 2-player game, the previous
	// player in turn order for N-player games). Backpropagation scores a
	// node's reward from this player's perspective.
	MoverInto int8

	// Winner caches the terminal outcome once FlagTerminal is set.
	// WinnerValid distinguishes "no winner" (draw) from "not yet computed".
	Winner      int8
	WinnerValid bool
}

// State returns the node's current lifecycle flags (acquire semantics: a
// reader that observes FlagExpanded is guaranteed to see the complete
// Children/ChildPriors/NumChildren written by the expanding worker).
func (n *Node) State() StateFlags {
	return StateFlags(n.StateFlags.Load())
}

// reset clears a node back to its just-allocated state. Called by Pool under
// allocation and by the re-root reclaim phase.
func (n *Node) reset(parent NodeIndex) {
	n.Visits.Store(0)
	n.Wins.Store(0)
	n.VirtualLosses.Store(0)
	n.StateFlags.Store(uint32(FlagUninitialized))
	n.Parent = parent
	n.NumChildren = 0
	for i := range n.Children {
		n.Children[i] = NoNode
		n.ChildPriors[i] = 0
	}
	n.MoveInto = NoMove
	n.PlayerToMove = 0
	n.MoverInto = -1
	n.Winner = -1
	n.WinnerValid = false
}

// Q returns (wins/visits)/2, the read-time conversion from the integer
// 2/1/0 reward scale to a [0,1] win probability.
func (n *Node) Q() float32 {
	v := n.Visits.Load()
	if v == 0 {
		return 0
	}
	return (float32(n.Wins.Load()) / float32(v)) / 2
}
