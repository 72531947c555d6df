// Package worklist implements the fixed set of persistent worker slots,
// each carrying a path buffer and a simulation scratch board. This mirrors
// alphabeth's per-goroutine searchState struct
// (mcts/search.go) but strips the recursive-call bookkeeping in favour of
// an explicit, bounded path array a selection loop appends to iteratively.
package worklist

import (
	"github.com/aryanbdps9/gpumcts/games"
	"github.com/aryanbdps9/gpumcts/internal/nodepool"
)

// Item is one persistent worker's mutable scratch state. Exactly one worker
// owns an Item, exclusively, for the duration of a dispatch.
type Item struct {
	WorkerID int
	Root     nodepool.NodeIndex

	Path    []nodepool.NodeIndex
	// ReceivedVL[i] is true when Path[i] had the configured virtual-loss
	// magnitude applied to it during a PUCT selection descent (as opposed
	// to being appended afterwards by expansion's "pick a child to
	// simulate from" step, which applies no virtual loss). Backprop only
	// undoes the virtual loss where this is true. Path[0], the root, is
	// pushed with this flag set although it receives no virtual loss, so
	// backprop and the abort unwind skip index 0.
	ReceivedVL []bool
	PathLen    int

	Board []games.Cell
}

// NewItems allocates n work items, each with its own path buffer and
// scratch board sized for boardCells, so workers never share backing
// arrays.
func NewItems(n int, boardCells int) []*Item {
	items := make([]*Item, n)
	for i := range items {
		items[i] = &Item{
			WorkerID:   i,
			Path:       make([]nodepool.NodeIndex, nodepool.MaxDepth),
			ReceivedVL: make([]bool, nodepool.MaxDepth),
			Board:      make([]games.Cell, boardCells),
		}
	}
	return items
}

// Reset rewinds an item to start a fresh iteration from root, copying
// rootBoard into the scratch board.
func (it *Item) Reset(root nodepool.NodeIndex, rootBoard []games.Cell) {
	it.Root = root
	it.PathLen = 0
	copy(it.Board, rootBoard)
}

// PushSelected appends node to the path, marking it as having received a
// virtual-loss increment (called after a PUCT selection descent).
func (it *Item) PushSelected(node nodepool.NodeIndex) {
	it.Path[it.PathLen] = node
	it.ReceivedVL[it.PathLen] = true
	it.PathLen++
}

// PushExpanded appends node to the path without a virtual-loss marker
// (called when expansion picks one freshly-created child to simulate
// from).
func (it *Item) PushExpanded(node nodepool.NodeIndex) {
	it.Path[it.PathLen] = node
	it.ReceivedVL[it.PathLen] = false
	it.PathLen++
}

// Full reports whether the path buffer has reached MaxDepth.
func (it *Item) Full() bool { return it.PathLen >= len(it.Path) }

// Last returns the most recently pushed node (the current selection leaf).
func (it *Item) Last() nodepool.NodeIndex { return it.Path[it.PathLen-1] }
