// Package diag renders a snapshot of the live search tree as Graphviz DOT,
// for the "dump tree" diagnostics path exposed by cmd/mctsctl.
package diag

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/aryanbdps9/gpumcts/internal/nodepool"
)

// MaxDumpNodes bounds how much of the tree DumpTree walks, so a diagnostics
// request against a multi-million-node pool doesn't itself stall the host.
const MaxDumpNodes = 5000

// DumpTree renders the subtree reachable from root as a DOT digraph. Each
// node is labeled with its visit count and Q value; truncated indicates
// whether MaxDumpNodes cut the walk short.
func DumpTree(p *nodepool.Pool, root nodepool.NodeIndex) (dot string, truncated bool, err error) {
	graph := gographviz.NewGraph()
	if err := graph.SetName("tree"); err != nil {
		return "", false, err
	}
	if err := graph.SetDir(true); err != nil {
		return "", false, err
	}

	// gographviz requires both endpoints of an edge to already exist as
	// nodes, so the reachable set is collected breadth-first first, then
	// nodes and edges are added in two separate passes.
	order := []nodepool.NodeIndex{root}
	seen := map[nodepool.NodeIndex]struct{}{root: {}}
	for i := 0; i < len(order) && len(order) < MaxDumpNodes; i++ {
		node := p.Node(order[i])
		for c := uint8(0); c < node.NumChildren; c++ {
			child := node.Children[c]
			if child == nodepool.NoNode {
				continue
			}
			if _, ok := seen[child]; ok {
				continue
			}
			seen[child] = struct{}{}
			order = append(order, child)
		}
	}
	truncated = len(order) >= MaxDumpNodes

	for _, idx := range order {
		node := p.Node(idx)
		label := fmt.Sprintf("\"#%d v=%d q=%.3f\"", idx, node.Visits.Load(), node.Q())
		if err := graph.AddNode("tree", nodeName(idx), map[string]string{"label": label}); err != nil {
			return "", truncated, err
		}
	}
	for _, idx := range order {
		node := p.Node(idx)
		for c := uint8(0); c < node.NumChildren; c++ {
			child := node.Children[c]
			if child == nodepool.NoNode {
				continue
			}
			if _, ok := seen[child]; !ok {
				continue
			}
			if err := graph.AddEdge(nodeName(idx), nodeName(child), true, nil); err != nil {
				return "", truncated, err
			}
		}
	}

	return graph.String(), truncated, nil
}

func nodeName(idx nodepool.NodeIndex) string {
	return fmt.Sprintf("n%d", idx)
}
