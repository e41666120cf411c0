package dag

import (
	"fmt"
	"slices"
	"strings"

	"bale/internal/diag"
)

type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to
	Indeg   []int        // входящие степени для Kahn
	Present []bool       // модуль реально построен (а не только упомянут)
}

// BuildGraph turns nodes into an adjacency form. Self edges are dropped and
// reported: a module requiring itself is legal at runtime but never part of
// a Kahn order.
func BuildGraph(idx ModuleIndex, nodes []Node, reporter diag.Reporter) Graph {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	for _, node := range nodes {
		if id, ok := idx.NameToID[node.ID]; ok {
			g.Present[int(id)] = true
		}
	}

	for _, node := range nodes {
		from, ok := idx.NameToID[node.ID]
		if !ok {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(node.Deps))
		for _, dep := range node.Deps {
			to, ok := idx.NameToID[dep]
			if !ok {
				continue
			}
			if to == from {
				reporter.Report(diag.GraphSelfRequire, diag.SevInfo, node.ID,
					fmt.Sprintf("module %q requires itself", node.ID))
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[int(from)] = append(g.Edges[int(from)], to)
			if g.Present[int(to)] {
				g.Indeg[int(to)]++
			}
		}
		if len(g.Edges[int(from)]) > 1 {
			slices.Sort(g.Edges[int(from)])
		}
	}
	return g
}

// ReportCycles warns once per module that sits on a require cycle. Modules
// that only depend on a cycle are not reported. The note spells out the
// shortest cycle through the module.
func ReportCycles(idx ModuleIndex, g Graph, topo *Topo, reporter diag.Reporter) {
	if topo == nil || !topo.Cyclic || reporter == nil {
		return
	}
	for _, comp := range topo.Cycles {
		for _, id := range comp {
			name := idx.IDToName[int(id)]
			steps := CyclePath(g, comp, id)
			names := make([]string, len(steps))
			for i, step := range steps {
				names[i] = idx.IDToName[int(step)]
			}
			reporter.Report(diag.GraphRequireCycle, diag.SevWarning, name,
				fmt.Sprintf("module %q participates in a require cycle", name),
				"cycle: "+strings.Join(names, " -> "))
		}
	}
}
