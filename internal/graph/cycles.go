package graph

import (
	"bale/internal/diag"
	"bale/internal/project/dag"
)

// reportCycles flags modules caught in require cycles. Cycles are legal;
// the runtime hands out partially initialized exports for them.
func reportCycles(g *Graph, reporter diag.Reporter) {
	nodes := make([]dag.Node, 0, g.Len())
	for _, m := range g.Modules() {
		nodes = append(nodes, dag.Node{ID: m.ID, Deps: m.DependencyIDs()})
	}
	idx := dag.BuildIndex(nodes)
	dg := dag.BuildGraph(idx, nodes, reporter)
	dag.ReportCycles(idx, dg, dag.ToposortKahn(dg), reporter)
}
