package graph

// assignChunks walks the finished graph from each entry. Membership and
// order come from this walk rather than from discovery, which depends on
// goroutine scheduling.
func (g *Graph) assignChunks() {
	g.order = make(map[string][]string, len(g.Entries))
	for _, e := range g.Entries {
		visited := make(map[string]bool)
		var order []string
		var walk func(id string)
		walk = func(id string) {
			if visited[id] {
				return
			}
			visited[id] = true
			m, ok := g.modules[id]
			if !ok {
				return
			}
			m.ChunkNames[e.Name] = struct{}{}
			order = append(order, id)
			for _, dep := range m.Dependencies {
				walk(dep.ResolvedID)
			}
		}
		walk(e.ID)
		g.order[e.Name] = order
	}
}
