package dag

import "slices"

// components runs Tarjan's algorithm over the subgraph induced by nodes and
// returns every strongly connected component with at least two members.
// Self edges never reach Graph, so single nodes are never cycles here.
func components(g Graph, nodes []ModuleID) [][]ModuleID {
	in := make(map[ModuleID]bool, len(nodes))
	for _, id := range nodes {
		in[id] = true
	}

	var (
		index   = make(map[ModuleID]int, len(nodes))
		low     = make(map[ModuleID]int, len(nodes))
		onStack = make(map[ModuleID]bool, len(nodes))
		stack   []ModuleID
		next    int
		out     [][]ModuleID
	)
	var strong func(v ModuleID)
	strong = func(v ModuleID) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Edges[int(v)] {
			if !in[w] {
				continue
			}
			if _, seen := index[w]; !seen {
				strong(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
		var comp []ModuleID
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 {
			slices.Sort(comp)
			out = append(out, comp)
		}
	}

	for _, id := range nodes {
		if _, seen := index[id]; !seen {
			strong(id)
		}
	}
	slices.SortFunc(out, func(a, b []ModuleID) int { return int(a[0]) - int(b[0]) })
	return out
}

// CyclePath returns the shortest require path from start back to itself
// that stays inside members, e.g. [a b a]. It returns nil when start is not
// on such a cycle.
func CyclePath(g Graph, members []ModuleID, start ModuleID) []ModuleID {
	in := make(map[ModuleID]bool, len(members))
	for _, id := range members {
		in[id] = true
	}
	if !in[start] {
		return nil
	}
	// BFS по рёбрам компоненты; Edges отсортированы, путь детерминирован
	prev := map[ModuleID]ModuleID{start: start}
	queue := []ModuleID{start}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.Edges[int(v)] {
			if !in[w] {
				continue
			}
			if w == start {
				path := []ModuleID{start}
				for cur := v; cur != start; cur = prev[cur] {
					path = append(path, cur)
				}
				path = append(path, start)
				slices.Reverse(path)
				return path
			}
			if _, seen := prev[w]; seen {
				continue
			}
			prev[w] = v
			queue = append(queue, w)
		}
	}
	return nil
}
