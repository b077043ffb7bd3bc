package runtime

// MaxDepth estimates the longest simple path from the start node, counted in nodes.
//
// Depths are memoized for the duration of the call. A neighbor already on the
// DFS stack contributes 0, which keeps cyclic graphs finite. Terminal and
// unresolved nodes have depth 1. Because memoized values were computed under a
// particular stack, the result is an estimate on graphs with cycles.
func MaxDepth(idx *Index) int {
	if idx == nil {
		return 0
	}
	memo := make(map[string]int, idx.Len())
	onStack := make(map[string]bool)

	var visit func(id string) int
	visit = func(id string) int {
		if d, ok := memo[id]; ok {
			return d
		}
		node, ok := idx.Lookup(id)
		if !ok || node.IsTerminal() {
			memo[id] = 1
			return 1
		}

		onStack[id] = true
		best := 0
		for _, c := range node.Choices {
			if onStack[c.TargetNodeID] {
				continue
			}
			if d := visit(c.TargetNodeID); d > best {
				best = d
			}
		}
		onStack[id] = false

		memo[id] = best + 1
		return best + 1
	}
	return visit(idx.StartNodeID())
}
