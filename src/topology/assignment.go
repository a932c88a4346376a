package topology

// Assignment maps a node identity to the identities of its neighbors.
type Assignment map[string][]string

// NodeIDs returns every identity that appears in the assignment, either as a
// key or as a neighbor, in order of first appearance when keys are visited in
// the order given.
func (a Assignment) NodeIDs(keys []string) []string {
	seen := make(map[string]bool)
	res := []string{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	for _, k := range keys {
		add(k)
		for _, n := range a[k] {
			add(n)
		}
	}
	return res
}

// Connected reports whether the undirected graph formed by the assignment,
// restricted to ids, has a single component.
func (a Assignment) Connected(ids []string) bool {
	if len(ids) == 0 {
		return true
	}

	adj := make(map[string][]string)
	for k, ns := range a {
		for _, n := range ns {
			adj[k] = append(adj[k], n)
			adj[n] = append(adj[n], k)
		}
	}

	visited := map[string]bool{ids[0]: true}
	queue := []string{ids[0]}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range adj[cur] {
			if !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	for _, id := range ids {
		if !visited[id] {
			return false
		}
	}
	return true
}
