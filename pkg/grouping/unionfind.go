package grouping

// boundedUnionFind is a union-find over dense ids with explicit component sizes.
// A union that would grow a component past maxSize is refused.
type boundedUnionFind struct {
	parent  []int
	size    []int
	maxSize int
}

func newBoundedUnionFind(n, maxSize int) *boundedUnionFind {
	uf := &boundedUnionFind{
		parent:  make([]int, n),
		size:    make([]int, n),
		maxSize: maxSize,
	}
	for i := 0; i < n; i++ {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// find returns the root of x, compressing the path on the way.
func (uf *boundedUnionFind) find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// componentSize is the size of the component holding x.
func (uf *boundedUnionFind) componentSize(x int) int {
	return uf.size[uf.find(x)]
}

// union merges the components of a and b. The smaller root goes under the larger;
// on equal sizes the higher root id goes under the lower one.
func (uf *boundedUnionFind) union(a, b int) Outcome {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return AlreadyJoined
	}
	if uf.size[ra]+uf.size[rb] > uf.maxSize {
		return Rejected
	}
	if uf.size[ra] < uf.size[rb] || (uf.size[ra] == uf.size[rb] && ra > rb) {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
	return Merged
}

// components groups ids by root. Groups are ordered by their smallest member and
// members ascend, since ids are visited in increasing order.
func (uf *boundedUnionFind) components() [][]int {
	index := make(map[int]int)
	var groups [][]int
	for id := range uf.parent {
		root := uf.find(id)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], id)
	}
	return groups
}
