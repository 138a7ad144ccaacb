// Package ltm implements the Loops Through Time augmenter (spec.md §4.7):
// enumerate the causal graph's simple cycles, score each loop's polarity,
// and rewrite a project to compute per-loop importance scores alongside
// the normal simulation. Grounded on the teacher's own graph-traversal
// style (analyzer/analyzer.go's computeTransitiveClosure, a plain
// adjacency-map DFS) generalized from call-graph reachability to
// Johnson's cycle-enumeration algorithm.
package ltm

import (
	"sort"

	"github.com/sdforge/sdengine/depgraph"
)

// Loop is one simple cycle in the causal graph, stored as the ordered
// sequence of canonical variable names it visits (Vertices[0] repeats as
// the implicit closing edge back to Vertices[0]).
type Loop struct {
	ID       string
	Vertices []string
}

// Edges returns the loop's directed edges u->v, including the closing
// edge from the last vertex back to the first.
func (l Loop) Edges() [][2]string {
	n := len(l.Vertices)
	edges := make([][2]string, 0, n)
	for i := 0; i < n; i++ {
		u := l.Vertices[i]
		v := l.Vertices[(i+1)%n]
		edges = append(edges, [2]string{u, v})
	}
	return edges
}

// EnumerateLoops runs Johnson's algorithm for simple-cycle enumeration
// over g's direct-dependency adjacency, then deduplicates cycles that are
// rotations or reverse-orientations of one another (the same physical
// loop traversed from a different start point or in the opposite
// direction is one loop, not two). Loop.ID is assigned by canonical
// rotation key so the same loop gets the same id across repeated runs on
// the same graph.
func EnumerateLoops(g *depgraph.Graph) []Loop {
	names := append([]string(nil), g.Names...)
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	jc := &johnson{adj: buildAdjacency(g, names, index), n: len(names)}
	raw := jc.run()

	seen := map[string]bool{}
	var loops []Loop
	for _, cycle := range raw {
		verts := make([]string, len(cycle))
		for i, idx := range cycle {
			verts[i] = names[idx]
		}
		key := canonicalKey(verts)
		if seen[key] {
			continue
		}
		seen[key] = true
		loops = append(loops, Loop{Vertices: verts})
	}

	sort.Slice(loops, func(i, j int) bool {
		return canonicalKey(loops[i].Vertices) < canonicalKey(loops[j].Vertices)
	})
	for i := range loops {
		loops[i].ID = loopID(i)
	}
	return loops
}

func buildAdjacency(g *depgraph.Graph, names []string, index map[string]int) [][]int {
	adj := make([][]int, len(names))
	for from, deps := range g.Deps {
		fi, ok := index[from]
		if !ok {
			continue
		}
		for _, to := range deps {
			ti, ok := index[to]
			if !ok {
				continue
			}
			adj[fi] = append(adj[fi], ti)
		}
	}
	for i := range adj {
		sort.Ints(adj[i])
	}
	return adj
}

// canonicalKey picks the lexicographically smallest rotation of verts,
// comparing each rotation against its own reverse too, so a loop found
// a->b->c and one found a->c->b (same cycle, opposite direction) collapse
// to the same key.
func canonicalKey(verts []string) string {
	best := rotateKey(verts)
	rev := make([]string, len(verts))
	for i, v := range verts {
		rev[len(verts)-1-i] = v
	}
	if k := rotateKey(rev); k < best {
		best = k
	}
	return best
}

func rotateKey(verts []string) string {
	n := len(verts)
	if n == 0 {
		return ""
	}
	best := ""
	for start := 0; start < n; start++ {
		var sb []byte
		for i := 0; i < n; i++ {
			sb = append(sb, verts[(start+i)%n]...)
			sb = append(sb, 0)
		}
		k := string(sb)
		if best == "" || k < best {
			best = k
		}
	}
	return best
}

func loopID(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < 26 {
		return string(letters[i])
	}
	return string(letters[i/26-1]) + string(letters[i%26])
}

// johnson enumerates all elementary cycles of a directed graph given as
// adjacency lists over vertex indices [0,n), via Johnson's 1975 algorithm.
type johnson struct {
	adj [][]int
	n   int

	blocked   []bool
	blockMap  []map[int]bool
	stack     []int
	result    [][]int
	startIdx  int
}

func (j *johnson) run() [][]int {
	j.blocked = make([]bool, j.n)
	j.blockMap = make([]map[int]bool, j.n)
	for i := range j.blockMap {
		j.blockMap[i] = map[int]bool{}
	}

	for s := 0; s < j.n; s++ {
		j.startIdx = s
		sub := j.subgraphFrom(s)
		for i := range j.blocked {
			j.blocked[i] = false
			j.blockMap[i] = map[int]bool{}
		}
		j.stack = nil
		j.circuit(s, s, sub)
	}
	return j.result
}

// subgraphFrom restricts adjacency to vertices >= start, per Johnson's
// algorithm (only cycles whose least vertex is `start` are found in this
// outer iteration, preventing rediscovery of already-enumerated cycles).
func (j *johnson) subgraphFrom(start int) [][]int {
	sub := make([][]int, j.n)
	for v := start; v < j.n; v++ {
		for _, w := range j.adj[v] {
			if w >= start {
				sub[v] = append(sub[v], w)
			}
		}
	}
	return sub
}

func (j *johnson) circuit(v, start int, sub [][]int) bool {
	found := false
	j.stack = append(j.stack, v)
	j.blocked[v] = true

	for _, w := range sub[v] {
		if w == start {
			cycle := make([]int, len(j.stack))
			copy(cycle, j.stack)
			j.result = append(j.result, cycle)
			found = true
		} else if !j.blocked[w] {
			if j.circuit(w, start, sub) {
				found = true
			}
		}
	}

	if found {
		j.unblock(v)
	} else {
		for _, w := range sub[v] {
			j.blockMap[w][v] = true
		}
	}

	j.stack = j.stack[:len(j.stack)-1]
	return found
}

func (j *johnson) unblock(v int) {
	j.blocked[v] = false
	for w := range j.blockMap[v] {
		delete(j.blockMap[v], w)
		if j.blocked[w] {
			j.unblock(w)
		}
	}
}
