package topology

import (
	"fmt"
	"strings"
)

// graph is the block reference graph: an edge a -> b means block a splices
// block b, by INSERT or as a branch route. Nodes are block indices, so
// traversal order follows document order.
type graph struct {
	names []string
	edges [][]int
}

func newGraph(names []string) *graph {
	return &graph{names: names, edges: make([][]int, len(names))}
}

func (g *graph) addEdge(from, to int) {
	for _, n := range g.edges[from] {
		if n == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// detectCycles runs a depth-first search keeping the current path. It
// returns an error naming the first cycle found, e.g. "a -> b -> a".
func (g *graph) detectCycles() error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]int, len(g.names))
	var path []int

	var visit func(n int) error
	visit = func(n int) error {
		switch state[n] {
		case done:
			return nil
		case onPath:
			start := 0
			for i, p := range path {
				if p == n {
					start = i
					break
				}
			}
			return &cycleError{path: g.label(append(path[start:len(path):len(path)], n))}
		}

		state[n] = onPath
		path = append(path, n)
		for _, next := range g.edges[n] {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[n] = done
		return nil
	}

	for n := range g.names {
		if state[n] == unvisited {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *graph) label(nodes []int) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = g.names[n]
	}
	return out
}

type cycleError struct {
	path []string
}

func (e *cycleError) Error() string {
	return fmt.Sprintf("cyclic reference %s", strings.Join(e.path, " -> "))
}
