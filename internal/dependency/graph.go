// Package dependency builds and flattens dependency graphs.
package dependency // import "github.com/CognitoIQ/xmlupgrade/internal/dependency"

import (
	"cmp"
	"slices"
)

// insertUnique inserts x into the sorted set, preserving order. If x
// is already in set, it is not added. The augmented set is returned.
func insertUnique[K cmp.Ordered](set []K, x K) []K {
	i, found := slices.BinarySearch(set, x)
	if !found {
		set = slices.Insert(set, i, x)
	}
	return set
}

// A Graph is a collection of targets and their dependencies. The zero
// value is an empty graph.
type Graph[K cmp.Ordered] struct {
	targets []K
	nodes   map[K][]K
}

// Len returns the number of targets in the graph.
func (g *Graph[K]) Len() int {
	return len(g.targets)
}

// Add adds a dependency to a Graph.
func (g *Graph[K]) Add(target, dependency K) {
	if g.nodes == nil {
		g.nodes = make(map[K][]K)
	}
	g.targets = insertUnique(g.targets, target)
	g.nodes[target] = insertUnique(g.nodes[target], dependency)
}

// Flatten calls the walk function on each node in the Graph in topological
// order, starting with the leaves and traversing up to the roots.  The same
// Graph will always be traversed in the same order.
//
// Every vertex in the Graph is visited once; any cycles in the graph are
// skipped.
func (g *Graph[K]) Flatten(walk func(K)) {
	visited := make(map[K]bool, len(g.nodes))
	g.flatten(walk, g.targets, visited)
}

func (g *Graph[K]) flatten(fn func(K), targets []K, visited map[K]bool) {
	for _, tgt := range targets {
		if !visited[tgt] {
			visited[tgt] = true
			g.flatten(fn, g.nodes[tgt], visited)
			fn(tgt)
		}
	}
}

// Cycle returns the vertices of a cycle in the graph, starting and
// ending with the same vertex, or nil if the graph is acyclic.
func (g *Graph[K]) Cycle() []K {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[K]int, len(g.nodes))
	var path []K
	var visit func(K) []K
	visit = func(v K) []K {
		switch state[v] {
		case active:
			i := slices.Index(path, v)
			return append(slices.Clone(path[i:]), v)
		case done:
			return nil
		}
		state[v] = active
		path = append(path, v)
		for _, dep := range g.nodes[v] {
			if c := visit(dep); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		state[v] = done
		return nil
	}
	for _, tgt := range g.targets {
		if c := visit(tgt); c != nil {
			return c
		}
	}
	return nil
}
