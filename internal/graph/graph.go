// Package graph holds the in-memory link graph and the shortest-path search
// that runs over it. A Graph is built fresh for every routing request and is
// never shared between requests.
package graph

import "github.com/alfredjeanlab/trackline/internal/model"

// Edge is one traversable direction of a link.
type Edge struct {
	To     string
	Weight float64
}

// Graph is an undirected weighted multigraph keyed by station short code.
// Parallel links are kept as separate edges.
type Graph struct {
	adj   map[string][]Edge
	links int
}

// Build constructs a Graph from links. Each link contributes one edge in
// each direction, appended in link order. Codes that appear in no link are
// absent from the graph.
func Build(links []*model.Link) *Graph {
	g := &Graph{adj: make(map[string][]Edge)}
	for _, l := range links {
		if l == nil {
			continue
		}
		g.adj[l.Parent] = append(g.adj[l.Parent], Edge{To: l.Child, Weight: l.Distance})
		g.adj[l.Child] = append(g.adj[l.Child], Edge{To: l.Parent, Weight: l.Distance})
		g.links++
	}
	return g
}

// Has reports whether code has at least one link.
func (g *Graph) Has(code string) bool {
	_, ok := g.adj[code]
	return ok
}

// Neighbors returns the edges leaving code in insertion order.
func (g *Graph) Neighbors(code string) []Edge {
	return g.adj[code]
}

// NodeCount returns the number of distinct codes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.adj)
}

// LinkCount returns the number of links the graph was built from.
func (g *Graph) LinkCount() int {
	return g.links
}

// Weight returns the lightest edge weight between a and b, and whether any
// edge joins them.
func (g *Graph) Weight(a, b string) (float64, bool) {
	best, found := 0.0, false
	for _, e := range g.adj[a] {
		if e.To == b && (!found || e.Weight < best) {
			best, found = e.Weight, true
		}
	}
	return best, found
}
