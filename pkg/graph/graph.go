// Package graph provides the directed link-topology graph built during a
// crawl. It doubles as the crawl's de-duplication gate: a URL present as a
// node is never scheduled again.
package graph

import "sort"

// Graph maps each URL to the set of URLs it links to. Edges are a set keyed
// by (from, to), so reciprocal or repeated links between the same pair
// collapse into one edge per direction.
//
// Mutation is confined to the run-loop goroutine; Graph is not safe for
// concurrent use.
type Graph struct {
	adj   map[string]map[string]struct{}
	edges int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[string]map[string]struct{})}
}

// Has reports whether url is already a node. Amortized O(1); this is the
// hot membership check run once per discovered candidate link.
func (g *Graph) Has(url string) bool {
	_, ok := g.adj[url]
	return ok
}

// AddNode inserts url as a node with no outbound edges. No-op if present.
func (g *Graph) AddNode(url string) {
	if _, ok := g.adj[url]; !ok {
		g.adj[url] = make(map[string]struct{})
	}
}

// AddEdge records the directed link from → to, inserting either endpoint
// as a node if absent. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if _, ok := g.adj[from][to]; !ok {
		g.adj[from][to] = struct{}{}
		g.edges++
	}
}

// NodeCount returns the number of distinct URLs encountered.
func (g *Graph) NodeCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of distinct directed links recorded.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Nodes returns every node URL in sorted order.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for n := range g.adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Links returns the outbound targets of from in sorted order, or nil when
// from is not a node.
func (g *Graph) Links(from string) []string {
	targets, ok := g.adj[from]
	if !ok {
		return nil
	}
	links := make([]string, 0, len(targets))
	for t := range targets {
		links = append(links, t)
	}
	sort.Strings(links)
	return links
}
