package graph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteDOT serializes the graph in GraphViz DOT form: every node first, then
// every edge, both in sorted order so output is deterministic. An optional
// comment is emitted as a header line.
func (g *Graph) WriteDOT(w io.Writer, comment string) error {
	bw := bufio.NewWriter(w)
	if comment != "" {
		fmt.Fprintf(bw, "// %s\n", comment)
	}
	fmt.Fprintln(bw, "digraph crawl {")
	for _, node := range g.Nodes() {
		fmt.Fprintf(bw, "  %s;\n", dotID(node))
	}
	for _, from := range g.Nodes() {
		for _, to := range g.Links(from) {
			fmt.Fprintf(bw, "  %s -> %s;\n", dotID(from), dotID(to))
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// WriteAdjacency dumps the graph as "url -> target" lines, one per edge,
// with nodes lacking outbound links listed bare. Used for verbose output.
func (g *Graph) WriteAdjacency(w io.Writer) {
	for _, from := range g.Nodes() {
		links := g.Links(from)
		if len(links) == 0 {
			fmt.Fprintln(w, from)
			continue
		}
		for _, to := range links {
			fmt.Fprintf(w, "%s -> %s\n", from, to)
		}
	}
}

// dotID quotes a URL as a DOT string literal.
func dotID(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
