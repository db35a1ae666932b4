package crawler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kwsp/crawl/pkg/graph"
	"github.com/kwsp/crawl/pkg/models"
)

// Reporter writes the user-facing crawl output. Diagnostics go through the
// logger; everything here is part of the CLI contract, so the formats are
// fixed.
type Reporter struct {
	w         io.Writer
	verbosity int
}

// NewReporter creates a Reporter writing to w. Per-completion progress lines
// require verbosity >= 1, the adjacency dump verbosity >= 2.
func NewReporter(w io.Writer, verbosity int) *Reporter {
	return &Reporter{w: w, verbosity: verbosity}
}

// Start announces the crawl.
func (r *Reporter) Start(seed string) {
	fmt.Fprintf(r.w, "Starting crawler at %s . . .\n", seed)
}

// Progress prints one line per completed fetch when verbose. n is the number
// of fetches completed before this one.
func (r *Reporter) Progress(n int, res *models.FetchResult) {
	if r.verbosity < 1 {
		return
	}
	switch {
	case res.Failed():
		fmt.Fprintf(r.w, "[%d] Connection failure: %s\n", n, res.EffectiveURL)
	case res.StatusCode == http.StatusOK:
		fmt.Fprintf(r.w, "[%d] HTTP 200 (%s): %s\n", n, res.ContentType, res.EffectiveURL)
	default:
		fmt.Fprintf(r.w, "[%d] HTTP %d: %s\n", n, res.StatusCode, res.EffectiveURL)
	}
}

// Summary prints the final tally and each broken link. When nothing broke,
// the count shown is the number of distinct URLs in the graph.
func (r *Reporter) Summary(broken []models.BrokenLink, complete, nodeCount int) {
	if len(broken) > 0 {
		fmt.Fprintf(r.w, "\nSummary: %d/%d links are broken.\n", len(broken), complete)
		for _, bl := range broken {
			fmt.Fprintf(r.w, "  HTTP %d: %s\n", bl.Status, bl.URL)
		}
		return
	}
	fmt.Fprintf(r.w, "\nSummary: checked %d links, no broken links found.\n", nodeCount)
}

// Adjacency dumps the graph edges at verbosity >= 2.
func (r *Reporter) Adjacency(g *graph.Graph) {
	if r.verbosity < 2 {
		return
	}
	fmt.Fprintln(r.w)
	g.WriteAdjacency(r.w)
	fmt.Fprintln(r.w)
}

// WroteOutput confirms the graph file location.
func (r *Reporter) WroteOutput(path string) {
	fmt.Fprintf(r.w, "Wrote GraphViz output to %s\n", path)
}

// Elapsed prints the wall-clock duration of the run.
func (r *Reporter) Elapsed(d time.Duration) {
	fmt.Fprintf(r.w, "Took %.3fs\n", d.Seconds())
}
