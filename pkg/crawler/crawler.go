// Package crawler drives the crawl: it owns the dedup graph, the admission
// counters, and the broken-link list, and runs the poll / handle-completions
// loop until no work remains or the run is interrupted.
package crawler

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kwsp/crawl/pkg/config"
	"github.com/kwsp/crawl/pkg/discover"
	"github.com/kwsp/crawl/pkg/fetch"
	"github.com/kwsp/crawl/pkg/graph"
	"github.com/kwsp/crawl/pkg/models"
	"github.com/kwsp/crawl/pkg/utils"
)

// minHTMLBodyBytes filters out stub pages not worth parsing for links.
const minHTMLBodyBytes = 100

// Session holds all mutable crawl state for one run. Every mutation of the
// graph, the counters, and the broken-link list happens on the goroutine
// running Run, so none of it needs locking.
type Session struct {
	cfg    *config.Config
	log    *logrus.Entry
	sched  *fetch.Scheduler
	disc   *discover.Discoverer
	report *Reporter

	graph    *graph.Graph
	pending  int // fetches scheduled and not yet terminal
	complete int // fetches that reached a terminal state
	broken   []models.BrokenLink
}

// NewSession assembles a crawl session around the given components.
func NewSession(cfg *config.Config, sched *fetch.Scheduler, disc *discover.Discoverer, report *Reporter, log *logrus.Entry) *Session {
	return &Session{
		cfg:    cfg,
		log:    log,
		sched:  sched,
		disc:   disc,
		report: report,
		graph:  graph.New(),
	}
}

// Run crawls from the seed URL until the scheduler has no active fetches, or
// until ctx is cancelled. Cancellation is a hard stop checked once per loop
// iteration: fetches still in flight at that point are abandoned, and the
// results accumulated so far remain valid.
func (s *Session) Run(ctx context.Context) error {
	// Register the seed before its fetch completes so a page linking back to
	// the seed records an edge instead of scheduling a duplicate fetch.
	s.graph.AddNode(s.cfg.SeedURL)
	s.schedule(ctx, s.cfg.SeedURL)
	s.report.Start(s.cfg.SeedURL)
	s.log.WithField("seed", s.cfg.SeedURL).Info("Crawl starting")

	for {
		if err := ctx.Err(); err != nil {
			s.log.Warnf("Interrupted (%v), abandoning %d in-flight fetches", err, s.sched.Active())
			return err
		}

		for _, res := range s.sched.PollOnce(s.cfg.PollBudget) {
			s.handleCompletion(ctx, res)
		}

		if s.sched.Active() == 0 {
			s.log.WithFields(logrus.Fields{
				"complete": s.complete,
				"nodes":    s.graph.NodeCount(),
				"edges":    s.graph.EdgeCount(),
				"broken":   len(s.broken),
			}).Info("Crawl finished")
			return nil
		}
	}
}

// handleCompletion classifies one terminal fetch and updates the counters.
// Exactly one branch runs per result; the counter updates are unconditional.
func (s *Session) handleCompletion(ctx context.Context, res *models.FetchResult) {
	switch {
	case res.Failed():
		// Transport failures are counted but deliberately not recorded as
		// broken links; only HTTP statuses qualify.
		s.report.Progress(s.complete, res)
		s.log.WithFields(logrus.Fields{
			"url":      res.URL,
			"category": utils.CategorizeError(res.Err),
		}).Debugf("Fetch failed: %v", res.Err)

	case res.StatusCode != http.StatusOK:
		s.broken = append(s.broken, models.BrokenLink{Status: res.StatusCode, URL: res.EffectiveURL})
		s.report.Progress(s.complete, res)

	default:
		s.report.Progress(s.complete, res)
		if res.IsHTML() && len(res.Body) > minHTMLBodyBytes {
			s.followLinks(ctx, res)
		}
	}

	s.complete++
	s.pending--
}

// followLinks records an edge for every candidate on the page and schedules
// a fetch for candidates not seen before. The admission caps gate only the
// scheduling of new fetches: edges are recorded even when over cap, the page
// simply yields no new work. Recording the edge in the same step as the
// existence check leaves no window for a URL to be scheduled twice.
func (s *Session) followLinks(ctx context.Context, res *models.FetchResult) {
	scheduled := 0
	for _, link := range s.disc.Discover(res.EffectiveURL, res.ContentType, res.Body, s.cfg.MaxLinkPerPage) {
		if s.graph.Has(link) {
			s.graph.AddEdge(res.EffectiveURL, link)
			continue
		}
		s.graph.AddEdge(res.EffectiveURL, link)
		if !s.admit() {
			continue
		}
		s.schedule(ctx, link)
		scheduled++
	}
	if scheduled > 0 {
		s.log.WithFields(logrus.Fields{"url": res.EffectiveURL, "scheduled": scheduled}).Debug("Queued new fetches")
	}
}

// admit reports whether another fetch fits under the pending and total caps.
func (s *Session) admit() bool {
	return s.pending < s.cfg.MaxRequests && s.complete+s.pending < s.cfg.MaxTotal
}

// schedule submits url and counts it as pending.
func (s *Session) schedule(ctx context.Context, url string) {
	s.sched.Schedule(ctx, url)
	s.pending++
}

// Graph returns the link topology recorded so far.
func (s *Session) Graph() *graph.Graph {
	return s.graph
}

// Broken returns the broken links found so far, in completion order.
func (s *Session) Broken() []models.BrokenLink {
	return s.broken
}

// Complete returns the number of fetches that reached a terminal state.
func (s *Session) Complete() int {
	return s.complete
}
