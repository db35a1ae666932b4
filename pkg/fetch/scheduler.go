// Package fetch runs HTTP fetches for the crawler. The Scheduler multiplexes
// many concurrent fetches as a bounded pool of goroutines joined through a
// completion channel; the caller drives it with PollOnce and never blocks on
// a single slow connection.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/kwsp/crawl/pkg/config"
	"github.com/kwsp/crawl/pkg/models"
	"github.com/kwsp/crawl/pkg/utils"
)

// Scheduler owns the in-flight fetch pool. Two ceilings are enforced here at
// submission time: total open connections (the connection semaphore) and
// open connections per host (the host semaphore pool). The pending/total
// request caps are the caller's responsibility, checked before Schedule.
type Scheduler struct {
	client *http.Client
	cfg    *config.Config
	log    *logrus.Entry

	connSem  *semaphore.Weighted
	hostSems *HostSemaphorePool
	limiter  *HostLimiter // optional, nil disables per-host delay
	robots   *RobotsGate  // optional, nil disables robots.txt checks

	results chan *models.FetchResult
	active  atomic.Int64 // scheduled and not yet returned by PollOnce
}

// NewScheduler creates a Scheduler drawing connections from client.
func NewScheduler(client *http.Client, cfg *config.Config, limiter *HostLimiter, robots *RobotsGate, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		client:   client,
		cfg:      cfg,
		log:      log,
		connSem:  semaphore.NewWeighted(int64(cfg.MaxCon)),
		hostSems: NewHostSemaphorePool(cfg.MaxConPerHost, log),
		limiter:  limiter,
		robots:   robots,
		// The admission caps keep in-flight fetches at or below max_requests,
		// so this buffer guarantees a completion send never blocks.
		results: make(chan *models.FetchResult, cfg.MaxRequests+1),
	}
}

// Schedule submits rawURL for fetching and returns immediately. It never
// fails: any problem, including a malformed URL, surfaces later as a
// terminal result carrying the error.
func (s *Scheduler) Schedule(ctx context.Context, rawURL string) {
	s.active.Add(1)
	go s.fetch(ctx, rawURL)
}

// PollOnce waits up to budget for fetches to finish and returns every result
// that became terminal during the call. It returns early as soon as at least
// one result is available, draining whatever else has already completed.
func (s *Scheduler) PollOnce(budget time.Duration) []*models.FetchResult {
	timer := time.NewTimer(budget)
	defer timer.Stop()

	var batch []*models.FetchResult
	select {
	case res := <-s.results:
		s.active.Add(-1)
		batch = append(batch, res)
	case <-timer.C:
		return nil
	}

	for {
		select {
		case res := <-s.results:
			s.active.Add(-1)
			batch = append(batch, res)
		default:
			return batch
		}
	}
}

// Active reports the number of fetches scheduled but not yet returned by
// PollOnce. Zero means the transport has no work left.
func (s *Scheduler) Active() int {
	return int(s.active.Load())
}

// fetch runs one request to its terminal state and delivers the result.
// Semaphores and the response body are released here, exactly once, no
// matter where the request fails.
func (s *Scheduler) fetch(ctx context.Context, rawURL string) {
	res := &models.FetchResult{URL: rawURL, EffectiveURL: rawURL}
	defer func() { s.results <- res }()

	fetchLog := s.log.WithField("url", rawURL)

	target, err := url.Parse(rawURL)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
		return
	}
	host := target.Hostname()

	if err := s.hostSems.Acquire(ctx, host); err != nil {
		res.Err = err
		return
	}
	defer s.hostSems.Release(host)

	if err := s.connSem.Acquire(ctx, 1); err != nil {
		res.Err = err
		return
	}
	defer s.connSem.Release(1)

	if err := s.limiter.Wait(ctx, host); err != nil {
		res.Err = err
		return
	}

	if s.robots != nil && !s.robots.Allowed(ctx, target) {
		res.Err = fmt.Errorf("%w: %s", utils.ErrRobotsDisallowed, rawURL)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
		return
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		res.Err = err
		fetchLog.Debugf("transport failure: %v", err)
		return
	}
	defer resp.Body.Close()

	res.EffectiveURL = resp.Request.URL.String()
	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxPageSizeBytes+1))
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
		return
	}
	if int64(len(body)) > s.cfg.MaxPageSizeBytes {
		fetchLog.Debugf("body truncated to %d bytes", s.cfg.MaxPageSizeBytes)
		body = body[:s.cfg.MaxPageSizeBytes]
	}
	res.Body = body

	fetchLog.WithFields(logrus.Fields{
		"status":       res.StatusCode,
		"content_type": res.ContentType,
		"bytes":        len(res.Body),
	}).Debug("Fetch complete")
}
