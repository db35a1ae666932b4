package fetch

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsGate fetches, parses, and caches robots.txt verdicts per host.
// The gate is opt-in; when consulting robots.txt fails for any reason the
// URL is allowed, so a broken or missing robots.txt never stalls a crawl.
type RobotsGate struct {
	client *http.Client
	ua     string
	cache  map[string]*robotstxt.RobotsData // host -> parsed data, nil means allow all
	mu     sync.Mutex
	log    *logrus.Entry
}

// NewRobotsGate creates a gate checking against the given user agent.
func NewRobotsGate(client *http.Client, userAgent string, log *logrus.Entry) *RobotsGate {
	return &RobotsGate{
		client: client,
		ua:     userAgent,
		cache:  make(map[string]*robotstxt.RobotsData),
		log:    log,
	}
}

// Allowed reports whether target may be fetched under its host's robots.txt.
func (rg *RobotsGate) Allowed(ctx context.Context, target *url.URL) bool {
	host := target.Hostname()

	rg.mu.Lock()
	data, cached := rg.cache[host]
	rg.mu.Unlock()

	if !cached {
		data = rg.fetch(ctx, target)
		rg.mu.Lock()
		rg.cache[host] = data
		rg.mu.Unlock()
	}

	if data == nil {
		return true
	}
	return data.TestAgent(target.RequestURI(), rg.ua)
}

// fetch retrieves and parses robots.txt for target's host. Returns nil on
// any failure, which Allowed treats as allow-all.
func (rg *RobotsGate) fetch(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	robotsURL := url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}
	hostLog := rg.log.WithField("host", target.Hostname())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		hostLog.Debugf("robots.txt request creation failed: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", rg.ua)

	resp, err := rg.client.Do(req)
	if err != nil {
		hostLog.Debugf("robots.txt fetch failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		hostLog.Debugf("robots.txt parse failed: %v", err)
		return nil
	}
	hostLog.Debug("Cached robots.txt")
	return data
}
