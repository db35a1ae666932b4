package fetch

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"

	"github.com/sirupsen/logrus"

	"github.com/kwsp/crawl/pkg/config"
	"github.com/kwsp/crawl/pkg/utils"
)

// NewClient builds the HTTP client shared by every fetch in a run. Timeouts
// are deliberately short: a hung connection must never stall the crawl
// beyond the overall request timeout. The cookie jar is scoped to the run.
func NewClient(cfg *config.Config, log *logrus.Entry) *http.Client {
	hc := cfg.HTTPClient

	dialer := &net.Dialer{
		Timeout:   hc.DialerTimeout,
		KeepAlive: hc.DialerKeepAlive,
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        hc.MaxIdleConns,
		MaxIdleConnsPerHost: hc.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConPerHost,
		IdleConnTimeout:     hc.IdleConnTimeout,
		TLSHandshakeTimeout: hc.TLSHandshakeTimeout,
	}
	if hc.ForceAttemptHTTP2 != nil {
		transport.ForceAttemptHTTP2 = *hc.ForceAttemptHTTP2
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		// cookiejar.New with nil options cannot fail today; degrade to no jar.
		log.Warnf("Cookie jar unavailable, continuing without cookies: %v", err)
		jar = nil
	}

	maxRedirects := hc.MaxRedirects
	client := &http.Client{
		Timeout:   hc.Timeout,
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d redirects", utils.ErrTooManyRedirects, maxRedirects)
			}
			log.Debugf("Redirecting: %s -> %s (hop %d)", via[len(via)-1].URL, req.URL, len(via))
			return nil
		},
	}
	log.WithFields(logrus.Fields{
		"timeout":       hc.Timeout,
		"dial_timeout":  hc.DialerTimeout,
		"max_redirects": maxRedirects,
	}).Debug("HTTP client initialized")
	return client
}
