package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kwsp/crawl/pkg/utils"
)

// Validate checks the configuration, repairing recoverable problems with a
// warning and returning an error for settings the run cannot proceed with.
func (c *Config) Validate() (warnings []string, err error) {
	def := Default()

	if c.MaxCon < 1 {
		return warnings, fmt.Errorf("%w: max_con must be > 0, got %d", utils.ErrConfigValidation, c.MaxCon)
	}
	if c.MaxTotal < 1 {
		return warnings, fmt.Errorf("%w: max_total must be > 0, got %d", utils.ErrConfigValidation, c.MaxTotal)
	}
	if c.MaxRequests < 1 {
		return warnings, fmt.Errorf("%w: max_requests must be > 0, got %d", utils.ErrConfigValidation, c.MaxRequests)
	}
	if c.MaxLinkPerPage < 0 {
		return warnings, fmt.Errorf("%w: max_link_per_page must be >= 0, got %d", utils.ErrConfigValidation, c.MaxLinkPerPage)
	}

	if c.MaxRequests > c.MaxTotal {
		warnings = append(warnings, fmt.Sprintf("max_requests (%d) exceeds max_total (%d); max_total will dominate", c.MaxRequests, c.MaxTotal))
	}
	if c.MaxConPerHost < 1 {
		warnings = append(warnings, fmt.Sprintf("max_con_per_host should be > 0, using default %d", def.MaxConPerHost))
		c.MaxConPerHost = def.MaxConPerHost
	}
	if c.UserAgent == "" {
		warnings = append(warnings, "user_agent is empty, using default")
		c.UserAgent = def.UserAgent
	}
	if c.OutputPath == "" {
		warnings = append(warnings, fmt.Sprintf("output path is empty, using default %q", def.OutputPath))
		c.OutputPath = def.OutputPath
	}
	if c.MinLinkLength < 0 {
		warnings = append(warnings, "min_link_length should be >= 0, using default")
		c.MinLinkLength = def.MinLinkLength
	}
	if c.MaxPageSizeBytes <= 0 {
		warnings = append(warnings, fmt.Sprintf("max_page_size_bytes should be > 0, using default %d", def.MaxPageSizeBytes))
		c.MaxPageSizeBytes = def.MaxPageSizeBytes
	}
	if c.PollBudget <= 0 {
		warnings = append(warnings, fmt.Sprintf("poll_budget should be > 0, using default %v", def.PollBudget))
		c.PollBudget = def.PollBudget
	}
	if c.DelayPerHost < 0 {
		warnings = append(warnings, "delay_per_host should be >= 0, disabling delay")
		c.DelayPerHost = 0
	}
	warnings = append(warnings, c.HTTPClient.applyDefaults(def.HTTPClient)...)

	if c.SeedURL != "" {
		if err := validateSeedURL(c.SeedURL); err != nil {
			return warnings, err
		}
	}

	return warnings, nil
}

// validateSeedURL rejects seed URLs the crawler could never fetch.
func validateSeedURL(seed string) error {
	parsed, err := url.ParseRequestURI(seed)
	if err != nil {
		return fmt.Errorf("%w: invalid seed URL %q: %v", utils.ErrConfigValidation, seed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: seed URL scheme must be http or https, got %q", utils.ErrConfigValidation, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("%w: seed URL %q missing host", utils.ErrConfigValidation, seed)
	}
	return nil
}

// applyDefaults fills zero-valued client settings from the defaults.
func (hc *HTTPClientConfig) applyDefaults(def HTTPClientConfig) (warnings []string) {
	fixes := []struct {
		name string
		val  *time.Duration
		def  time.Duration
	}{
		{"timeout", &hc.Timeout, def.Timeout},
		{"dialer_timeout", &hc.DialerTimeout, def.DialerTimeout},
		{"dialer_keep_alive", &hc.DialerKeepAlive, def.DialerKeepAlive},
		{"tls_handshake_timeout", &hc.TLSHandshakeTimeout, def.TLSHandshakeTimeout},
		{"idle_conn_timeout", &hc.IdleConnTimeout, def.IdleConnTimeout},
	}
	var fixed []string
	for _, f := range fixes {
		if *f.val <= 0 {
			*f.val = f.def
			fixed = append(fixed, f.name)
		}
	}
	if hc.MaxIdleConns <= 0 {
		hc.MaxIdleConns = def.MaxIdleConns
		fixed = append(fixed, "max_idle_conns")
	}
	if hc.MaxIdleConnsPerHost <= 0 {
		hc.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
		fixed = append(fixed, "max_idle_conns_per_host")
	}
	if hc.MaxRedirects <= 0 {
		hc.MaxRedirects = def.MaxRedirects
		fixed = append(fixed, "max_redirects")
	}
	if len(fixed) > 0 {
		warnings = append(warnings, fmt.Sprintf("http_client: using defaults for %s", strings.Join(fixed, ", ")))
	}
	return warnings
}
