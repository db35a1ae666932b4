package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/88.0.4292.0 Safari/537.36"

// Config holds the effective settings for a single crawl run.
// Flags override values loaded from an optional YAML file.
type Config struct {
	SeedURL string `yaml:"-"` // positional CLI argument, never from file

	MaxCon         int `yaml:"max_con"`           // simultaneously open connections in total
	MaxTotal       int `yaml:"max_total"`         // requests total for the run
	MaxRequests    int `yaml:"max_requests"`      // pending (in-flight) requests
	MaxLinkPerPage int `yaml:"max_link_per_page"` // links followed per page
	MaxConPerHost  int `yaml:"max_con_per_host"`  // open connections per host

	FollowRelativeLinks bool          `yaml:"follow_relative_links"`
	RespectRobots       bool          `yaml:"respect_robots,omitempty"`
	UserAgent           string        `yaml:"user_agent,omitempty"`
	DelayPerHost        time.Duration `yaml:"delay_per_host,omitempty"`
	OutputPath          string        `yaml:"output,omitempty"`

	MinLinkLength    int           `yaml:"min_link_length,omitempty"`
	MaxPageSizeBytes int64         `yaml:"max_page_size_bytes,omitempty"`
	PollBudget       time.Duration `yaml:"poll_budget,omitempty"`

	HTTPClient HTTPClientConfig `yaml:"http_client,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client.
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`               // overall request timeout
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`        // connection dial timeout
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`     // TCP keep-alive interval
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"` // TLS handshake timeout
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`     // idle connection timeout
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`        // max total idle connections
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"`
	MaxRedirects        int           `yaml:"max_redirects,omitempty"` // redirect hops before giving up
	ForceAttemptHTTP2   *bool         `yaml:"force_attempt_http2,omitempty"`
}

// Default returns a Config populated with the stock crawl settings.
func Default() *Config {
	return &Config{
		MaxCon:              200,
		MaxTotal:            20000,
		MaxRequests:         500,
		MaxLinkPerPage:      20,
		MaxConPerHost:       6,
		FollowRelativeLinks: true,
		UserAgent:           DefaultUserAgent,
		OutputPath:          "out.gv",
		MinLinkLength:       20,
		MaxPageSizeBytes:    10 << 20, // 10 MiB
		PollBudget:          1 * time.Second,
		HTTPClient: HTTPClientConfig{
			Timeout:             5 * time.Second,
			DialerTimeout:       2 * time.Second,
			DialerKeepAlive:     30 * time.Second,
			TLSHandshakeTimeout: 2 * time.Second,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 6,
			MaxRedirects:        3,
		},
	}
}

// Load reads a YAML settings file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
