package models

import "strings"

// RequestState tracks the lifecycle of a scheduled fetch.
// Transitions are Queued → InFlight → {Succeeded | TransportFailed} → Retired,
// each state reached exactly once.
type RequestState int

const (
	StateQueued RequestState = iota
	StateInFlight
	StateSucceeded
	StateTransportFailed
	StateRetired
)

// String returns a human-readable state name for logging.
func (s RequestState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateInFlight:
		return "in_flight"
	case StateSucceeded:
		return "succeeded"
	case StateTransportFailed:
		return "transport_failed"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// FetchResult is the terminal outcome of a single scheduled fetch.
// When Err is non-nil the fetch failed at the transport level and the
// HTTP fields are unset.
type FetchResult struct {
	URL          string // URL as scheduled
	EffectiveURL string // final URL after redirects
	StatusCode   int
	ContentType  string
	Body         []byte
	Err          error
}

// Failed reports whether the fetch ended in a transport failure.
func (r *FetchResult) Failed() bool {
	return r.Err != nil
}

// IsHTML reports whether the response declared an HTML content type.
func (r *FetchResult) IsHTML() bool {
	return strings.Contains(r.ContentType, "text/html")
}

// State returns the terminal request state for this result.
func (r *FetchResult) State() RequestState {
	if r.Err != nil {
		return StateTransportFailed
	}
	return StateSucceeded
}

// BrokenLink records a fetch that completed with a non-200 HTTP status.
// Transport failures are deliberately not broken links.
type BrokenLink struct {
	Status int
	URL    string
}
