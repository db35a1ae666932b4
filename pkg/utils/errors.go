package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
	ErrConfigValidation = errors.New("configuration validation error")
	ErrOutputWrite      = errors.New("failed to write graph output")
)

// CategorizeError maps a transport error to a category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrRequestCreation):
		return "RequestCreation"
	case errors.Is(err, ErrTooManyRedirects):
		return "TooManyRedirects"
	case errors.Is(err, ErrResponseBodyRead):
		return "BodyRead"
	case errors.Is(err, ErrRobotsDisallowed):
		return "RobotsDisallowed"
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	}

	// Check for common network error substrings before the interface check;
	// wrapped url.Error values often hide the net.Error underneath.
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "Timeout") || strings.Contains(errMsg, "deadline exceeded"):
		return "NetworkTimeout"
	case strings.Contains(errMsg, "connection refused"):
		return "ConnectionRefused"
	case strings.Contains(errMsg, "no such host"):
		return "DNSLookup"
	case strings.Contains(errMsg, "tls") || strings.Contains(errMsg, "certificate"):
		return "TLS"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "NetworkTimeout"
		}
		return "Network"
	}

	return "Unknown"
}
