package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchResult_Failed(t *testing.T) {
	ok := &FetchResult{StatusCode: 200}
	bad := &FetchResult{Err: errors.New("connection refused")}

	assert.False(t, ok.Failed())
	assert.True(t, bad.Failed())
}

func TestFetchResult_NonOKStatusIsNotFailed(t *testing.T) {
	res := &FetchResult{StatusCode: 404}

	assert.False(t, res.Failed())
	assert.Equal(t, StateSucceeded, res.State())
}

func TestFetchResult_IsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/json", false},
		{"text/plain", false},
		{"", false},
	}
	for _, tt := range tests {
		res := &FetchResult{ContentType: tt.contentType}
		assert.Equal(t, tt.want, res.IsHTML(), "content type %q", tt.contentType)
	}
}

func TestFetchResult_State(t *testing.T) {
	assert.Equal(t, StateTransportFailed, (&FetchResult{Err: errors.New("timeout")}).State())
	assert.Equal(t, StateSucceeded, (&FetchResult{StatusCode: 200}).State())
}

func TestRequestState_String(t *testing.T) {
	tests := []struct {
		state RequestState
		want  string
	}{
		{StateQueued, "queued"},
		{StateInFlight, "in_flight"},
		{StateSucceeded, "succeeded"},
		{StateTransportFailed, "transport_failed"},
		{StateRetired, "retired"},
		{RequestState(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
