package apierror

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"bad request", 400, KindBadRequest},
		{"unauthorized", 401, KindUnauthorized},
		{"forbidden", 403, KindForbidden},
		{"not found", 404, KindNotFound},
		{"conflict", 409, KindConflict},
		{"too many requests", 429, KindTooManyRequests},
		{"server error", 500, KindServer},
		{"bad gateway", 502, KindServer},
		{"unmapped client status", 418, KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "boom", "GET /things")
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestFromStatusKeepsRawStatus(t *testing.T) {
	err := FromStatus(418, "teapot", "GET /brew")
	require.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, 418, StatusOf(err))
	assert.Contains(t, err.Error(), "teapot")
}

func TestNormalizeTimeout(t *testing.T) {
	err := Normalize(context.DeadlineExceeded, "GET /slow")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestNormalizeURLError(t *testing.T) {
	netErr := &url.Error{Op: "Get", URL: "http://api.local", Err: errors.New("connection refused")}
	err := Normalize(netErr, "GET /things")
	assert.Equal(t, KindNetwork, KindOf(err))

	timeoutErr := &url.Error{Op: "Get", URL: "http://api.local", Err: context.DeadlineExceeded}
	err = Normalize(timeoutErr, "GET /things")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestNormalizePassesThroughAPIErrors(t *testing.T) {
	orig := FromStatus(404, "gone", "GET /things/1")
	assert.Equal(t, orig, Normalize(orig, "GET /things/1"))
}

func TestConfiguration(t *testing.T) {
	err := Configuration("user service not initialized, call SetService first")
	assert.True(t, IsConfiguration(err))
	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Contains(t, err.Error(), "not initialized")
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, IsNotFound(FromStatus(404, "", "op")))
	assert.False(t, IsNotFound(FromStatus(403, "", "op")))
	assert.True(t, IsMethodNotAllowed(FromStatus(405, "", "op")))
	assert.False(t, IsMethodNotAllowed(FromStatus(404, "", "op")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
