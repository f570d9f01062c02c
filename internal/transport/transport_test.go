package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apierror"
)

type staticToken string

func (s staticToken) AuthorizationHeader() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(srv.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestDoAttachesAuthorization(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	})
	client.SetTokenSource(staticToken("Bearer abc123"))

	var out map[string]string
	err := client.Do(context.Background(), http.MethodGet, "/ping", nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Equal(t, "yes", out["ok"])
}

func TestDoOmitsEmptyAuthorization(t *testing.T) {
	var gotAuth string
	var hadHeader bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hadHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	})
	client.SetTokenSource(staticToken(""))

	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/ping", nil, nil, nil))
	assert.Empty(t, gotAuth)
	assert.False(t, hadHeader)
}

func TestDoNormalizesErrorResponses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "version conflict"})
	})

	err := client.Do(context.Background(), http.MethodPost, "/things", nil, map[string]string{"a": "b"}, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.KindOf(err))
	assert.Contains(t, err.Error(), "version conflict")
}

func TestDoInvokesUnauthorizedHook(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	var cleared bool
	client.SetUnauthorizedHandler(func() { cleared = true })

	err := client.Do(context.Background(), http.MethodGet, "/private", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
	assert.True(t, cleared)
}

func TestDoNetworkError(t *testing.T) {
	client, err := New("http://127.0.0.1:1", time.Second, zap.NewNop())
	require.NoError(t, err)

	err = client.Do(context.Background(), http.MethodGet, "/ping", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindNetwork, apierror.KindOf(err))
}

func TestDoTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Do(ctx, http.MethodGet, "/slow", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindTimeout, apierror.KindOf(err))
}
