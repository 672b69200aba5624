package metrics

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer(t *testing.T) {
	reg := NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.ObserveLookup("exact")

	server := NewServer("127.0.0.1:0", reg, nil)
	require.NoError(t, server.Start())
	defer server.Shutdown(context.Background())

	assert.ErrorIs(t, server.Start(), ErrServerRunning)

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `conceptmatch_matcher_lookups_total{tier="exact"} 1`)
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	assert.NoError(t, server.Shutdown(context.Background()), "shutdown twice is a no-op")
}

func TestNewRegistry(t *testing.T) {
	count, err := testutil.GatherAndCount(NewRegistry(), "go_goroutines")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
