package exporter

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vu1/internal/dial"
)

func TestExporter_Observations(t *testing.T) {
	e := New()

	e.ObserveTick()
	e.ObserveTick()
	e.ObservePush(dial.RoleCPU, 42, nil)
	e.ObservePush(dial.RoleCPU, 43, errors.New("GET /api/v0/dial/u1/set returned 500"))
	e.ObservePush(dial.RoleNetwork, 7, nil)
	e.ObserveSampleError(dial.RoleGPU)
	e.OnRetry(1, errors.New("i/o timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(e.ticks))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.pushes.WithLabelValues("CPU", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.pushes.WithLabelValues("CPU", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(e.values.WithLabelValues("CPU")), "failed push keeps the last good value")
	assert.Equal(t, 7.0, testutil.ToFloat64(e.values.WithLabelValues("NETWORK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.sampleErrors.WithLabelValues("GPU")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.retries))
}

func TestExporter_Handler(t *testing.T) {
	e := New()
	e.ObservePush(dial.RoleMemory, 64, nil)

	srv := httptest.NewServer(e.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vu1_dial_value{dial="MEMORY"} 64`)
	assert.Contains(t, string(body), `vu1_dial_pushes_total{dial="MEMORY",result="ok"} 1`)
}

func TestExporter_ServeStopsOnCancel(t *testing.T) {
	e := New()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.serve(ctx, ln, nil) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("exporter did not shut down")
	}
}

func TestExporter_ServeBadAddress(t *testing.T) {
	err := New().Serve(context.Background(), "not-an-address", nil)
	assert.Error(t, err)
}
