package cli

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vu1/internal/config"
)

// fakeVU1 serves a fixed dial listing and records the dial calls made.
type fakeVU1 struct {
	mu    sync.Mutex
	dials []map[string]any
	calls []string // "<uid> <action> <query>"
	srv   *httptest.Server
}

func newFakeVU1(t *testing.T, dials ...map[string]any) *fakeVU1 {
	t.Helper()
	f := &fakeVU1{dials: dials}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeVU1) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == "/api/v0/dial/list" {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "data": f.dials})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v0/dial/")
	uid, action, _ := strings.Cut(rest, "/")
	q := r.URL.Query()
	q.Del("key")
	f.calls = append(f.calls, uid+" "+action+" "+q.Encode())
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (f *fakeVU1) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// config returns a config pointed at the fake server.
func (f *fakeVU1) config(t *testing.T) *config.Config {
	t.Helper()
	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Server.Hostname = host
	cfg.Server.Port = p
	cfg.Server.Timeout = time.Second
	cfg.Server.Retries = 0
	cfg.Lock.File = t.TempDir() + "/monitoring.lock"
	return cfg
}

func testDial(name, uid string) map[string]any {
	return map[string]any{
		"dial_name":  name,
		"uid":        uid,
		"value":      "42",
		"backlight":  map[string]any{"red": 0, "green": 0, "blue": 0},
		"image_file": "img_" + uid,
	}
}

// closedConfig points at a port nothing listens on.
func closedConfig(t *testing.T) *config.Config {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := config.DefaultConfig()
	cfg.Server.Hostname = "127.0.0.1"
	cfg.Server.Port = port
	cfg.Server.Timeout = time.Second
	cfg.Server.Retries = 0
	cfg.Lock.File = t.TempDir() + "/monitoring.lock"
	return cfg
}
