package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/myrjola/surprise/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// submitEndpoint stands in for the remote script that receives finished forms.
type submitEndpoint struct {
	mu       sync.Mutex
	received []url.Values
}

func newSubmitEndpoint(t *testing.T) (*submitEndpoint, string) {
	t.Helper()
	endpoint := &submitEndpoint{} //nolint:exhaustruct // zero value is ready
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 24); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		endpoint.mu.Lock()
		endpoint.received = append(endpoint.received, url.Values(r.MultipartForm.Value))
		endpoint.mu.Unlock()
		_, _ = w.Write([]byte(`{"result":"success"}`))
	}))
	t.Cleanup(srv.Close)
	return endpoint, srv.URL
}

func (e *submitEndpoint) submissions() []url.Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]url.Values(nil), e.received...)
}

// unreachableURL returns a URL where nothing is listening.
func unreachableURL(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return "http://" + addr
}

func testLookupEnv(submitURL string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		switch key {
		case "SURPRISE_ADDR":
			return "localhost:0", true
		case "SURPRISE_SQLITE_URL":
			return ":memory:", true
		case "SURPRISE_PPROF_PORT":
			return "", true
		case "SURPRISE_SUBMIT_URL":
			return submitURL, true
		case "SURPRISE_SUBMIT_TIMEOUT":
			return "5s", true
		default:
			return "", false
		}
	}
}

// startTestServer starts the application with an in-memory database. It is stopped when the test ends.
func startTestServer(t *testing.T, submitURL string) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv(submitURL), run)
	require.NoError(t, err)
	return server
}
