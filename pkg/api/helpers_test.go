package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/stretchr/testify/require"
)

// newTestAPI points the process client at an httptest server
func newTestAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client.SetClient(client.New(srv.URL, 5*time.Second))
	t.Cleanup(client.Reset)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
