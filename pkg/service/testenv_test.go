package service

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/stretchr/testify/require"
)

// newTestEnv points config, the API client and output at temporary
// fixtures and returns the captured output
func newTestEnv(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client.SetClient(client.New(srv.URL, 5*time.Second))
	t.Cleanup(client.Reset)

	buf := &bytes.Buffer{}
	output.SetWriter(buf)
	t.Cleanup(func() { output.SetWriter(nil) })
	return srv, buf
}

// typeInput feeds lines to the prompts
func typeInput(t *testing.T, lines ...string) {
	t.Helper()
	prompter.SetInput(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	t.Cleanup(func() { prompter.SetInput(nil) })
}

func logIn(t *testing.T, u session.User) {
	t.Helper()
	require.NoError(t, session.Save(&session.Session{User: u, SavedAt: time.Now()}))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
