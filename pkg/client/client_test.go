package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	SetClient(New(srv.URL, 5*time.Second))
	t.Cleanup(Reset)
	return srv
}

// TestGetClientSingleton validates that GetClient returns same instance
func TestGetClientSingleton(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	Reset()
	defer Reset()

	assert.Same(t, GetClient(), GetClient())
	assert.Equal(t, "http://localhost:5050/api/v1", GetClient().BaseURL)
}

func TestRequestSendsJSONAndDecodes(t *testing.T) {
	newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "/reaction/user_content/7", r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"reaction_type":"love"}`, string(body))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"success","data":{"total_reactions":3}}`))
	})

	var out struct {
		Status string `json:"status"`
		Data   struct {
			TotalReactions int `json:"total_reactions"`
		} `json:"data"`
	}
	err := Post(context.Background(), "reaction/user_content/7", map[string]string{"reaction_type": "love"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, 3, out.Data.TotalReactions)
}

func TestRequestErrorMessages(t *testing.T) {
	longBody := strings.Repeat("x", 300)

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        string
	}{
		{"json message", 400, "application/json", `{"message":"Title is required"}`, "Title is required"},
		{"json without message", 500, "application/json", `{"error":"boom"}`, "Request failed with status 500"},
		{"json string", 500, "application/json", `"oops"`, "Request failed with status 500"},
		{"json array", 400, "application/json", `[1]`, "Request failed with status 400"},
		{"json null", 503, "application/json", `null`, "Request failed with status 503"},
		{"non-string message", 422, "application/json", `{"message":{"title":"missing"}}`, "Request failed with status 422"},
		{"plain text truncated", 502, "text/html", longBody, strings.Repeat("x", 200)},
		{"empty body", 404, "text/plain", "", "Request failed with status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := Get(context.Background(), "/content/combined_feed", nil)
			require.Error(t, err)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.status, reqErr.HTTPStatus())
			assert.Equal(t, tt.want, reqErr.Message)
		})
	}
}

func TestRequestRejectsNonJSONSuccess(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
	}{
		{"html", "text/html", "Expected JSON but got text/html"},
		{"missing", "", "Expected JSON but got unknown content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType == "" {
					w.Header()["Content-Type"] = nil
				} else {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(http.StatusOK)
			})

			err := Get(context.Background(), "/auth/is_authenticated", nil)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestRequestSendsFormUntouched(t *testing.T) {
	newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Sunset", r.FormValue("title"))

		file, header, err := r.FormFile("thumbnail")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	form := &Form{
		Fields: map[string]string{"title": "Sunset"},
		Files: []FormFile{{
			Field:       "thumbnail",
			FileName:    "cover.png",
			ContentType: "image/png",
			Reader:      strings.NewReader("png-bytes"),
		}},
	}
	require.NoError(t, Post(context.Background(), "/content/add_story", form, nil))
}

func TestDeleteCarriesBody(t *testing.T) {
	newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"delete_for_all":true}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	err := Delete(context.Background(), "/chat/direct-chat/delete-message/3", map[string]bool{"delete_for_all": true}, nil)
	assert.NoError(t, err)
}

func TestRawPut(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "video/mp4", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "raw", string(body))
		w.WriteHeader(http.StatusForbidden)
	})

	status, err := RawPut(context.Background(), srv.URL+"/bucket/key?sig=1", "video/mp4", []byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCookiesPersistIntoSession(t *testing.T) {
	newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "fresh", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, SaveSession(session.User{UserID: 9, Username: "rainier"}))
	require.NoError(t, Get(context.Background(), "/auth/is_authenticated", nil))

	saved, err := session.Load()
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Len(t, saved.Cookies, 1)
	assert.Equal(t, "fresh", saved.Cookies[0].Value)
	assert.True(t, saved.IsAuthenticated())

	require.NoError(t, ClearSession())
	saved, err = session.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}
