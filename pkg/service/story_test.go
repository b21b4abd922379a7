package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

type storyServer struct {
	mu           sync.Mutex
	url          string
	calls        []string
	form         map[string]string
	completed    api.CompleteUploadRequest
	completeFail bool
}

func (s *storyServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, r.Method+" "+r.URL.Path)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload/prepare":
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"presigned_url":"`+s.url+`/bucket/stories/market.png","file_url":"https://cdn.example/stories/market.png","final_upload_key":"stories/market.png"}}`)
	case r.Method == http.MethodPut && r.URL.Path == "/bucket/stories/market.png":
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && r.URL.Path == "/content/add_story":
		s.form = map[string]string{
			"title":         r.FormValue("title"),
			"location":      r.FormValue("location"),
			"latitude":      r.FormValue("latitude"),
			"thumbnail_url": r.FormValue("thumbnail_url"),
		}
		writeJSON(w, http.StatusCreated, `{"status":"success","data":{"post":{"id":77,"title":"Pike Place","location":"Downtown, Seattle","comments_count":3,"reactions_count":2}}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/upload/complete":
		if s.completeFail {
			writeJSON(w, http.StatusInternalServerError, `{"status":"error","message":"db down"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &s.completed)
		writeJSON(w, http.StatusOK, `{"status":"success"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newStoryFixture(t *testing.T) (*storyServer, string) {
	t.Helper()
	ss := &storyServer{}
	srv, _ := newTestEnv(t, ss.handle)
	ss.url = srv.URL
	logIn(t, session.User{UserID: 5, Username: "ada", FirstName: "Ada"})

	path := filepath.Join(t.TempDir(), "market.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0600))
	return ss, path
}

func downtown() *ConfirmedLocation {
	return &ConfirmedLocation{Value: "Downtown, Seattle", Latitude: 47.6097, Longitude: -122.3331}
}

func TestPublishUploadsPostsAndHandsOff(t *testing.T) {
	ss, path := newStoryFixture(t)

	svc := newStoryService(upload.APIBackend{}, nil)
	post, err := svc.Publish(context.Background(), Draft{Title: "  Pike Place ", MediaPath: path, Location: downtown()})
	require.NoError(t, err)

	ss.mu.Lock()
	assert.Equal(t, []string{
		"POST /upload/prepare",
		"PUT /bucket/stories/market.png",
		"POST /content/add_story",
		"POST /upload/complete",
	}, ss.calls)
	assert.Equal(t, "Pike Place", ss.form["title"])
	assert.Equal(t, "Downtown, Seattle", ss.form["location"])
	assert.Equal(t, "47.6097", ss.form["latitude"])
	assert.Equal(t, "https://cdn.example/stories/market.png", ss.form["thumbnail_url"])
	assert.Equal(t, "stories/market.png", ss.completed.UploadKey)
	assert.Equal(t, int64(77), ss.completed.ContentID)
	assert.Equal(t, "image/png", ss.completed.Metadata.ContentType)
	ss.mu.Unlock()

	assert.True(t, post.IsNewlyPosted)
	assert.Equal(t, "just now", post.TimeSincePost)
	assert.Zero(t, post.CommentsCount)
	assert.Zero(t, post.TotalReactions)
	assert.Equal(t, "ada", post.User.Username)
	assert.Equal(t, "https://cdn.example/stories/market.png", post.Thumbnail)

	in, err := handoff.Load()
	require.NoError(t, err)
	require.NotNil(t, in.NewPost)
	assert.Equal(t, int64(77), in.NewPost.ID)
	assert.True(t, in.NewPost.IsNewlyPosted)
	assert.Equal(t, "Downtown, Seattle", in.FeedLocation)
}

func TestPublishSurvivesFailedCompletion(t *testing.T) {
	ss, path := newStoryFixture(t)
	ss.completeFail = true

	post, err := newStoryService(upload.APIBackend{}, nil).
		Publish(context.Background(), Draft{Title: "Pike Place", MediaPath: path, Location: downtown()})
	require.NoError(t, err)
	assert.Equal(t, int64(77), post.ID)

	in, err := handoff.Load()
	require.NoError(t, err)
	require.NotNil(t, in.NewPost)
}

func TestPublishRejectsIncompleteDrafts(t *testing.T) {
	ss, path := newStoryFixture(t)

	tests := []struct {
		name  string
		draft Draft
	}{
		{"no title", Draft{Title: "   ", MediaPath: path, Location: downtown()}},
		{"no media", Draft{Title: "Pike Place", Location: downtown()}},
		{"missing media file", Draft{Title: "Pike Place", MediaPath: path + ".gone", Location: downtown()}},
		{"no location", Draft{Title: "Pike Place", MediaPath: path}},
		{"unconfirmed location", Draft{Title: "Pike Place", MediaPath: path, Location: &ConfirmedLocation{Value: "Downtown"}}},
	}

	svc := newStoryService(upload.APIBackend{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Publish(context.Background(), tt.draft)
			var cliErr *clierrors.CLIError
			require.True(t, errors.As(err, &cliErr), "got %v", err)
			assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
		})
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	assert.Empty(t, ss.calls)
}

func TestPublishRejectsUnsupportedMedia(t *testing.T) {
	ss, _ := newStoryFixture(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0600))

	_, err := newStoryService(upload.APIBackend{}, nil).
		Publish(context.Background(), Draft{Title: "Pike Place", MediaPath: path, Location: downtown()})
	var cliErr *clierrors.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierrors.ErrorTypeUploadFormat, cliErr.Type)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	assert.Empty(t, ss.calls)
}

func TestNewlyPostedKeepsServerFields(t *testing.T) {
	newTestEnv(t, nil)
	logIn(t, session.User{UserID: 5, Username: "ada"})

	server := api.Post{ID: 3, Title: "Server title", User: api.UserSummary{ID: 9, Username: "grace"}, ReactionsCount: 4, TopReactions: []string{"like"}}
	p := newlyPosted(server, Draft{Title: "Draft title", Location: downtown()}, "https://cdn.example/x.png")

	assert.Equal(t, "Server title", p.Title)
	assert.Equal(t, "grace", p.User.Username)
	assert.Equal(t, "Downtown, Seattle", p.Location)
	assert.Equal(t, "https://cdn.example/x.png", p.Thumbnail)
	assert.Empty(t, p.TopReactions)
	assert.NotNil(t, p.TopReactions)
}
