package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90wS\xde")

type fakeBackend struct {
	mu       sync.Mutex
	prepared []api.PrepareUploadRequest
	puts     int
	resp     *api.PrepareUploadResponse
	prepErr  error
	status   int
	putErr   error
}

func (f *fakeBackend) Prepare(_ context.Context, req api.PrepareUploadRequest) (*api.PrepareUploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepared = append(f.prepared, req)
	if f.prepErr != nil {
		return nil, f.prepErr
	}
	return f.resp, nil
}

func (f *fakeBackend) Put(context.Context, string, string, []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	return f.status, f.putErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prepared) + f.puts
}

func okBackend() *fakeBackend {
	return &fakeBackend{
		resp: &api.PrepareUploadResponse{
			PresignedURL:   "https://bucket.example/put",
			FileURL:        "https://cdn.example/stories/a.png",
			FinalUploadKey: "stories/a.png",
		},
		status: http.StatusOK,
	}
}

type step struct {
	state   State
	percent int
}

func record(u *Uploader) *[]step {
	var steps []step
	u.OnProgress(func(s State, p int) { steps = append(steps, step{s, p}) })
	return &steps
}

func TestUploadSuccess(t *testing.T) {
	b := okBackend()
	u := NewUploader(b, 0)
	steps := record(u)

	res, err := u.Upload(context.Background(), File{Name: "a.png", Data: pngBytes})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example/stories/a.png", res.FileURL)
	assert.Equal(t, "stories/a.png", res.UploadKey)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, StateSuccess, u.State())
	assert.Equal(t, ProgressDone, u.Progress())
	assert.Equal(t, res, u.Result())
	assert.Equal(t, []step{
		{StateUploading, 0},
		{StateUploading, 25},
		{StateUploading, 75},
		{StateSuccess, 100},
	}, *steps)

	require.Len(t, b.prepared, 1)
	assert.Equal(t, int64(len(pngBytes)), b.prepared[0].FileSize)
}

func TestBadMIMEFailsWithoutNetwork(t *testing.T) {
	cases := []File{
		{Name: "notes.txt", Data: []byte("just some words, nothing visual")},
		{Name: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		{Name: "a.mp3", ContentType: "audio/mpeg", Data: []byte{0xff, 0xfb}},
	}

	for _, f := range cases {
		t.Run(f.Name, func(t *testing.T) {
			b := okBackend()
			u := NewUploader(b, 0)
			steps := record(u)

			_, err := u.Upload(context.Background(), f)
			var cliErr *clierrors.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, clierrors.ErrorTypeUploadFormat, cliErr.Type)
			assert.Equal(t, StateError, u.State())
			assert.Equal(t, []step{{StateError, 0}}, *steps)
			assert.Zero(t, b.calls())
		})
	}
}

func TestTooLargeFailsWithoutNetwork(t *testing.T) {
	b := okBackend()
	u := NewUploader(b, 1)
	steps := record(u)

	data := make([]byte, 1024*1024+1)
	_, err := u.Upload(context.Background(), File{Name: "big.mp4", ContentType: "video/mp4", Data: data})

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeUploadSize, cliErr.Type)
	assert.Equal(t, []step{{StateError, 0}}, *steps, "validation never enters uploading")
	assert.Zero(t, b.calls())
}

func TestContentTypeParametersAreIgnored(t *testing.T) {
	assert.True(t, IsAllowedType("video/MP4; codecs=avc1"))
	assert.True(t, IsAllowedType("image/heic"))
	assert.False(t, IsAllowedType("text/plain; charset=utf-8"))
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		prepErr error
		resp    *api.PrepareUploadResponse
		status  int
		putErr  error
		want    string
	}{
		{
			name: "missing key",
			resp: &api.PrepareUploadResponse{PresignedURL: "https://bucket.example/put"},
			want: "No upload key received from prepare response",
		},
		{
			name:   "expired url",
			status: http.StatusForbidden,
			want:   "Access denied: The presigned URL may be invalid or expired.",
		},
		{
			name:   "server status",
			status: http.StatusInternalServerError,
			want:   "Upload failed with status 500",
		},
		{
			name:   "cors",
			putErr: errors.New("blocked by CORS policy"),
			want:   "CORS error: blocked by CORS policy",
		},
		{
			name:   "network",
			putErr: errors.New("dial tcp: connection refused"),
			want:   "Network error: dial tcp: connection refused",
		},
		{
			name:    "prepare rejected",
			prepErr: &client.RequestError{StatusCode: 401, Message: "Unauthorized"},
			want:    "Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := okBackend()
			b.prepErr = tt.prepErr
			if tt.resp != nil {
				b.resp = tt.resp
			}
			if tt.status != 0 {
				b.status = tt.status
			}
			b.putErr = tt.putErr

			u := NewUploader(b, 0)
			_, err := u.Upload(context.Background(), File{Name: "a.png", Data: pngBytes})
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, StateError, u.State())
			assert.Equal(t, err, u.Err())
			assert.Nil(t, u.Result())
		})
	}
}

func TestResetIsTheOnlyWayOutOfError(t *testing.T) {
	b := okBackend()
	b.status = http.StatusForbidden
	u := NewUploader(b, 0)
	ctx := context.Background()

	_, err := u.Upload(ctx, File{Name: "a.png", Data: pngBytes})
	require.Error(t, err)

	b.status = http.StatusOK
	_, err = u.Upload(ctx, File{Name: "a.png", Data: pngBytes})
	assert.ErrorIs(t, err, ErrNeedsReset)
	assert.Equal(t, StateError, u.State())

	u.Reset()
	assert.Equal(t, StateIdle, u.State())
	assert.NoError(t, u.Err())

	_, err = u.Upload(ctx, File{Name: "a.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, u.State())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0o600))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pic.png", f.Name)
	assert.Equal(t, int64(len(pngBytes)), f.Size())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeFileNotFound, cliErr.Type)
}

func TestAPIBackendAgainstServer(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))

	var (
		mu      sync.Mutex
		gotType string
		gotBody []byte
		srvURL  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload/prepare":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success","data":{"presigned_url":"` + srvURL + `/bucket/stories/a.png","file_url":"https://cdn.example/stories/a.png","upload_key":"stories/a.png"}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/bucket/stories/a.png":
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			gotType = r.Header.Get("Content-Type")
			gotBody = body
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client.SetClient(client.New(srv.URL, 5*time.Second))
	defer client.Reset()

	u := NewUploader(APIBackend{}, 0)
	res, err := u.Upload(context.Background(), File{Name: "a.png", Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "stories/a.png", res.UploadKey)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, pngBytes, gotBody)
}
