// Package upload sends story media to object storage through a presigned
// URL obtained from the API.
package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/metrics"
)

// DefaultMaxMB is the upload size limit when none is configured
const DefaultMaxMB = 100

// State is where an Uploader is in its lifecycle
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateSuccess   State = "success"
	StateError     State = "error"
)

// Progress steps reported to listeners
const (
	ProgressStarted  = 0
	ProgressPrepared = 25
	ProgressSent     = 75
	ProgressDone     = 100
)

// ErrNoUploadKey is returned when the prepare response names no object key
var ErrNoUploadKey = errors.New("No upload key received from prepare response")

// ErrNeedsReset is returned by Upload after a failure until Reset is called
var ErrNeedsReset = errors.New("previous upload failed; reset before retrying")

var allowedTypes = map[string]bool{
	"image/jpeg":       true,
	"image/jpg":        true,
	"image/png":        true,
	"image/gif":        true,
	"image/webp":       true,
	"image/bmp":        true,
	"image/tiff":       true,
	"image/svg+xml":    true,
	"image/heic":       true,
	"image/heif":       true,
	"video/mp4":        true,
	"video/mpeg":       true,
	"video/quicktime":  true,
	"video/x-msvideo":  true,
	"video/webm":       true,
	"video/ogg":        true,
	"video/3gpp":       true,
	"video/x-ms-wmv":   true,
	"video/x-flv":      true,
	"video/x-matroska": true,
}

// IsAllowedType reports whether a MIME type may be uploaded
func IsAllowedType(contentType string) bool {
	return allowedTypes[normalizeType(contentType)]
}

func normalizeType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// File is media to upload
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the file size in bytes
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// ReadFile loads a file from disk and sniffs its MIME type
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, clierrors.FileNotFoundError(path)
		}
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

// Backend is the remote side of an upload
type Backend interface {
	Prepare(ctx context.Context, req api.PrepareUploadRequest) (*api.PrepareUploadResponse, error)
	Put(ctx context.Context, url, contentType string, data []byte) (int, error)
}

// APIBackend prepares uploads through the API and PUTs with the shared
// HTTP client
type APIBackend struct{}

func (APIBackend) Prepare(ctx context.Context, req api.PrepareUploadRequest) (*api.PrepareUploadResponse, error) {
	return api.PrepareUpload(ctx, req)
}

func (APIBackend) Put(ctx context.Context, url, contentType string, data []byte) (int, error) {
	return client.RawPut(ctx, url, contentType, data)
}

// Result is a completed upload
type Result struct {
	FileURL     string
	UploadKey   string
	ContentType string
}

// Listener is told about every state or progress change
type Listener func(state State, percent int)

// Uploader runs one upload at a time and reports progress. It is safe for
// concurrent use.
type Uploader struct {
	backend Backend
	maxMB   int

	mu        sync.Mutex
	state     State
	progress  int
	err       error
	result    *Result
	listeners []Listener
}

// NewUploader creates an idle uploader. maxMB <= 0 selects DefaultMaxMB.
func NewUploader(backend Backend, maxMB int) *Uploader {
	if maxMB <= 0 {
		maxMB = DefaultMaxMB
	}
	return &Uploader{backend: backend, maxMB: maxMB, state: StateIdle}
}

// OnProgress registers a listener called on every state or progress change
func (u *Uploader) OnProgress(fn Listener) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.listeners = append(u.listeners, fn)
}

// State returns the current state
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Progress returns the current progress percentage
func (u *Uploader) Progress() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

// Err returns the failure of the last upload
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Result returns the last successful upload, or nil
func (u *Uploader) Result() *Result {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.result == nil {
		return nil
	}
	r := *u.result
	return &r
}

// Reset returns the uploader to idle
func (u *Uploader) Reset() {
	u.set(StateIdle, ProgressStarted, func() {
		u.err = nil
		u.result = nil
	})
}

// Validate checks type and size without touching the network. It fills in
// the content type when it is empty.
func (u *Uploader) Validate(f *File) error {
	if f.ContentType == "" {
		f.ContentType = mimetype.Detect(f.Data).String()
	}
	f.ContentType = normalizeType(f.ContentType)

	if !allowedTypes[f.ContentType] {
		return clierrors.UploadFormatError(f.ContentType)
	}
	if f.Size() == 0 {
		return clierrors.ValidationError("file", "is empty")
	}
	if f.Size() > int64(u.maxMB)*1024*1024 {
		return clierrors.UploadSizeError(float64(f.Size())/(1024*1024), u.maxMB)
	}
	return nil
}

// Upload validates, prepares and PUTs f. A file that fails validation goes
// straight to the error state. On failure the uploader stays in the error
// state until Reset.
func (u *Uploader) Upload(ctx context.Context, f File) (*Result, error) {
	if err := u.ready(); err != nil {
		return nil, err
	}
	if err := u.Validate(&f); err != nil {
		return nil, u.fail(err)
	}
	if err := u.begin(); err != nil {
		return nil, err
	}

	logger.Debug("Preparing upload", "filename", f.Name, "content_type", f.ContentType, "size", f.Size())
	prepared, err := u.backend.Prepare(ctx, api.PrepareUploadRequest{
		Filename:    f.Name,
		ContentType: f.ContentType,
		FileSize:    f.Size(),
	})
	if err != nil {
		return nil, u.fail(err)
	}
	key := prepared.Key()
	if key == "" {
		return nil, u.fail(ErrNoUploadKey)
	}
	u.set(StateUploading, ProgressPrepared, nil)

	status, err := u.backend.Put(ctx, prepared.PresignedURL, f.ContentType, f.Data)
	if err != nil {
		return nil, u.fail(putError(err))
	}
	if status < 200 || status >= 300 {
		return nil, u.fail(statusError(status))
	}
	metrics.Get().UploadBytesSent.Add(float64(f.Size()))
	u.set(StateUploading, ProgressSent, nil)

	result := &Result{FileURL: prepared.FileURL, UploadKey: key, ContentType: f.ContentType}
	u.set(StateSuccess, ProgressDone, func() {
		r := *result
		u.result = &r
	})
	metrics.Get().UploadsTotal.WithLabelValues(string(StateSuccess)).Inc()
	logger.Info("Upload complete", "upload_key", key)
	return result, nil
}

func putError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "cors") {
		return clierrors.NewCLIError(clierrors.ErrorTypeNetwork, "CORS error: "+err.Error(), err)
	}
	return clierrors.NewCLIError(clierrors.ErrorTypeNetwork, "Network error: "+err.Error(), err)
}

func statusError(status int) error {
	if status == http.StatusForbidden {
		e := clierrors.NewCLIError(clierrors.ErrorTypeForbidden,
			"Access denied: The presigned URL may be invalid or expired.", nil)
		e.StatusCode = status
		return e
	}
	e := clierrors.NewCLIError(clierrors.ErrorTypeServer, fmt.Sprintf("Upload failed with status %d", status), nil)
	e.StatusCode = status
	return e
}

func (u *Uploader) fail(err error) error {
	u.set(StateError, u.Progress(), func() { u.err = err })
	metrics.Get().UploadsTotal.WithLabelValues(string(StateError)).Inc()
	logger.Warn("Upload failed", "error", err)
	return err
}

// ready rejects an upload while another runs or after an unreset failure
func (u *Uploader) ready() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.readyLocked()
}

func (u *Uploader) readyLocked() error {
	switch u.state {
	case StateError:
		return ErrNeedsReset
	case StateUploading:
		return errors.New("an upload is already in progress")
	}
	return nil
}

// begin moves to uploading unless another upload got there first
func (u *Uploader) begin() error {
	u.mu.Lock()
	if err := u.readyLocked(); err != nil {
		u.mu.Unlock()
		return err
	}
	u.state = StateUploading
	u.progress = ProgressStarted
	u.err = nil
	u.result = nil
	listeners := append([]Listener(nil), u.listeners...)
	u.mu.Unlock()

	notify(listeners, StateUploading, ProgressStarted)
	return nil
}

// set changes state under the lock, then notifies listeners outside it
func (u *Uploader) set(state State, percent int, mutate func()) {
	u.mu.Lock()
	u.state = state
	u.progress = percent
	if mutate != nil {
		mutate()
	}
	listeners := append([]Listener(nil), u.listeners...)
	u.mu.Unlock()

	notify(listeners, state, percent)
}

func notify(listeners []Listener, state State, percent int) {
	for _, fn := range listeners {
		fn(state, percent)
	}
}
