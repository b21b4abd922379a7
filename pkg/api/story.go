package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

var validate = validator.New()

// PrepareUploadRequest asks the server for a presigned upload slot
type PrepareUploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"gt=0"`
}

// PrepareUploadResponse carries the presigned URL and the upload key
type PrepareUploadResponse struct {
	PresignedURL   string `json:"presigned_url"`
	FileURL        string `json:"file_url"`
	FinalUploadKey string `json:"final_upload_key"`
	UploadKey      string `json:"upload_key"`
}

// Key returns the final upload key, falling back to the plain key
func (r *PrepareUploadResponse) Key() string {
	if r.FinalUploadKey != "" {
		return r.FinalUploadKey
	}
	return r.UploadKey
}

// PrepareUpload requests a presigned URL for a direct object-store upload
func PrepareUpload(ctx context.Context, req PrepareUploadRequest) (*PrepareUploadResponse, error) {
	logger.Debug("Preparing upload", "filename", req.Filename, "content_type", req.ContentType, "size", req.FileSize)

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid upload request: %w", err)
	}

	// The server has answered both with and without the data wrapper
	var resp struct {
		PrepareUploadResponse
		Data *PrepareUploadResponse `json:"data"`
	}
	if err := client.Post(ctx, "/upload/prepare", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to prepare upload: %w", err)
	}

	if resp.Data != nil && resp.Data.PresignedURL != "" {
		return resp.Data, nil
	}
	return &resp.PrepareUploadResponse, nil
}

// StoryRequest is the multipart body of POST /content/add_story
type StoryRequest struct {
	Title        string  `validate:"required"`
	Body         string
	Location     string  `validate:"required"`
	Latitude     float64 `validate:"latitude"`
	Longitude    float64 `validate:"longitude"`
	ThumbnailURL string
}

func (r StoryRequest) form() *client.Form {
	fields := map[string]string{
		"title":     r.Title,
		"body":      r.Body,
		"location":  r.Location,
		"latitude":  strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(r.Longitude, 'f', -1, 64),
	}
	if r.ThumbnailURL != "" {
		fields["thumbnail_url"] = r.ThumbnailURL
	}
	return &client.Form{Fields: fields}
}

// AddStory creates a story post and returns it
func AddStory(ctx context.Context, req StoryRequest) (*Post, error) {
	logger.Debug("Adding story", "title", req.Title, "location", req.Location)

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid story: %w", err)
	}

	var resp envelope[struct {
		Post Post `json:"post"`
	}]
	if err := client.Post(ctx, "/content/add_story", req.form(), &resp); err != nil {
		return nil, fmt.Errorf("failed to add story: %w", err)
	}

	if resp.Data.Post.ID == 0 {
		return nil, fmt.Errorf("failed to add story: no post in response")
	}
	return &resp.Data.Post, nil
}

// UploadMetadata is attached to an upload when it completes
type UploadMetadata struct {
	ContentType string `json:"content_type"`
}

// CompleteUploadRequest links an upload to the content it belongs to
type CompleteUploadRequest struct {
	UploadKey string         `json:"upload_key"`
	ContentID int64          `json:"content_id"`
	Metadata  UploadMetadata `json:"metadata"`
}

// CompleteUpload finalizes an upload so the server can moderate it
func CompleteUpload(ctx context.Context, uploadKey string, contentID int64, contentType string) error {
	logger.Debug("Completing upload", "upload_key", uploadKey, "content_id", contentID)

	req := CompleteUploadRequest{
		UploadKey: uploadKey,
		ContentID: contentID,
		Metadata:  UploadMetadata{ContentType: contentType},
	}
	if err := client.Post(ctx, "/upload/complete", req, nil); err != nil {
		return fmt.Errorf("failed to complete upload: %w", err)
	}
	return nil
}
