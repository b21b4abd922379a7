package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"unicode/utf8"

	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

const maxErrorBodyRunes = 200

// RequestError is returned for any non-2xx API response
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

// HTTPStatus exposes the status code to error categorization
func (e *RequestError) HTTPStatus() int {
	return e.StatusCode
}

// FormFile is a file part of a multipart body
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Form is a multipart/form-data body. It is sent as-is, never JSON-encoded.
type Form struct {
	Fields map[string]string
	Files  []FormFile
}

// encode writes the form and returns the body with its content type
func (f *Form) encode() ([]byte, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range f.Fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	for _, file := range f.Files {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.Field, file.FileName),
		}
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header["Content-Type"] = []string{contentType}

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("failed to copy file: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close writer: %w", err)
	}
	return body.Bytes(), writer.FormDataContentType(), nil
}

// Request issues a single credentialed API call and decodes the JSON
// response into result (which may be nil). A *Form body is sent as
// multipart/form-data; any other non-nil body is JSON-encoded.
func Request(ctx context.Context, method, endpoint string, body, result interface{}) error {
	req := GetClient().R().
		SetContext(ctx).
		SetHeader("Accept", "application/json")

	switch b := body.(type) {
	case nil:
	case *Form:
		data, contentType, err := b.encode()
		if err != nil {
			return err
		}
		req.SetHeader("Content-Type", contentType).SetBody(data)
	default:
		req.SetHeader("Content-Type", "application/json").SetBody(b)
	}

	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		logger.Debug("API error", "status", resp.StatusCode(), "body", truncate(resp.String(), 500))
		return newRequestError(resp.StatusCode(), resp.Body())
	}

	contentType := resp.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		if contentType == "" {
			contentType = "unknown content type"
		}
		logger.Debug("Unexpected content type", "content_type", contentType, "body", truncate(resp.String(), 500))
		return fmt.Errorf("Expected JSON but got %s", contentType)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get issues a GET request
func Get(ctx context.Context, endpoint string, result interface{}) error {
	return Request(ctx, http.MethodGet, endpoint, nil, result)
}

// Post issues a POST request
func Post(ctx context.Context, endpoint string, body, result interface{}) error {
	return Request(ctx, http.MethodPost, endpoint, body, result)
}

// Put issues a PUT request
func Put(ctx context.Context, endpoint string, body, result interface{}) error {
	return Request(ctx, http.MethodPut, endpoint, body, result)
}

// Patch issues a PATCH request
func Patch(ctx context.Context, endpoint string, body, result interface{}) error {
	return Request(ctx, http.MethodPatch, endpoint, body, result)
}

// Delete issues a DELETE request; body may be nil
func Delete(ctx context.Context, endpoint string, body, result interface{}) error {
	return Request(ctx, http.MethodDelete, endpoint, body, result)
}

// RawPut uploads bytes to an absolute URL outside the JSON contract and
// returns the response status code.
func RawPut(ctx context.Context, url, contentType string, data []byte) (int, error) {
	resp, err := GetClient().R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(url)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

func newRequestError(status int, body []byte) *RequestError {
	message := fmt.Sprintf("Request failed with status %d", status)

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		if obj, ok := payload.(map[string]interface{}); ok {
			if msg, ok := obj["message"].(string); ok && msg != "" {
				message = msg
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		message = truncate(text, maxErrorBodyRunes)
	}

	return &RequestError{StatusCode: status, Message: message}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
