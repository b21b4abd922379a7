package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string   { return e.msg }
func (e *statusErr) HTTPStatus() int { return e.code }

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "Test error", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.ErrorIs(t, err, cause)
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil).WithSuggestion("Try something else")

	assert.True(t, err.HasSuggestion())
	assert.Equal(t, "Try something else", err.Suggestion)
}

func TestUploadErrors(t *testing.T) {
	format := UploadFormatError("application/pdf")
	assert.Equal(t, ErrorTypeUploadFormat, format.Type)
	assert.Contains(t, format.Message, "application/pdf")

	size := UploadSizeError(120.5, 100)
	assert.Equal(t, ErrorTypeUploadSize, size.Type)
	assert.Equal(t, "File too large: 120.5 MB (max: 100 MB)", size.Message)
	assert.Contains(t, size.Suggestion, "100 MB")
}

func TestCategorizeError_ByStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{401, ErrorTypeAuth},
		{403, ErrorTypeForbidden},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServer},
		{502, ErrorTypeServer},
		{422, ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.code), func(t *testing.T) {
			cause := &statusErr{code: tt.code, msg: "Request failed"}
			got := CategorizeError(fmt.Errorf("failed to fetch feed: %w", cause))
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.code, got.StatusCode)
		})
	}
}

func TestCategorizeError_ByMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"refused", errors.New("dial tcp: connection refused"), ErrorTypeNetwork},
		{"timeout", errors.New("i/o timeout"), ErrorTypeTimeout},
		{"deadline", errors.New("context deadline exceeded"), ErrorTypeTimeout},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(tt.err).Type)
		})
	}
}

func TestCategorizeError_PassesThroughCLIError(t *testing.T) {
	original := ValidationError("title", "required")
	assert.Same(t, original, CategorizeError(fmt.Errorf("wrapped: %w", original)))
	assert.Nil(t, CategorizeError(nil))
}

func TestFormatError(t *testing.T) {
	out := FormatError(NetworkError("Could not connect"))
	assert.True(t, strings.HasPrefix(out, "Error (network): Could not connect"))
	assert.Contains(t, out, "Suggestion:")

	limited := FormatError(RateLimitError(30))
	assert.Contains(t, limited, "Retry in: 30 seconds")

	assert.Empty(t, FormatError(nil))
}
