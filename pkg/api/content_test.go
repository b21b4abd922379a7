package api

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentModerationEndpoints(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"status":"success","message":"done"}`)
	})

	ctx := context.Background()
	_, err := DeleteStory(ctx, 77)
	require.NoError(t, err)
	_, err = HideContent(ctx, 78)
	require.NoError(t, err)
	ack, err := UnhideContent(ctx, 78)
	require.NoError(t, err)
	assert.Equal(t, "done", ack.Message)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"DELETE /content/delete_story/77",
		"POST /content/hide_content/78",
		"DELETE /content/unhide_content/78",
	}, seen)
}

func TestHideContentConflict(t *testing.T) {
	newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"status":"error","message":"Content already hidden"}`)
	})

	_, err := HideContent(context.Background(), 78)
	require.Error(t, err)
	var reqErr *client.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusConflict, reqErr.StatusCode)
	assert.Equal(t, "Content already hidden", reqErr.Message)
}

func TestReportContent(t *testing.T) {
	var calls atomic.Int32
	newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/content/report_content", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, float64(77), body["content_id"])
		assert.Equal(t, "Other", body["reason"])
		assert.Equal(t, "Wrong neighborhood", body["custom_reason"])
		writeJSON(w, http.StatusCreated, `{"status":"success","message":"Content reported successfully"}`)
	})

	ctx := context.Background()
	_, err := ReportContent(ctx, ReportRequest{ContentID: 77, Reason: "Boring"})
	require.Error(t, err)
	_, err = ReportContent(ctx, ReportRequest{ContentID: 77, Reason: ReportReasonOther})
	require.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())

	ack, err := ReportContent(ctx, ReportRequest{ContentID: 77, Reason: ReportReasonOther, CustomReason: "Wrong neighborhood"})
	require.NoError(t, err)
	assert.Equal(t, "Content reported successfully", ack.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsReportReason(t *testing.T) {
	assert.True(t, IsReportReason("Hate Speech"))
	assert.True(t, IsReportReason(ReportReasonOther))
	assert.False(t, IsReportReason("hate speech"))
	assert.False(t, IsReportReason(""))
}
