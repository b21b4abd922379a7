package api

import (
	"context"
	"fmt"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
)

// ReportReasonOther needs a custom reason
const ReportReasonOther = "Other"

// ReportReasons are the reasons the server accepts for a report
var ReportReasons = []string{
	"Spam",
	"Harassment",
	"Violence",
	"Inappropriate Language",
	"Hate Speech",
	"Sexual Content",
	"False Information",
	ReportReasonOther,
}

// IsReportReason reports whether reason is one of ReportReasons
func IsReportReason(reason string) bool {
	for _, r := range ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// ReportRequest is the body of POST /content/report_content
type ReportRequest struct {
	ContentID    int64  `json:"content_id" validate:"gt=0"`
	Reason       string `json:"reason" validate:"required"`
	CustomReason string `json:"custom_reason,omitempty" validate:"required_if=Reason Other"`
}

// DeleteStory deletes one of the viewer's posts
func DeleteStory(ctx context.Context, contentID int64) (*Ack, error) {
	logger.Debug("Deleting story", "content_id", contentID)

	var resp Ack
	if err := client.Delete(ctx, fmt.Sprintf("/content/delete_story/%d", contentID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}
	return &resp, nil
}

// HideContent hides a post from the viewer's feed
func HideContent(ctx context.Context, contentID int64) (*Ack, error) {
	logger.Debug("Hiding content", "content_id", contentID)

	var resp Ack
	if err := client.Post(ctx, fmt.Sprintf("/content/hide_content/%d", contentID), map[string]string{}, &resp); err != nil {
		return nil, fmt.Errorf("failed to hide post: %w", err)
	}
	return &resp, nil
}

// UnhideContent shows a hidden post again
func UnhideContent(ctx context.Context, contentID int64) (*Ack, error) {
	logger.Debug("Unhiding content", "content_id", contentID)

	var resp Ack
	if err := client.Delete(ctx, fmt.Sprintf("/content/unhide_content/%d", contentID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to unhide post: %w", err)
	}
	return &resp, nil
}

// ReportContent flags a post for moderation
func ReportContent(ctx context.Context, req ReportRequest) (*Ack, error) {
	logger.Debug("Reporting content", "content_id", req.ContentID, "reason", req.Reason)

	if !IsReportReason(req.Reason) {
		return nil, fmt.Errorf("invalid report reason %q", req.Reason)
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}

	var resp Ack
	if err := client.Post(ctx, "/content/report_content", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to report post: %w", err)
	}
	return &resp, nil
}
