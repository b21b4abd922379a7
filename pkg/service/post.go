package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/client"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
)

// PostService deletes, hides and reports posts
type PostService struct{}

// NewPostService creates a new post service
func NewPostService() *PostService {
	return &PostService{}
}

// Delete removes one of the viewer's posts after confirmation
func (ps *PostService) Delete(ctx context.Context, postID int64, force bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	if !force {
		ok, err := prompter.PromptConfirm(fmt.Sprintf("Delete post %d? This cannot be undone.", postID))
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Cancelled")
			return nil
		}
	}

	if _, err := api.DeleteStory(ctx, postID); err != nil {
		if statusOf(err) == http.StatusForbidden {
			return clierrors.ForbiddenError().WithSuggestion("You can only delete your own posts.")
		}
		return err
	}

	// Drop the handoff post if it is the one deleted
	err := handoff.Update(func(in *handoff.Intent) {
		if in.NewPost != nil && in.NewPost.ID == postID {
			in.NewPost = nil
		}
	})
	if err != nil {
		logger.Warn("Failed to update handoff state", "error", err)
	}

	formatter.PrintSuccess("Post %d deleted", postID)
	return nil
}

// Hide removes a post from the viewer's feed
func (ps *PostService) Hide(ctx context.Context, postID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	if _, err := api.HideContent(ctx, postID); err != nil {
		if statusOf(err) == http.StatusConflict {
			formatter.PrintInfo("Post %d is already hidden", postID)
			return nil
		}
		return err
	}
	formatter.PrintSuccess("Post %d hidden. Undo with 'pulse post unhide %d'.", postID, postID)
	return nil
}

// Unhide shows a hidden post again
func (ps *PostService) Unhide(ctx context.Context, postID int64) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	if _, err := api.UnhideContent(ctx, postID); err != nil {
		if statusOf(err) == http.StatusNotFound {
			formatter.PrintInfo("Post %d is not hidden", postID)
			return nil
		}
		return err
	}
	formatter.PrintSuccess("Post %d is visible again", postID)
	return nil
}

// Report flags a post for moderation. An empty reason is chosen from a
// menu, and "Other" needs details.
func (ps *PostService) Report(ctx context.Context, postID int64, reason, details string, force bool) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	reason, err := resolveReportReason(reason)
	if err != nil {
		return err
	}
	details = strings.TrimSpace(details)
	if reason == api.ReportReasonOther && details == "" {
		if details, err = prompter.PromptRequired("Describe the problem: "); err != nil {
			return err
		}
	}

	if !force {
		formatter.PrintInfo("Reporting post %d for %s", postID, reason)
		ok, err := prompter.PromptConfirm("Submit report?")
		if err != nil {
			return err
		}
		if !ok {
			formatter.PrintInfo("Report cancelled")
			return nil
		}
	}

	req := api.ReportRequest{ContentID: postID, Reason: reason}
	if reason == api.ReportReasonOther {
		req.CustomReason = details
	}
	if _, err := api.ReportContent(ctx, req); err != nil {
		return err
	}

	formatter.PrintSuccess("Post %d reported. Thank you for helping keep Seattle Pulse safe.", postID)
	return nil
}

// resolveReportReason matches reason case-insensitively, or prompts when
// it is empty
func resolveReportReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		idx, err := prompter.PromptSelect("Select reason for report:", api.ReportReasons)
		if err != nil {
			return "", err
		}
		return api.ReportReasons[idx], nil
	}
	for _, r := range api.ReportReasons {
		if strings.EqualFold(r, reason) {
			return r, nil
		}
	}
	return "", clierrors.ValidationError("reason", "must be one of: "+strings.Join(api.ReportReasons, ", "))
}

// statusOf returns the HTTP status of an API error, or 0
func statusOf(err error) int {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}
