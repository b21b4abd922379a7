package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/prompter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/upload"
)

// ConfirmedLocation is a neighborhood picked from search results
type ConfirmedLocation struct {
	Value     string  `validate:"required"`
	Latitude  float64 `validate:"required,latitude"`
	Longitude float64 `validate:"required,longitude"`
}

// Draft is a story before it is posted
type Draft struct {
	Title     string             `validate:"required"`
	Body      string
	MediaPath string             `validate:"required,file"`
	Location  *ConfirmedLocation `validate:"required"`
}

// StoryService posts stories
type StoryService struct {
	uploader  *upload.Uploader
	locations *LocationService
}

// NewStoryService creates a story service that uploads through the API
func NewStoryService() *StoryService {
	return newStoryService(upload.APIBackend{}, NewLocationService())
}

func newStoryService(backend upload.Backend, locations *LocationService) *StoryService {
	u := upload.NewUploader(backend, config.GetInt("upload.max_mb"))
	u.OnProgress(func(state upload.State, percent int) {
		logger.Debug("Upload progress", "state", state, "percent", percent)
	})
	return &StoryService{uploader: u, locations: locations}
}

// Publish uploads the media, creates the story and completes the upload.
// The new post is handed to the next feed command.
func (ss *StoryService) Publish(ctx context.Context, d Draft) (*api.Post, error) {
	d.Title = strings.TrimSpace(d.Title)
	if err := validate.Struct(d); err != nil {
		return nil, validationError(err)
	}

	file, err := upload.ReadFile(d.MediaPath)
	if err != nil {
		return nil, err
	}

	ss.uploader.Reset()
	res, err := ss.uploader.Upload(ctx, file)
	if err != nil {
		return nil, err
	}

	post, err := api.AddStory(ctx, api.StoryRequest{
		Title:        d.Title,
		Body:         d.Body,
		Location:     d.Location.Value,
		Latitude:     d.Location.Latitude,
		Longitude:    d.Location.Longitude,
		ThumbnailURL: res.FileURL,
	})
	if err != nil {
		return nil, err
	}

	if err := api.CompleteUpload(ctx, res.UploadKey, post.ID, res.ContentType); err != nil {
		logger.Warn("Failed to complete upload", "upload_key", res.UploadKey, "content_id", post.ID, "error", err)
	}

	fresh := newlyPosted(*post, d, res.FileURL)
	err = handoff.Update(func(in *handoff.Intent) {
		in.NewPost = &fresh
		in.FeedLocation = fresh.Location
	})
	if err != nil {
		logger.Warn("Failed to hand off new post", "error", err)
	}
	return &fresh, nil
}

// newlyPosted fills the fields the feed shows for a story the server has
// not listed yet
func newlyPosted(p api.Post, d Draft, thumbnail string) api.Post {
	if p.Title == "" {
		p.Title = d.Title
	}
	if p.Body == "" {
		p.Body = d.Body
	}
	if p.Location == "" {
		p.Location = d.Location.Value
	}
	if p.Thumbnail == "" {
		p.Thumbnail = thumbnail
	}
	if p.User.ID == 0 {
		u := session.Current()
		p.User = api.UserSummary{
			ID:                u.UserID,
			Username:          u.Username,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			ProfilePictureURL: u.ProfilePictureURL,
		}
	}
	p.TimeSincePost = "just now"
	p.CommentsCount = 0
	p.ReactionsCount = 0
	p.TotalReactions = 0
	p.TopReactions = []string{}
	p.UserReaction = ""
	p.UserHasReacted = false
	p.HasUserReposted = false
	p.IsNewlyPosted = true
	return p
}

// Create walks through a new story interactively. detectAt, when set,
// proposes the neighborhood nearest to those coordinates first.
func (ss *StoryService) Create(ctx context.Context, detectAt *[2]float64) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	title, err := prompter.PromptRequired("Title: ")
	if err != nil {
		return err
	}
	body, err := prompter.PromptMultilineString("Body", 50)
	if err != nil {
		return err
	}
	media, err := prompter.PromptRequired("Photo or video path: ")
	if err != nil {
		return err
	}

	loc, err := ss.chooseLocation(ctx, detectAt)
	if err != nil {
		return err
	}

	formatter.PrintInfo("Posting to %s...", loc.Value)
	post, err := ss.Publish(ctx, Draft{Title: title, Body: body, MediaPath: media, Location: loc})
	if err != nil {
		return err
	}

	formatter.PrintSuccess("Story %d posted. Run 'pulse feed' to see it on top.", post.ID)
	return nil
}

// Post publishes a story non-interactively. The location text must match a
// neighborhood exactly.
func (ss *StoryService) Post(ctx context.Context, title, body, mediaPath, where string) error {
	if _, err := currentUser(); err != nil {
		return err
	}

	picked, err := ss.locations.Resolve(ctx, where)
	if err != nil {
		return err
	}

	post, err := ss.Publish(ctx, Draft{Title: title, Body: body, MediaPath: mediaPath, Location: confirmed(picked)})
	if err != nil {
		return err
	}
	formatter.PrintSuccess("Story %d posted to %s", post.ID, post.Location)
	return nil
}

func (ss *StoryService) chooseLocation(ctx context.Context, detectAt *[2]float64) (*ConfirmedLocation, error) {
	if detectAt != nil {
		d, err := ss.locations.detect(ctx, detectAt[0], detectAt[1])
		if err != nil {
			formatter.PrintWarning("%v", err)
		} else {
			ok, err := prompter.PromptConfirm(fmt.Sprintf("Post to %s (%.1f km away)?", d.Suggestion.DropdownValue, d.DistanceKm))
			if err != nil {
				return nil, err
			}
			if ok {
				return confirmed(d.Suggestion), nil
			}
		}
	}

	picked, err := ss.locations.Pick(ctx)
	if err != nil {
		return nil, err
	}
	return confirmed(picked), nil
}

func confirmed(s api.LocationSuggestion) *ConfirmedLocation {
	return &ConfirmedLocation{
		Value:     s.DropdownValue,
		Latitude:  float64(s.Latitude),
		Longitude: float64(s.Longitude),
	}
}
