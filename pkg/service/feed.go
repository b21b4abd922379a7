package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/feed"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/handoff"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/optimistic"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
)

// FeedService shows and acts on the location feed
type FeedService struct {
	src feed.Source
}

// NewFeedService creates a feed service backed by the API
func NewFeedService() *FeedService {
	return &FeedService{src: feed.APISource{}}
}

// open builds a store for the remembered location. With pin set, a story
// posted by the previous command is taken and pinned.
func (fs *FeedService) open(pin bool) *feed.Store {
	intent, err := handoff.Load()
	if err != nil {
		logger.Warn("Failed to read handoff state", "error", err)
	}

	location := intent.FeedLocation
	if location == "" {
		location = config.GetString("feed.default_location")
	}

	var pinned *api.Post
	if pin {
		if pinned, err = handoff.ConsumeNewPost(); err != nil {
			logger.Warn("Failed to read new post", "error", err)
		}
	}

	return feed.NewStore(fs.src, feed.Options{
		Location:         location,
		Pinned:           pinned,
		RememberLocation: handoff.SetFeedLocation,
	})
}

// load fills the store for location ("" keeps the remembered one) and
// pages pages deep
func (fs *FeedService) load(ctx context.Context, store *feed.Store, location string, pages int) error {
	var err error
	if location != "" && !strings.EqualFold(strings.TrimSpace(location), store.Location()) {
		err = store.ChangeLocation(ctx, location)
	} else {
		err = store.Load(ctx)
	}
	if err != nil {
		return err
	}

	for i := 1; i < pages && store.HasMore(); i++ {
		if err := store.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Show prints the feed for location
func (fs *FeedService) Show(ctx context.Context, location string, pages int) error {
	store := fs.open(true)
	if err := fs.load(ctx, store, location, pages); err != nil {
		return err
	}

	posts := store.Posts()
	if len(posts) == 0 {
		formatter.PrintInfo("No posts in %s yet.", store.Location())
		return nil
	}

	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, formatter.PostRow(p))
	}
	title := fmt.Sprintf("%s (%d post%s)", store.Location(), len(posts), pluralize(len(posts)))
	return output.PrintList(title, posts, formatter.PostColumns, rows)
}

// React toggles a reaction on a post in the current feed. Posts outside
// the loaded page are reacted to directly.
func (fs *FeedService) React(ctx context.Context, postID int64, reaction string) error {
	store := fs.open(false)
	if err := fs.load(ctx, store, "", 1); err != nil {
		return err
	}

	err := store.React(ctx, postID, reaction)
	if errors.Is(err, optimistic.ErrNotFound) {
		summary, err := api.ReactToPost(ctx, postID, reaction)
		if err != nil {
			return err
		}
		formatter.PrintSuccess("Reactions: %s", formatter.Reactions(summary.TopReactions, summary.TotalReactions))
		return nil
	}
	if err != nil {
		return err
	}

	for _, p := range store.Posts() {
		if p.ID == postID {
			formatter.PrintSuccess("Reactions: %s", formatter.Reactions(p.TopReactions, p.TotalReactions))
		}
	}
	return nil
}

// Repost toggles a repost of a post in the current feed
func (fs *FeedService) Repost(ctx context.Context, postID int64) error {
	store := fs.open(false)
	if err := fs.load(ctx, store, "", 1); err != nil {
		return err
	}

	if err := store.Repost(ctx, postID); err != nil {
		if errors.Is(err, optimistic.ErrNotFound) {
			return fmt.Errorf("post %d is not in the current feed", postID)
		}
		return err
	}

	for _, p := range store.Posts() {
		if p.ID == postID {
			if p.HasUserReposted {
				formatter.PrintSuccess("Reposted")
			} else {
				formatter.PrintSuccess("Repost removed")
			}
		}
	}
	return nil
}
