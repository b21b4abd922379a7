package service

import (
	"context"
	"fmt"
	"strings"

	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/formatter"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/profile"
)

// ProfileService shows profiles and toggles follows
type ProfileService struct {
	src profile.Source
}

// NewProfileService creates a profile service backed by the API
func NewProfileService() *ProfileService {
	return &ProfileService{src: profile.APISource{}}
}

// resolveUsername defaults to the session user's own profile
func resolveUsername(username string) (string, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username != "" {
		return username, nil
	}
	me, err := currentUser()
	if err != nil {
		return "", err
	}
	return me.Username, nil
}

// Show prints a profile with its posts or reposts
func (ps *ProfileService) Show(ctx context.Context, username string, reposts bool) error {
	username, err := resolveUsername(username)
	if err != nil {
		return err
	}

	store := profile.NewStore(ps.src, username)
	if err := store.Load(ctx); err != nil {
		return err
	}
	p := store.Profile()

	posts := store.Posts()
	label := "Posts"
	if reposts {
		posts = store.Reposts()
		label = "Reposts"
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print(username, map[string]interface{}{"profile": p, strings.ToLower(label): posts})
	}

	u := p.UserData
	record := map[string]interface{}{
		"username":  "@" + u.Username,
		"name":      strings.TrimSpace(u.FirstName + " " + u.LastName),
		"followers": p.Relationships.Followers,
		"following": p.Relationships.Following,
		"posts":     p.Relationships.TotalPosts,
	}
	if u.Bio != nil && *u.Bio != "" {
		record["bio"] = *u.Bio
	}
	if u.ShowHomeLocation && u.Location != nil {
		record["location"] = *u.Location
	}
	if me, err := currentUser(); err == nil && me.UserID != u.ID {
		record["you_follow"] = p.IsFollowing
	}
	if err := output.PrintRecord("Profile", record); err != nil {
		return err
	}

	if len(posts) == 0 {
		formatter.PrintInfo("No %s yet.", strings.ToLower(label))
		return nil
	}
	rows := make([][]string, 0, len(posts))
	for _, post := range posts {
		rows = append(rows, formatter.PostRow(post))
	}
	return output.PrintList(fmt.Sprintf("%s (%d)", label, len(posts)), posts, formatter.PostColumns, rows)
}

// ToggleFollow follows or unfollows a user
func (ps *ProfileService) ToggleFollow(ctx context.Context, username string) error {
	me, err := currentUser()
	if err != nil {
		return err
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return clierrors.ValidationError("username", "is required")
	}
	if strings.EqualFold(username, me.Username) {
		return clierrors.ValidationError("username", "you cannot follow yourself")
	}

	store := profile.NewStore(ps.src, username)
	if err := store.Load(ctx); err != nil {
		return err
	}
	if err := store.ToggleFollow(ctx); err != nil {
		return err
	}

	p := store.Profile()
	if p.IsFollowing {
		formatter.PrintSuccess("Following @%s (%d followers)", username, p.Relationships.Followers)
	} else {
		formatter.PrintSuccess("Unfollowed @%s (%d followers)", username, p.Relationships.Followers)
	}
	return nil
}
