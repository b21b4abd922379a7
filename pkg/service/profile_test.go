package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileServer serves grace's profile. followStatus is the status the
// follow endpoints answer with.
type profileServer struct {
	mu           sync.Mutex
	calls        []string
	following    bool
	followStatus int
}

func (p *profileServer) handle(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, r.Method+" "+r.URL.RequestURI())

	switch r.URL.Path {
	case "/profile/grace":
		following := "false"
		if p.following {
			following = "true"
		}
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"is_following":`+following+`,
			"relationships":{"followers":10,"following":4,"total_posts":1},
			"user_data":{"id":9,"username":"grace","first_name":"Grace","last_name":"Hopper","bio":"Compilers and ferries","location":"Ballard","show_home_location":false}}}`)
	case "/profile/grace/posts":
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"posts":[{"id":41,"title":"Locks at noon","location":"Ballard","user":{"id":9,"username":"grace"}}]}}`)
	case "/profile/grace/reposts":
		writeJSON(w, http.StatusOK, `{"status":"success","data":{"reposts":[]}}`)
	case "/follow/9", "/unfollow/9":
		status := p.followStatus
		if status == 0 {
			status = http.StatusOK
		}
		if status != http.StatusOK {
			writeJSON(w, status, `{"status":"error","message":"Follow failed"}`)
			return
		}
		writeJSON(w, status, `{"status":"success"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *profileServer) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func TestProfileShowOtherUser(t *testing.T) {
	ps := &profileServer{following: true}
	_, buf := newTestEnv(t, ps.handle)
	logIn(t, session.User{UserID: 5, Username: "ada"})

	require.NoError(t, NewProfileService().Show(context.Background(), "@grace", false))

	assert.Equal(t, []string{
		"GET /profile/grace",
		"GET /profile/grace/posts?page=1&per_page=20",
		"GET /profile/grace/reposts?page=1&per_page=20",
	}, ps.seen())

	out := buf.String()
	assert.Contains(t, out, "username: @grace")
	assert.Contains(t, out, "bio: Compilers and ferries")
	assert.Contains(t, out, "you_follow: true")
	assert.NotContains(t, out, "location: Ballard\n")
	assert.Contains(t, out, "Posts (1)")
	assert.Contains(t, out, "Locks at noon")
}

func TestProfileShowReposts(t *testing.T) {
	ps := &profileServer{}
	_, buf := newTestEnv(t, ps.handle)
	logIn(t, session.User{UserID: 9, Username: "grace"})

	require.NoError(t, NewProfileService().Show(context.Background(), "", true))

	out := buf.String()
	assert.Contains(t, out, "username: @grace")
	assert.NotContains(t, out, "you_follow")
	assert.Contains(t, out, "No reposts yet.")
}

func TestProfileShowJSON(t *testing.T) {
	ps := &profileServer{}
	_, buf := newTestEnv(t, ps.handle)
	logIn(t, session.User{UserID: 5, Username: "ada"})
	config.Set("output.format", "json")

	require.NoError(t, NewProfileService().Show(context.Background(), "grace", false))
	assert.Contains(t, buf.String(), `"posts"`)
	assert.Contains(t, buf.String(), `"Locks at noon"`)
}

func TestProfileShowNeedsLoginForOwnProfile(t *testing.T) {
	newTestEnv(t, nil)

	err := NewProfileService().Show(context.Background(), "  ", false)
	var cliErr *clierrors.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)
}

func TestToggleFollow(t *testing.T) {
	tests := []struct {
		name      string
		following bool
		endpoint  string
		want      string
	}{
		{"follow", false, "POST /follow/9", "Following @grace (11 followers)"},
		{"unfollow", true, "POST /unfollow/9", "Unfollowed @grace (9 followers)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &profileServer{following: tt.following}
			_, buf := newTestEnv(t, ps.handle)
			logIn(t, session.User{UserID: 5, Username: "ada"})

			require.NoError(t, NewProfileService().ToggleFollow(context.Background(), "grace"))

			calls := ps.seen()
			assert.Equal(t, tt.endpoint, calls[len(calls)-1])
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestToggleFollowRejected(t *testing.T) {
	ps := &profileServer{followStatus: http.StatusInternalServerError}
	_, buf := newTestEnv(t, ps.handle)
	logIn(t, session.User{UserID: 5, Username: "ada"})

	require.Error(t, NewProfileService().ToggleFollow(context.Background(), "grace"))
	assert.NotContains(t, buf.String(), "Following")
}

func TestToggleFollowSelf(t *testing.T) {
	newTestEnv(t, nil)
	logIn(t, session.User{UserID: 5, Username: "ada"})

	for _, name := range []string{"Ada", "@ada", ""} {
		err := NewProfileService().ToggleFollow(context.Background(), name)
		var cliErr *clierrors.CLIError
		require.True(t, errors.As(err, &cliErr), name)
		assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type, name)
	}
}
