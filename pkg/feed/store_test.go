package feed

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu        sync.Mutex
	pages     map[string][][]api.Post
	fetchErr  error
	reactErr  error
	repostErr error
	reacts    int
	reposts   []string
}

func (f *fakeSource) Fetch(_ context.Context, page int, location string) ([]api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	pages := f.pages[location]
	if page > len(pages) {
		return []api.Post{}, nil
	}
	out := make([]api.Post, len(pages[page-1]))
	copy(out, pages[page-1])
	return out, nil
}

func (f *fakeSource) React(context.Context, int64, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reacts++
	return f.reactErr
}

func (f *fakeSource) Repost(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reposts = append(f.reposts, "repost")
	return f.repostErr
}

func (f *fakeSource) UndoRepost(context.Context, int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reposts = append(f.reposts, "undo")
	return f.repostErr
}

func post(id int64, location string) api.Post {
	return api.Post{ID: id, Title: "post", Location: location, TopReactions: []string{}}
}

func ids(posts []api.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestApplyReactionTotalsStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state := ReactionState{Total: 3, Top: []string{"like", "wow"}}

	for i := 0; i < 500; i++ {
		reaction := api.Reactions[rng.Intn(len(api.Reactions))]
		next := ApplyReaction(state, reaction)

		assert.GreaterOrEqual(t, next.Total, 0)
		diff := next.Total - state.Total
		assert.True(t, diff >= -1 && diff <= 1, "total moved by %d", diff)
		assert.LessOrEqual(t, len(next.Top), 3)
		state = next
	}
}

func TestApplyReaction(t *testing.T) {
	tests := []struct {
		name     string
		state    ReactionState
		reaction string
		want     ReactionState
	}{
		{
			name:     "add",
			state:    ReactionState{Total: 2, Top: []string{"wow"}},
			reaction: "like",
			want:     ReactionState{UserReaction: "like", Total: 3, Top: []string{"like", "wow"}},
		},
		{
			name:     "remove same",
			state:    ReactionState{UserReaction: "like", Total: 3, Top: []string{"like", "wow"}},
			reaction: "like",
			want:     ReactionState{Total: 2, Top: []string{"wow"}},
		},
		{
			name:     "remove never goes negative",
			state:    ReactionState{UserReaction: "like", Total: 0, Top: []string{"like"}},
			reaction: "like",
			want:     ReactionState{Total: 0, Top: []string{}},
		},
		{
			name:     "switch keeps total",
			state:    ReactionState{UserReaction: "like", Total: 5, Top: []string{"like", "wow", "sad"}},
			reaction: "love",
			want:     ReactionState{UserReaction: "love", Total: 5, Top: []string{"love", "wow", "sad"}},
		},
		{
			name:     "switch to reaction already on top",
			state:    ReactionState{UserReaction: "like", Total: 5, Top: []string{"like", "wow"}},
			reaction: "wow",
			want:     ReactionState{UserReaction: "wow", Total: 5, Top: []string{"wow"}},
		},
		{
			name:     "top capped at three",
			state:    ReactionState{Total: 9, Top: []string{"wow", "sad", "haha"}},
			reaction: "angry",
			want:     ReactionState{UserReaction: "angry", Total: 10, Top: []string{"angry", "wow", "sad"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyReaction(tt.state, tt.reaction))
		})
	}
}

func TestStoreSwitchReaction(t *testing.T) {
	p := post(1, "Ballard")
	p.UserReaction = "like"
	p.TotalReactions = 4
	p.TopReactions = []string{"like", "haha"}
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{p}}}}

	s := NewStore(src, Options{})
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.React(context.Background(), 1, "sad"))

	got := s.Posts()[0]
	assert.Equal(t, 4, got.TotalReactions)
	assert.Equal(t, "sad", got.UserReaction)
	assert.NotContains(t, got.TopReactions, "like")
	assert.Contains(t, got.TopReactions, "sad")
}

func TestStoreReactRollsBack(t *testing.T) {
	p := post(1, "Ballard")
	p.UserReaction = "wow"
	p.TotalReactions = 2
	p.TopReactions = []string{"wow", "like"}
	src := &fakeSource{
		pages:    map[string][][]api.Post{"Seattle": {{p}}},
		reactErr: errors.New("500"),
	}

	s := NewStore(src, Options{})
	require.NoError(t, s.Load(context.Background()))
	before := s.Posts()[0]

	assert.Error(t, s.React(context.Background(), 1, "wow"))
	assert.Equal(t, before, s.Posts()[0])

	assert.Error(t, s.React(context.Background(), 1, "angry"))
	assert.Equal(t, before, s.Posts()[0])
}

func TestStoreReactRejectsUnknownReaction(t *testing.T) {
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{post(1, "Ballard")}}}}
	s := NewStore(src, Options{})
	require.NoError(t, s.Load(context.Background()))

	err := s.React(context.Background(), 1, "meh")

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
	assert.Zero(t, src.reacts)
}

func TestStoreRepostToggleAndRollback(t *testing.T) {
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{post(1, "Ballard")}}}}
	s := NewStore(src, Options{})
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.Repost(context.Background(), 1))
	assert.True(t, s.Posts()[0].HasUserReposted)

	require.NoError(t, s.Repost(context.Background(), 1))
	assert.False(t, s.Posts()[0].HasUserReposted)
	assert.Equal(t, []string{"repost", "undo"}, src.reposts)

	src.repostErr = errors.New("offline")
	assert.Error(t, s.Repost(context.Background(), 1))
	assert.False(t, s.Posts()[0].HasUserReposted)
}

func TestStoreLoadMore(t *testing.T) {
	src := &fakeSource{pages: map[string][][]api.Post{
		"Seattle": {{post(1, "A"), post(2, "B")}, {post(3, "C")}},
	}}
	s := NewStore(src, Options{})
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.LoadMore(ctx))
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Posts()))
	assert.Equal(t, 2, s.Page())

	require.NoError(t, s.LoadMore(ctx))
	assert.False(t, s.HasMore())
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Posts()))

	require.NoError(t, s.LoadMore(ctx))
	assert.Equal(t, 2, s.Page())
}

func TestPinnedPostSurvivesLocationChange(t *testing.T) {
	pinned := post(99, "Queen Anne, Seattle, WA")
	src := &fakeSource{pages: map[string][][]api.Post{
		"Seattle":    {{post(1, "Ballard"), post(99, "Queen Anne, Seattle, WA")}, {post(2, "Fremont"), post(99, "Queen Anne")}},
		"Queen Anne": {{post(3, "Queen Anne"), post(99, "Queen Anne, Seattle, WA")}},
		"Ballard":    {{post(4, "Ballard")}},
	}}

	var remembered []string
	s := NewStore(src, Options{
		Pinned: &pinned,
		RememberLocation: func(loc string) error {
			remembered = append(remembered, loc)
			return nil
		},
	})
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	assert.Equal(t, []int64{99, 1}, ids(s.Posts()))
	assert.True(t, s.Posts()[0].IsNewlyPosted)

	require.NoError(t, s.LoadMore(ctx))
	assert.Equal(t, []int64{99, 1, 2}, ids(s.Posts()))

	require.NoError(t, s.ChangeLocation(ctx, "Queen Anne"))
	assert.Equal(t, []int64{99, 3}, ids(s.Posts()))

	require.NoError(t, s.ChangeLocation(ctx, "Ballard"))
	assert.Equal(t, []int64{4}, ids(s.Posts()))

	require.NoError(t, s.ChangeLocation(ctx, "Queen Anne, Seattle"))
	assert.Equal(t, int64(99), s.Posts()[0].ID)

	assert.Equal(t, []string{"Queen Anne", "Ballard", "Queen Anne, Seattle"}, remembered)
}

func TestChangeLocationSameIsNoop(t *testing.T) {
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{post(1, "A")}}}}
	called := false
	s := NewStore(src, Options{RememberLocation: func(string) error { called = true; return nil }})
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.ChangeLocation(context.Background(), "Seattle"))
	assert.False(t, called)
}

func TestChangeLocationErrorKeepsPrevious(t *testing.T) {
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{post(1, "A"), post(2, "B")}}}}
	s := NewStore(src, Options{})
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	src.fetchErr = errors.New("offline")
	assert.Error(t, s.ChangeLocation(ctx, "Fremont"))
	assert.Equal(t, []int64{1, 2}, ids(s.Posts()))
	assert.Equal(t, "Fremont", s.Location())
}

func TestChangeLocationErrorWithEmptyListShowsPinned(t *testing.T) {
	pinned := post(99, "Fremont")
	src := &fakeSource{fetchErr: errors.New("offline")}
	s := NewStore(src, Options{Pinned: &pinned})
	ctx := context.Background()

	assert.Error(t, s.Load(ctx))
	assert.Error(t, s.ChangeLocation(ctx, "Fremont"))
	assert.Equal(t, []int64{99}, ids(s.Posts()))

	other := NewStore(src, Options{Pinned: &pinned})
	assert.Error(t, other.Load(ctx))
	assert.Error(t, other.ChangeLocation(ctx, "Ballard"))
	assert.Empty(t, other.Posts())
}

func TestReactOnPinnedPost(t *testing.T) {
	pinned := post(99, "Fremont")
	src := &fakeSource{pages: map[string][][]api.Post{"Seattle": {{post(1, "A")}}, "Fremont": {{post(2, "Fremont")}}}}
	s := NewStore(src, Options{Pinned: &pinned})
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	require.NoError(t, s.React(ctx, 99, "love"))
	require.NoError(t, s.ChangeLocation(ctx, "Fremont"))

	got := s.Posts()[0]
	assert.Equal(t, int64(99), got.ID)
	assert.Equal(t, "love", got.UserReaction)
	assert.Equal(t, 1, got.TotalReactions)
}

func TestLocationMatches(t *testing.T) {
	tests := []struct {
		post, selected string
		want           bool
	}{
		{"Queen Anne", "Queen Anne", true},
		{"queen anne", "Queen Anne ", true},
		{"Queen Anne, Seattle, WA", "Queen Anne", true},
		{"Queen Anne", "Queen Anne, Seattle", true},
		{"Capitol Hill", "Queen Anne", false},
		{"Ballard", "Fremont, Seattle", false},
		{"", "Queen Anne", false},
		{"Queen Anne", "", false},
		{"Queen Anne", ", Seattle", false},
		{", Seattle", "Ballard, Seattle", false},
	}

	for _, tt := range tests {
		t.Run(tt.post+"|"+tt.selected, func(t *testing.T) {
			assert.Equal(t, tt.want, LocationMatches(tt.post, tt.selected))
		})
	}
}
