package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatPages(pages ...[]api.ChatListItem) FetchFunc[api.ChatListItem] {
	return func(_ context.Context, page, limit int) ([]api.ChatListItem, error) {
		if limit != ListPageSize {
			return nil, errors.New("unexpected page size")
		}
		if page > len(pages) {
			return nil, nil
		}
		return pages[page-1], nil
	}
}

func chat(id int64, updated string) api.ChatListItem {
	return api.ChatListItem{
		ChatID:        id,
		LastUpdated:   updated,
		LatestMessage: &api.Message{Content: "old"},
	}
}

func chatIDs(items []api.ChatListItem) []int64 {
	out := make([]int64, len(items))
	for i, c := range items {
		out[i] = c.ChatID
	}
	return out
}

func TestChatListSortsByLastUpdated(t *testing.T) {
	l := NewChatListWith(chatPages(
		[]api.ChatListItem{chat(1, "2025-03-01T10:00:00"), chat(2, "2025-03-01T12:00:00")},
		[]api.ChatListItem{chat(3, "2025-03-01T11:00:00")},
	))
	ctx := context.Background()

	require.NoError(t, l.Refresh(ctx))
	assert.Equal(t, []int64{2, 1}, chatIDs(l.Items()))

	require.NoError(t, l.LoadMore(ctx))
	assert.Equal(t, []int64{2, 3, 1}, chatIDs(l.Items()))

	require.NoError(t, l.LoadMore(ctx))
	assert.False(t, l.HasMore())
	assert.Len(t, l.Items(), 3)

	require.NoError(t, l.Refresh(ctx))
	assert.True(t, l.HasMore())
	assert.Equal(t, []int64{2, 1}, chatIDs(l.Items()))
}

func TestChatListLocalOps(t *testing.T) {
	l := NewChatListWith(chatPages([]api.ChatListItem{
		chat(1, "2025-03-01T12:00:00"), chat(2, "2025-03-01T11:00:00"), chat(3, "2025-03-01T10:00:00"),
	}))
	require.NoError(t, l.Refresh(context.Background()))

	now := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	assert.True(t, l.BumpToTop(3, "new news", now))
	items := l.Items()
	assert.Equal(t, []int64{3, 1, 2}, chatIDs(items))
	assert.Equal(t, "new news", items[0].LatestMessage.Content)
	assert.True(t, now.Equal(api.ParseTimestamp(items[0].LastUpdated)))
	assert.False(t, l.BumpToTop(42, "missing", now))

	l.RemoveLocally(1)
	assert.Equal(t, []int64{3, 2}, chatIDs(l.Items()))

	l.AddOptimistically(chat(9, ""))
	l.AddOptimistically(chat(9, ""))
	assert.Equal(t, []int64{9, 3, 2}, chatIDs(l.Items()))
}

func TestBumpDoesNotAliasItems(t *testing.T) {
	l := NewChatListWith(chatPages([]api.ChatListItem{chat(1, "2025-03-01T12:00:00")}))
	require.NoError(t, l.Refresh(context.Background()))
	before := l.Items()

	l.BumpToTop(1, "changed", time.Now())
	assert.Equal(t, "old", before[0].LatestMessage.Content)
}

func TestCombinedListKeepsKindsApart(t *testing.T) {
	l := NewCombinedListWith(func(_ context.Context, page, _ int) ([]api.CombinedChatItem, error) {
		if page > 1 {
			return nil, nil
		}
		return []api.CombinedChatItem{
			{ChatID: 5, Type: api.ChatTypeDirect, LastUpdated: "2025-03-01T10:00:00"},
			{ChatID: 5, Type: api.ChatTypeGroup, Name: "Hikers", LastUpdated: "2025-03-01T11:00:00"},
		}, nil
	})
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, api.ChatTypeGroup, l.Items()[0].Type)

	assert.True(t, l.BumpToTop(api.ChatTypeDirect, 5, 12, "hi", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, api.ChatTypeDirect, l.Items()[0].Type)
	assert.Equal(t, "hi", l.Items()[0].LatestMessage.Content)

	l.RemoveLocally(CombinedKey(api.ChatTypeGroup, 5))
	require.Len(t, l.Items(), 1)
	assert.Equal(t, api.ChatTypeDirect, l.Items()[0].Type)
}

func TestGroupListKeepsServerOrder(t *testing.T) {
	l := NewGroupListWith(func(_ context.Context, page, _ int) ([]api.Group, error) {
		switch page {
		case 1:
			return []api.Group{{ID: 3, Name: "c"}, {ID: 1, Name: "a"}}, nil
		case 2:
			return []api.Group{{ID: 2, Name: "b"}}, nil
		}
		return nil, errors.New("boom")
	})
	ctx := context.Background()

	require.NoError(t, l.Refresh(ctx))
	require.NoError(t, l.LoadMore(ctx))
	items := l.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{items[0].ID, items[1].ID, items[2].ID})

	assert.Error(t, l.LoadMore(ctx))
	assert.Len(t, l.Items(), 3)
}
