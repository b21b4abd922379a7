// Package messaging holds chat lists and conversations for direct and
// group chats, fed by the REST API and live realtime pushes.
package messaging

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
)

// ListPageSize is the page size of every chat list
const ListPageSize = 10

// FetchFunc loads one page of a list
type FetchFunc[T any] func(ctx context.Context, page, limit int) ([]T, error)

// List is an independently paginated list. Page one replaces the items,
// later pages append and an empty page ends pagination.
type List[T any] struct {
	fetch FetchFunc[T]
	id    func(T) int64
	// less orders items; nil keeps server order
	less func(a, b T) bool

	mu      sync.Mutex
	items   []T
	page    int
	hasMore bool
	loading bool
}

func newList[T any](fetch FetchFunc[T], id func(T) int64, less func(a, b T) bool) *List[T] {
	return &List[T]{fetch: fetch, id: id, less: less, page: 1, hasMore: true}
}

// Items returns a copy of the list
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// HasMore reports whether another page may exist
func (l *List[T]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Refresh reloads page one
func (l *List[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.hasMore = true
	l.mu.Unlock()
	return l.load(ctx, 1)
}

// LoadMore loads the next page unless pagination has ended
func (l *List[T]) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.loading || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	next := l.page + 1
	l.mu.Unlock()
	return l.load(ctx, next)
}

func (l *List[T]) load(ctx context.Context, page int) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	fetched, err := l.fetch(ctx, page, ListPageSize)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		return err
	}

	if page == 1 {
		l.items = append([]T(nil), fetched...)
	} else {
		l.items = append(l.items, fetched...)
	}
	if len(fetched) == 0 {
		l.hasMore = false
	}
	if l.less != nil {
		sort.SliceStable(l.items, func(i, j int) bool { return l.less(l.items[i], l.items[j]) })
	}
	l.page = page
	return nil
}

// RemoveLocally drops an item without a server call
func (l *List[T]) RemoveLocally(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.items[:0]
	for _, it := range l.items {
		if l.id(it) != id {
			out = append(out, it)
		}
	}
	l.items = out
}

// AddOptimistically puts an item at the top unless it is already listed
func (l *List[T]) AddOptimistically(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, it := range l.items {
		if l.id(it) == l.id(item) {
			return
		}
	}
	l.items = append([]T{item}, l.items...)
}

// update moves the item with id to the top after applying fn. It reports
// whether the item was found.
func (l *List[T]) update(id int64, fn func(T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, it := range l.items {
		if l.id(it) == id {
			item := fn(it)
			rest := append(l.items[:i:i], l.items[i+1:]...)
			l.items = append([]T{item}, rest...)
			return true
		}
	}
	return false
}

func byLastUpdated(a, b string) bool {
	return api.ParseTimestamp(a).After(api.ParseTimestamp(b))
}

// ChatList is the direct chat list, most recently updated first
type ChatList struct {
	*List[api.ChatListItem]
}

// NewChatList creates a direct chat list backed by the API
func NewChatList() *ChatList {
	return NewChatListWith(api.ListDirectChats)
}

// NewChatListWith creates a direct chat list over a custom fetcher
func NewChatListWith(fetch FetchFunc[api.ChatListItem]) *ChatList {
	return &ChatList{newList(fetch,
		func(c api.ChatListItem) int64 { return c.ChatID },
		func(a, b api.ChatListItem) bool { return byLastUpdated(a.LastUpdated, b.LastUpdated) },
	)}
}

// BumpToTop records a new latest message and moves the chat to the top
func (c *ChatList) BumpToTop(chatID int64, content string, now time.Time) bool {
	stamp := now.UTC().Format(time.RFC3339Nano)
	return c.update(chatID, func(item api.ChatListItem) api.ChatListItem {
		if item.LatestMessage != nil {
			msg := *item.LatestMessage
			msg.Content = content
			msg.CreatedAt = stamp
			item.LatestMessage = &msg
		}
		item.LastUpdated = stamp
		return item
	})
}

// GroupList is the viewer's group list in server order
type GroupList struct {
	*List[api.Group]
}

// NewGroupList creates a group list backed by the API
func NewGroupList() *GroupList {
	return NewGroupListWith(api.ListGroups)
}

// NewGroupListWith creates a group list over a custom fetcher
func NewGroupListWith(fetch FetchFunc[api.Group]) *GroupList {
	return &GroupList{newList(fetch, func(g api.Group) int64 { return g.ID }, nil)}
}

// CombinedList is the merged direct and group list
type CombinedList struct {
	*List[api.CombinedChatItem]
}

// NewCombinedList creates a combined list backed by the API
func NewCombinedList() *CombinedList {
	return NewCombinedListWith(api.ListAllChats)
}

// NewCombinedListWith creates a combined list over a custom fetcher
func NewCombinedListWith(fetch FetchFunc[api.CombinedChatItem]) *CombinedList {
	return &CombinedList{newList(fetch,
		func(c api.CombinedChatItem) int64 { return combinedKey(c) },
		func(a, b api.CombinedChatItem) bool { return byLastUpdated(a.LastUpdated, b.LastUpdated) },
	)}
}

// combinedKey keeps direct and group ids apart; groups are negative
func combinedKey(c api.CombinedChatItem) int64 {
	if c.Type == api.ChatTypeGroup {
		return -c.ChatID
	}
	return c.ChatID
}

// CombinedKey returns the RemoveLocally key of a combined chat
func CombinedKey(chatType string, chatID int64) int64 {
	return combinedKey(api.CombinedChatItem{Type: chatType, ChatID: chatID})
}

// BumpToTop records a new latest message and moves the chat to the top
func (c *CombinedList) BumpToTop(chatType string, chatID int64, senderID int64, content string, now time.Time) bool {
	stamp := now.UTC().Format(time.RFC3339Nano)
	return c.update(CombinedKey(chatType, chatID), func(item api.CombinedChatItem) api.CombinedChatItem {
		item.LatestMessage = &api.Message{SenderID: senderID, Content: content, CreatedAt: stamp}
		item.LastUpdated = stamp
		return item
	})
}
