package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/api"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	messaging.DirectTransport

	mu      sync.Mutex
	history []api.Message
	sent    []string
	edits   map[int64]string
	deletes []int64
}

func (f *fakeTransport) Fetch(_ context.Context, page, _ int) ([]api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page > 1 {
		return nil, nil
	}
	return append([]api.Message(nil), f.history...), nil
}

func (f *fakeTransport) Send(_ context.Context, content string) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, content)
	return &api.Message{ID: int64(100 + len(f.sent)), SenderID: 5, Content: content, CreatedAt: time.Now().UTC().Format(time.RFC3339)}, nil
}

func (f *fakeTransport) Edit(_ context.Context, messageID int64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.edits == nil {
		f.edits = make(map[int64]string)
	}
	f.edits[messageID] = content
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, messageID int64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, messageID)
	return nil
}

func newLiveConversation(t *testing.T) (*messaging.Conversation, *fakeTransport, *bytes.Buffer) {
	t.Helper()
	_, buf := newTestEnv(t, nil)

	now := time.Now().UTC()
	ft := &fakeTransport{history: []api.Message{
		// newest first, as the server pages
		{ID: 3, SenderID: 5, Content: "see you there", CreatedAt: now.Add(-2 * time.Minute).Format(time.RFC3339)},
		{ID: 2, SenderID: 9, Content: "market at noon?", CreatedAt: now.Add(-5 * time.Minute).Format(time.RFC3339)},
		{ID: 1, SenderID: 5, Content: "hey", CreatedAt: now.Add(-time.Hour).Format(time.RFC3339)},
	}}
	conv := messaging.NewConversation(ft, 5)
	require.NoError(t, conv.Load(context.Background()))
	return conv, ft, buf
}

func TestLiveLineSendsPlainText(t *testing.T) {
	conv, ft, _ := newLiveConversation(t)

	quit, err := handleLiveLine(context.Background(), conv, 5, "  on my way ")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, []string{"on my way"}, ft.sent)

	msgs := conv.Messages()
	assert.Equal(t, "on my way", msgs[len(msgs)-1].Content)
}

func TestLiveLineIgnoresBlankLines(t *testing.T) {
	conv, ft, _ := newLiveConversation(t)

	quit, err := handleLiveLine(context.Background(), conv, 5, "   ")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Empty(t, ft.sent)
}

func TestLiveLineQuit(t *testing.T) {
	conv, _, _ := newLiveConversation(t)

	for _, line := range []string{"/quit", "/exit"} {
		quit, err := handleLiveLine(context.Background(), conv, 5, line)
		require.NoError(t, err)
		assert.True(t, quit, line)
	}
}

func TestLiveLineEditsRecentOwnMessage(t *testing.T) {
	conv, ft, _ := newLiveConversation(t)

	_, err := handleLiveLine(context.Background(), conv, 5, "/edit 3 see you at  noon")
	require.NoError(t, err)
	assert.Equal(t, "see you at noon", ft.edits[3])

	msg, ok := findMessage(conv, 3)
	require.True(t, ok)
	assert.Equal(t, "see you at noon", msg.Content)
}

func TestLiveLineRefusesStaleOrForeignMessages(t *testing.T) {
	conv, ft, _ := newLiveConversation(t)

	tests := []struct {
		line     string
		wantType clierrors.ErrorType
	}{
		{"/edit 1 too late", clierrors.ErrorTypeValidation},
		{"/edit 2 not mine", clierrors.ErrorTypeValidation},
		{"/delete 1", clierrors.ErrorTypeValidation},
		{"/delete 42", clierrors.ErrorTypeNotFound},
		{"/delete abc", clierrors.ErrorTypeValidation},
		{"/edit 3", clierrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := handleLiveLine(context.Background(), conv, 5, tt.line)
			var cliErr *clierrors.CLIError
			require.True(t, errors.As(err, &cliErr), "got %v", err)
			assert.Equal(t, tt.wantType, cliErr.Type)
		})
	}

	assert.Empty(t, ft.edits)
	assert.Empty(t, ft.deletes)
}

func TestLiveLineDeletesRecentOwnMessage(t *testing.T) {
	conv, ft, _ := newLiveConversation(t)

	_, err := handleLiveLine(context.Background(), conv, 5, "/delete 3")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ft.deletes)

	_, ok := findMessage(conv, 3)
	assert.False(t, ok)
}

func TestPrintConversationOldestFirst(t *testing.T) {
	conv, _, buf := newLiveConversation(t)

	require.NoError(t, printConversation("Chat 1", conv, 5))
	out := buf.String()
	assert.Less(t, strings.Index(out, "hey"), strings.Index(out, "market at noon?"))
	assert.Less(t, strings.Index(out, "market at noon?"), strings.Index(out, "see you there"))
}

func TestInviteToken(t *testing.T) {
	tests := map[string]string{
		"abc123":                                "abc123",
		" https://pulse.example/join/abc123/ ":  "abc123",
		"https://pulse.example/join/abc123?x=1": "abc123",
		"":                                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, inviteToken(in), in)
	}
}
