package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"soulchat-backend/internal/ai"
	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"
	"soulchat-backend/internal/store/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResponder is a deterministic ai.Responder. It records every context
// window it receives so tests can assert on what was sent upstream.
type stubResponder struct {
	mu      sync.Mutex
	fail    bool
	reply   string
	title   string
	windows [][]ai.ChatMessage
}

func (r *stubResponder) ChatResponse(_ context.Context, msgs []ai.ChatMessage, _ models.ChatMode) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return "", fmt.Errorf("%w: upstream returned 500", ai.ErrUnavailable)
	}
	r.windows = append(r.windows, append([]ai.ChatMessage(nil), msgs...))
	if r.reply == "" {
		return "stub reply", nil
	}
	return r.reply, nil
}

func (r *stubResponder) GenerateTitle(_ context.Context, _ string) string {
	if r.title == "" {
		return ai.FallbackTitle
	}
	return r.title
}

func (r *stubResponder) lastWindow() []ai.ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.windows) == 0 {
		return nil
	}
	return r.windows[len(r.windows)-1]
}

func newTestChatService(responder *stubResponder) (*ChatService, *memory.MemoryStore) {
	st := memory.NewMemoryStore()
	return NewChatService(st, responder, nil), st
}

func TestCreateChat(t *testing.T) {
	responder := &stubResponder{title: "Coping With Anxiety"}
	svc, _ := newTestChatService(responder)
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "I feel anxious today",
		Mode:    "mental-health",
	})
	require.NoError(t, err)

	assert.Equal(t, owner, chat.OwnerID)
	assert.Equal(t, models.ModeMentalHealth, chat.Mode)
	assert.Equal(t, "Coping With Anxiety", chat.Title)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, models.RoleUser, chat.Messages[0].Role)
	assert.Equal(t, "I feel anxious today", chat.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, chat.Messages[1].Role)
	assert.False(t, chat.Messages[1].Timestamp.Before(chat.Messages[0].Timestamp))
}

func TestCreateChatValidation(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	tests := []struct {
		name    string
		req     models.CreateChatRequest
		wantErr error
	}{
		{"unknown mode", models.CreateChatRequest{Message: "hi", Mode: "astrology"}, models.ErrInvalidMode},
		{"empty mode", models.CreateChatRequest{Message: "hi", Mode: ""}, models.ErrInvalidMode},
		{"empty message", models.CreateChatRequest{Message: "", Mode: "general"}, models.ErrInvalidMessage},
		{"whitespace message", models.CreateChatRequest{Message: "   ", Mode: "general"}, models.ErrInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateChat(context.Background(), owner, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateChatResponderFailurePersistsNothing(t *testing.T) {
	svc, st := newTestChatService(&stubResponder{fail: true})
	owner := uuid.New()

	_, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.ErrorIs(t, err, ai.ErrUnavailable)

	chats, err := st.ListChatsByOwner(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestCreateChatFallbackTitle(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	chat, err := svc.CreateChat(context.Background(), uuid.New(), models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)
	assert.Equal(t, ai.FallbackTitle, chat.Title)
}

func TestSendMessageAppendsPair(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "I feel anxious today",
		Mode:    "mental-health",
	})
	require.NoError(t, err)

	userMsg, aiMsg, err := svc.SendMessage(context.Background(), owner, chat.ID, "Thank you")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, userMsg.Role)
	assert.Equal(t, "Thank you", userMsg.Content)
	assert.Equal(t, models.RoleAssistant, aiMsg.Role)

	got, err := svc.GetChat(context.Background(), owner, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "Thank you", got.Messages[2].Content)
}

func TestSendMessageUnknownChat(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	_, _, err := svc.SendMessage(context.Background(), uuid.New(), uuid.New(), "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendMessageOwnershipIsolation(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()
	stranger := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)

	_, _, err = svc.SendMessage(context.Background(), stranger, chat.ID, "sneaky")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.GetChat(context.Background(), stranger, chat.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.DeleteChat(context.Background(), stranger, chat.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSendMessageConcurrentPairsStayContiguous(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)

	const senders = 16
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.SendMessage(context.Background(), owner, chat.ID, fmt.Sprintf("message %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := svc.GetChat(context.Background(), owner, chat.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2+2*senders)

	for i, msg := range got.Messages {
		want := models.RoleUser
		if i%2 == 1 {
			want = models.RoleAssistant
		}
		assert.Equalf(t, want, msg.Role, "message %d out of place", i)
		if i > 0 {
			assert.Falsef(t, msg.Timestamp.Before(got.Messages[i-1].Timestamp),
				"timestamp %d decreased", i)
		}
	}
}

func TestSendMessageWindowCapsAtTen(t *testing.T) {
	responder := &stubResponder{}
	svc, _ := newTestChatService(responder)
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)

	// 12 appends leave 26 messages in the log; every window stays capped.
	for i := 0; i < 12; i++ {
		_, _, err := svc.SendMessage(context.Background(), owner, chat.ID, fmt.Sprintf("turn %d", i))
		require.NoError(t, err)
	}

	window := responder.lastWindow()
	require.Len(t, window, 10)
	assert.Equal(t, models.RoleUser, window[9].Role)
	assert.Equal(t, "turn 11", window[9].Content)
}

func TestToggleBookmarkAlternates(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "spiritual",
	})
	require.NoError(t, err)

	for _, want := range []bool{true, false, true} {
		got, err := svc.ToggleBookmark(context.Background(), owner, chat.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDeleteChatIsTerminal(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteChat(context.Background(), owner, chat.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, deleted.ID)
	assert.Len(t, deleted.Messages, 2)

	_, err = svc.GetChat(context.Background(), owner, chat.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, _, err = svc.SendMessage(context.Background(), owner, chat.ID, "anyone there?")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListChatsModeFilter(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	for _, mode := range []string{"general", "general", "spiritual"} {
		_, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
			Message: "hello",
			Mode:    mode,
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListChats(context.Background(), owner, "general", 1, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Chats, 2)
	assert.EqualValues(t, 2, resp.Pagination.TotalChats)

	resp, err = svc.ListChats(context.Background(), owner, "all", 1, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Chats, 3)

	_, err = svc.ListChats(context.Background(), owner, "bogus", 1, 20)
	assert.ErrorIs(t, err, models.ErrInvalidMode)
}

func TestListChatsPagination(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
			Message: fmt.Sprintf("chat %d", i),
			Mode:    "general",
		})
		require.NoError(t, err)
	}

	resp, err := svc.ListChats(context.Background(), owner, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Chats, 2)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)

	resp, err = svc.ListChats(context.Background(), owner, "", 3, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Chats, 1)
	assert.False(t, resp.Pagination.HasNext)
}

func TestExportChatJSON(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)
	_, _, err = svc.SendMessage(context.Background(), owner, chat.ID, "more")
	require.NoError(t, err)

	export, err := svc.ExportChat(context.Background(), owner, chat.ID, ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", export.ContentType)
	assert.Equal(t, fmt.Sprintf("chat-%s.json", chat.ID), export.Filename)

	var exported models.ExportedChat
	require.NoError(t, json.Unmarshal(export.Data, &exported))
	assert.Equal(t, chat.ID, exported.ChatID)
	assert.Equal(t, owner, exported.ExportedBy)
	require.Len(t, exported.Conversation, 4)
	assert.Equal(t, 4, exported.MessageCount)

	for i, msg := range exported.Conversation {
		assert.Equal(t, i+1, msg.MessageNumber)
		assert.GreaterOrEqual(t, msg.TimeFromStartMs, int64(0))
		if i > 0 {
			assert.GreaterOrEqual(t, msg.TimeFromStartMs, exported.Conversation[i-1].TimeFromStartMs)
		}
	}
}

func TestExportChatText(t *testing.T) {
	svc, _ := newTestChatService(&stubResponder{title: "Small Talk"})
	owner := uuid.New()

	chat, err := svc.CreateChat(context.Background(), owner, models.CreateChatRequest{
		Message: "hello",
		Mode:    "general",
	})
	require.NoError(t, err)

	export, err := svc.ExportChat(context.Background(), owner, chat.ID, ExportFormatText)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", export.ContentType)

	text := string(export.Data)
	assert.True(t, strings.HasPrefix(text, "Chat: Small Talk\n"))
	assert.Contains(t, text, "[1] USER: hello")
	assert.Contains(t, text, "[2] ASSISTANT: stub reply")
}
