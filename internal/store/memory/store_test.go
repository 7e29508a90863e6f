package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.GetUserByEmail(ctx, "eve@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	user := &models.User{ID: uuid.New(), Email: "eve@example.com", HashedPassword: "hash"}
	require.NoError(t, st.CreateUser(ctx, user))

	got, err := st.GetUserByEmail(ctx, "eve@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestChatLifecycle(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	owner := uuid.New()

	chat, err := st.CreateChat(ctx, store.CreateChatParams{
		OwnerID: owner,
		Mode:    models.ModeGeneral,
		Title:   "First",
		Messages: []models.Message{
			{Role: models.RoleUser, Content: "hello", Timestamp: time.Now().UTC()},
			{Role: models.RoleAssistant, Content: "hi", Timestamp: time.Now().UTC()},
		},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, chat.ID)
	assert.False(t, chat.CreatedAt.IsZero())

	got, err := st.GetChatByID(ctx, chat.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	require.Len(t, got.Messages, 2)

	updated, err := st.AppendMessagePair(ctx, chat.ID, owner,
		models.Message{Role: models.RoleUser, Content: "more", Timestamp: time.Now().UTC()},
		models.Message{Role: models.RoleAssistant, Content: "sure", Timestamp: time.Now().UTC()},
	)
	require.NoError(t, err)
	assert.Len(t, updated.Messages, 4)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	require.NoError(t, st.SetBookmarked(ctx, chat.ID, owner, true))
	got, err = st.GetChatByID(ctx, chat.ID, owner)
	require.NoError(t, err)
	assert.True(t, got.IsBookmarked)

	deleted, err := st.DeleteChat(ctx, chat.ID, owner)
	require.NoError(t, err)
	assert.Len(t, deleted.Messages, 4)

	_, err = st.GetChatByID(ctx, chat.ID, owner)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOwnerScoping(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	chat, err := st.CreateChat(ctx, store.CreateChatParams{OwnerID: owner, Mode: models.ModeGeneral, Title: "Mine"})
	require.NoError(t, err)

	// Every owner-scoped operation treats a foreign chat as missing.
	_, err = st.GetChatByID(ctx, chat.ID, stranger)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.AppendMessagePair(ctx, chat.ID, stranger,
		models.Message{Role: models.RoleUser, Content: "x", Timestamp: time.Now().UTC()},
		models.Message{Role: models.RoleAssistant, Content: "y", Timestamp: time.Now().UTC()},
	)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, st.SetBookmarked(ctx, chat.ID, stranger, true), store.ErrNotFound)

	_, err = st.DeleteChat(ctx, chat.ID, stranger)
	assert.ErrorIs(t, err, store.ErrNotFound)

	chats, err := st.ListChatsByOwner(ctx, stranger, nil)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestListChatSummaries(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := st.CreateChat(ctx, store.CreateChatParams{
			OwnerID: owner,
			Mode:    models.ModeGeneral,
			Title:   fmt.Sprintf("General %d", i),
		})
		require.NoError(t, err)
	}
	_, err := st.CreateChat(ctx, store.CreateChatParams{OwnerID: owner, Mode: models.ModeSpiritual, Title: "Spiritual"})
	require.NoError(t, err)

	summaries, total, err := st.ListChatSummaries(ctx, store.ListChatsParams{OwnerID: owner, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, summaries, 4)

	mode := models.ModeGeneral
	summaries, total, err = st.ListChatSummaries(ctx, store.ListChatsParams{OwnerID: owner, Mode: &mode, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, summaries, 1)
}

func TestListChatsByOwnerSince(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	owner := uuid.New()

	_, err := st.CreateChat(ctx, store.CreateChatParams{OwnerID: owner, Mode: models.ModeGeneral, Title: "Now"})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	chats, err := st.ListChatsByOwner(ctx, owner, &past)
	require.NoError(t, err)
	assert.Len(t, chats, 1)

	future := time.Now().UTC().Add(time.Hour)
	chats, err = st.ListChatsByOwner(ctx, owner, &future)
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestReturnedChatsAreCopies(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	owner := uuid.New()

	chat, err := st.CreateChat(ctx, store.CreateChatParams{
		OwnerID:  owner,
		Mode:     models.ModeGeneral,
		Title:    "Copy",
		Messages: []models.Message{{Role: models.RoleUser, Content: "original", Timestamp: time.Now().UTC()}},
	})
	require.NoError(t, err)

	chat.Messages[0].Content = "mutated"
	chat.Title = "mutated"

	got, err := st.GetChatByID(ctx, chat.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Copy", got.Title)
	assert.Equal(t, "original", got.Messages[0].Content)
}
