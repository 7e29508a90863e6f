package store

import (
	"context"
	"errors"
	"time"

	"soulchat-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found, including the
// case where it exists but belongs to a different owner. The two cases are
// deliberately indistinguishable to callers.
var ErrNotFound = errors.New("record not found")

// CreateChatParams contains everything needed to persist a new chat as a
// single atomic unit. Messages already holds the initial user/assistant pair.
type CreateChatParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Mode        models.ChatMode
	SubCategory string
	Title       string
	Messages    []models.Message
}

// ListChatsParams filters and paginates a summary listing.
type ListChatsParams struct {
	OwnerID uuid.UUID
	Mode    *models.ChatMode // nil means all modes
	Limit   int
	Offset  int
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// User operations
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Chat operations. Every chat operation is scoped to an owner id; a chat
	// owned by someone else behaves exactly like a missing one.
	CreateChat(ctx context.Context, arg CreateChatParams) (*models.Chat, error)
	GetChatByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Chat, error)
	ListChatSummaries(ctx context.Context, arg ListChatsParams) ([]models.ChatSummary, int64, error)
	// ListChatsByOwner returns full chat records, newest first, optionally
	// restricted to chats created at or after since. Feeds the analytics and
	// history read paths.
	ListChatsByOwner(ctx context.Context, ownerID uuid.UUID, since *time.Time) ([]models.Chat, error)
	// AppendMessagePair appends a user/assistant message pair as one write and
	// advances updated_at. The pair is contiguous in the stored sequence.
	AppendMessagePair(ctx context.Context, chatID, ownerID uuid.UUID, userMsg, assistantMsg models.Message) (*models.Chat, error)
	SetBookmarked(ctx context.Context, chatID, ownerID uuid.UUID, bookmarked bool) error
	// DeleteChat hard-deletes the chat and returns its last state.
	DeleteChat(ctx context.Context, chatID, ownerID uuid.UUID) (*models.Chat, error)
}
