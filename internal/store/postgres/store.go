package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// --- User Methods ---

// GetUserByEmail retrieves a user by their email address.
// Returns store.ErrNotFound if the user does not exist.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		log.Printf("ERROR [PostgresStore] GetUserByEmail: Failed to query/scan user for email %s: %v", email, err)
		return nil, fmt.Errorf("database error fetching user by email: %w", err)
	}

	return user, nil
}

// CreateUser inserts a new user record into the database.
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password)
		VALUES ($1, $2, $3)`
	// created_at and updated_at have database defaults (NOW())

	_, err := s.db.Exec(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is unique_violation (duplicate email)
			log.Printf("ERROR [PostgresStore] CreateUser: PostgreSQL error executing insert for email %s: Code=%s, Message=%s", user.Email, pgErr.Code, pgErr.Message)
		} else {
			log.Printf("ERROR [PostgresStore] CreateUser: Failed to execute insert for email %s: %v", user.Email, err)
		}
		return fmt.Errorf("database error creating user: %w", err)
	}

	return nil
}

// --- Chat Methods ---

const createChat = `-- name: CreateChat :one
INSERT INTO chats (
    id, owner_id, mode, sub_category, title, messages, is_bookmarked
) VALUES (
    $1, $2, $3, $4, $5, $6, FALSE
)
RETURNING id, owner_id, mode, sub_category, title, messages, is_bookmarked, created_at, updated_at;
`

// CreateChat persists a new chat, including its initial message pair, as a
// single insert.
func (s *PostgresStore) CreateChat(ctx context.Context, arg store.CreateChatParams) (*models.Chat, error) {
	id := arg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	messagesJSON, err := json.Marshal(arg.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}

	row := s.db.QueryRow(ctx, createChat,
		id,
		arg.OwnerID,
		arg.Mode,
		arg.SubCategory,
		arg.Title,
		messagesJSON,
	)

	chat, err := scanChat(row)
	if err != nil {
		return nil, fmt.Errorf("error scanning created chat: %w", err)
	}

	return chat, nil
}

const getChatByID = `-- name: GetChatByID :one
SELECT id, owner_id, mode, sub_category, title, messages, is_bookmarked, created_at, updated_at
FROM chats
WHERE id = $1 AND owner_id = $2;
`

// GetChatByID retrieves a chat scoped to its owner.
// Returns store.ErrNotFound when absent or owned by a different caller.
func (s *PostgresStore) GetChatByID(ctx context.Context, id, ownerID uuid.UUID) (*models.Chat, error) {
	row := s.db.QueryRow(ctx, getChatByID, id, ownerID)

	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning chat: %w", err)
	}

	return chat, nil
}

const listChatSummaries = `-- name: ListChatSummaries :many
SELECT id, title, mode, sub_category, is_bookmarked, created_at, updated_at
FROM chats
WHERE owner_id = $1 AND ($2::text IS NULL OR mode = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4;
`

const countChats = `-- name: CountChats :one
SELECT COUNT(*) FROM chats
WHERE owner_id = $1 AND ($2::text IS NULL OR mode = $2);
`

// ListChatSummaries returns a page of summaries (no message bodies), newest
// first, plus the total matched count.
func (s *PostgresStore) ListChatSummaries(ctx context.Context, arg store.ListChatsParams) ([]models.ChatSummary, int64, error) {
	var modeFilter *string
	if arg.Mode != nil {
		m := string(*arg.Mode)
		modeFilter = &m
	}

	rows, err := s.db.Query(ctx, listChatSummaries, arg.OwnerID, modeFilter, arg.Limit, arg.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying chat summaries: %w", err)
	}
	defer rows.Close()

	var summaries []models.ChatSummary
	for rows.Next() {
		var sum models.ChatSummary
		if err := rows.Scan(
			&sum.ID,
			&sum.Title,
			&sum.Mode,
			&sum.SubCategory,
			&sum.IsBookmarked,
			&sum.CreatedAt,
			&sum.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning chat summary row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating chat summary rows: %w", err)
	}

	var total int64
	if err := s.db.QueryRow(ctx, countChats, arg.OwnerID, modeFilter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting chats: %w", err)
	}

	return summaries, total, nil
}

const listChatsByOwner = `-- name: ListChatsByOwner :many
SELECT id, owner_id, mode, sub_category, title, messages, is_bookmarked, created_at, updated_at
FROM chats
WHERE owner_id = $1 AND ($2::timestamptz IS NULL OR created_at >= $2)
ORDER BY created_at DESC;
`

// ListChatsByOwner returns the owner's full chat records, newest first,
// optionally restricted to chats created at or after since.
func (s *PostgresStore) ListChatsByOwner(ctx context.Context, ownerID uuid.UUID, since *time.Time) ([]models.Chat, error) {
	rows, err := s.db.Query(ctx, listChatsByOwner, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("error querying chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning chat row: %w", err)
		}
		chats = append(chats, *chat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat rows: %w", err)
	}

	return chats, nil
}

// AppendMessagePair appends a user/assistant pair to the chat's messages JSONB
// field in one UPDATE. The caller holds the per-conversation lock, so the
// read-modify-write here cannot interleave with another append to the same chat.
func (s *PostgresStore) AppendMessagePair(ctx context.Context, chatID, ownerID uuid.UUID, userMsg, assistantMsg models.Message) (*models.Chat, error) {
	chat, err := s.GetChatByID(ctx, chatID, ownerID)
	if err != nil {
		return nil, err
	}

	chat.Messages = append(chat.Messages, userMsg, assistantMsg)

	updatedData, err := json.Marshal(chat.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal updated messages: %w", err)
	}

	const updateMessages = `
		UPDATE chats
		SET messages = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3
		RETURNING updated_at;
	`

	err = s.db.QueryRow(ctx, updateMessages, updatedData, chatID, ownerID).Scan(&chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Deleted between the read and the write; delete is authoritative.
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update chat messages: %w", err)
	}

	return chat, nil
}

// SetBookmarked updates the bookmark flag of a chat.
func (s *PostgresStore) SetBookmarked(ctx context.Context, chatID, ownerID uuid.UUID, bookmarked bool) error {
	const updateBookmark = `
		UPDATE chats
		SET is_bookmarked = $1, updated_at = NOW()
		WHERE id = $2 AND owner_id = $3;
	`

	tag, err := s.db.Exec(ctx, updateBookmark, bookmarked, chatID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

const deleteChat = `-- name: DeleteChat :one
DELETE FROM chats
WHERE id = $1 AND owner_id = $2
RETURNING id, owner_id, mode, sub_category, title, messages, is_bookmarked, created_at, updated_at;
`

// DeleteChat hard-deletes a chat and returns its last state.
func (s *PostgresStore) DeleteChat(ctx context.Context, chatID, ownerID uuid.UUID) (*models.Chat, error) {
	row := s.db.QueryRow(ctx, deleteChat, chatID, ownerID)

	chat, err := scanChat(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error deleting chat: %w", err)
	}

	return chat, nil
}

// scanChat reads one chat row, decoding the messages JSONB column.
func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	var messagesJSON []byte
	err := row.Scan(
		&chat.ID,
		&chat.OwnerID,
		&chat.Mode,
		&chat.SubCategory,
		&chat.Title,
		&messagesJSON,
		&chat.IsBookmarked,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messagesJSON, &chat.Messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages column: %w", err)
	}
	return &chat, nil
}
