// Package memory provides an in-memory store.Store used by tests and for
// running the server locally without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
)

// Compile-time check to ensure MemoryStore implements store.Store
var _ store.Store = (*MemoryStore)(nil)

type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // keyed by email
	chats map[uuid.UUID]*models.Chat
	order []uuid.UUID // insertion order, for deterministic tie-breaks
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		chats: make(map[uuid.UUID]*models.Chat),
	}
}

// --- User Methods ---

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	u := *user
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[user.Email] = &u
	return nil
}

// --- Chat Methods ---

func (s *MemoryStore) CreateChat(_ context.Context, arg store.CreateChatParams) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := arg.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	now := time.Now().UTC()
	chat := &models.Chat{
		ID:          id,
		OwnerID:     arg.OwnerID,
		Mode:        arg.Mode,
		SubCategory: arg.SubCategory,
		Title:       arg.Title,
		Messages:    append([]models.Message(nil), arg.Messages...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.chats[id] = chat
	s.order = append(s.order, id)

	return copyChat(chat), nil
}

func (s *MemoryStore) GetChatByID(_ context.Context, id, ownerID uuid.UUID) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chat, err := s.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	return copyChat(chat), nil
}

func (s *MemoryStore) ListChatSummaries(_ context.Context, arg store.ListChatsParams) ([]models.ChatSummary, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Chat
	for _, id := range s.order {
		chat, ok := s.chats[id]
		if !ok || chat.OwnerID != arg.OwnerID {
			continue
		}
		if arg.Mode != nil && chat.Mode != *arg.Mode {
			continue
		}
		matched = append(matched, chat)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := arg.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + arg.Limit
	if arg.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	summaries := make([]models.ChatSummary, 0, end-start)
	for _, chat := range matched[start:end] {
		summaries = append(summaries, models.ChatSummary{
			ID:           chat.ID,
			Title:        chat.Title,
			Mode:         chat.Mode,
			SubCategory:  chat.SubCategory,
			IsBookmarked: chat.IsBookmarked,
			CreatedAt:    chat.CreatedAt,
			UpdatedAt:    chat.UpdatedAt,
		})
	}

	return summaries, total, nil
}

func (s *MemoryStore) ListChatsByOwner(_ context.Context, ownerID uuid.UUID, since *time.Time) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var chats []models.Chat
	for _, id := range s.order {
		chat, ok := s.chats[id]
		if !ok || chat.OwnerID != ownerID {
			continue
		}
		if since != nil && chat.CreatedAt.Before(*since) {
			continue
		}
		chats = append(chats, *copyChat(chat))
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})

	return chats, nil
}

func (s *MemoryStore) AppendMessagePair(_ context.Context, chatID, ownerID uuid.UUID, userMsg, assistantMsg models.Message) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, err := s.lookup(chatID, ownerID)
	if err != nil {
		return nil, err
	}

	chat.Messages = append(chat.Messages, userMsg, assistantMsg)
	chat.UpdatedAt = time.Now().UTC()

	return copyChat(chat), nil
}

func (s *MemoryStore) SetBookmarked(_ context.Context, chatID, ownerID uuid.UUID, bookmarked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, err := s.lookup(chatID, ownerID)
	if err != nil {
		return err
	}

	chat.IsBookmarked = bookmarked
	chat.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) DeleteChat(_ context.Context, chatID, ownerID uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, err := s.lookup(chatID, ownerID)
	if err != nil {
		return nil, err
	}

	delete(s.chats, chatID)
	return copyChat(chat), nil
}

// lookup must be called with the mutex held. A chat owned by a different
// caller is indistinguishable from a missing one.
func (s *MemoryStore) lookup(id, ownerID uuid.UUID) (*models.Chat, error) {
	chat, ok := s.chats[id]
	if !ok || chat.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return chat, nil
}

func copyChat(chat *models.Chat) *models.Chat {
	c := *chat
	c.Messages = append([]models.Message(nil), chat.Messages...)
	return &c
}
