package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"soulchat-backend/internal/ai"
	"soulchat-backend/internal/models"
	"soulchat-backend/internal/observability"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
)

// ChatService handles conversation business logic: creation, appends, reads,
// bookmarks, deletes and exports. Mutations to one chat are serialized via a
// per-conversation lock; different chats proceed fully in parallel.
type ChatService struct {
	store     store.Store
	responder ai.Responder
	locks     *conversationLocks
	metrics   *observability.Metrics
}

// NewChatService creates a new ChatService. metrics may be nil (tests).
func NewChatService(s store.Store, responder ai.Responder, metrics *observability.Metrics) *ChatService {
	return &ChatService{
		store:     s,
		responder: responder,
		locks:     newConversationLocks(),
		metrics:   metrics,
	}
}

// WelcomeMessage returns the mode-specific greeting shown before a chat
// exists. Unrecognized modes fall back to the general greeting.
func (s *ChatService) WelcomeMessage(mode string) string {
	return ai.WelcomeMessage(models.ChatMode(mode))
}

// CreateChat builds a new chat from its first user message: it obtains the
// assistant reply and a generated title from the responder, then persists the
// whole chat as one atomic unit. Nothing is persisted if the reply call fails;
// title generation failure degrades to a fallback title instead.
func (s *ChatService) CreateChat(ctx context.Context, ownerID uuid.UUID, req models.CreateChatRequest) (*models.Chat, error) {
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	userMsg, err := models.NewMessage(models.RoleUser, req.Message)
	if err != nil {
		return nil, err
	}

	window := buildContextWindow([]models.Message{userMsg})

	start := time.Now()
	reply, err := s.responder.ChatResponse(ctx, window, mode)
	s.metrics.ObserveResponderLatency(time.Since(start))
	if err != nil {
		s.metrics.ObserveResponderError("reply")
		return nil, fmt.Errorf("failed to generate AI response: %w", err)
	}

	// Title failure is non-fatal: GenerateTitle falls back internally.
	title := s.responder.GenerateTitle(ctx, req.Message)

	assistantMsg, err := models.NewMessage(models.RoleAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("responder returned an unusable reply: %w", err)
	}
	if assistantMsg.Timestamp.Before(userMsg.Timestamp) {
		assistantMsg.Timestamp = userMsg.Timestamp
	}

	subCategory := ""
	if req.SubCategory != nil {
		subCategory = *req.SubCategory
	}

	chat, err := s.store.CreateChat(ctx, store.CreateChatParams{
		OwnerID:     ownerID,
		Mode:        mode,
		SubCategory: subCategory,
		Title:       title,
		Messages:    []models.Message{userMsg, assistantMsg},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat in store: %w", err)
	}

	s.metrics.ObserveChatCreated(string(mode))
	log.Printf("[ChatService] Created chat %s (mode=%s) for owner %s", chat.ID, mode, ownerID)
	return chat, nil
}

// SendMessage appends a user message to an existing chat, obtains the
// assistant reply over the updated context window, and persists the pair as
// one contiguous append. The per-conversation lock is held across the whole
// sequence so concurrent sends to the same chat never interleave their pairs.
func (s *ChatService) SendMessage(ctx context.Context, ownerID, chatID uuid.UUID, text string) (models.Message, models.Message, error) {
	var zero models.Message

	userMsg, err := models.NewMessage(models.RoleUser, text)
	if err != nil {
		return zero, zero, err
	}

	unlock := s.locks.lock(chatID)
	defer unlock()

	chat, err := s.store.GetChatByID(ctx, chatID, ownerID)
	if err != nil {
		return zero, zero, err
	}

	// Timestamps are monotonically non-decreasing within a chat.
	if last := chat.LastMessage(); last != nil && userMsg.Timestamp.Before(last.Timestamp) {
		userMsg.Timestamp = last.Timestamp
	}

	window := buildContextWindow(append(chat.Messages, userMsg))

	start := time.Now()
	reply, err := s.responder.ChatResponse(ctx, window, chat.Mode)
	s.metrics.ObserveResponderLatency(time.Since(start))
	if err != nil {
		s.metrics.ObserveResponderError("reply")
		return zero, zero, fmt.Errorf("failed to generate AI response: %w", err)
	}

	assistantMsg, err := models.NewMessage(models.RoleAssistant, reply)
	if err != nil {
		return zero, zero, fmt.Errorf("responder returned an unusable reply: %w", err)
	}
	if assistantMsg.Timestamp.Before(userMsg.Timestamp) {
		assistantMsg.Timestamp = userMsg.Timestamp
	}

	if _, err := s.store.AppendMessagePair(ctx, chatID, ownerID, userMsg, assistantMsg); err != nil {
		return zero, zero, err
	}

	s.metrics.ObserveMessagePair()
	return userMsg, assistantMsg, nil
}

// GetChat retrieves a full chat scoped to its owner.
func (s *ChatService) GetChat(ctx context.Context, ownerID, chatID uuid.UUID) (*models.Chat, error) {
	return s.store.GetChatByID(ctx, chatID, ownerID)
}

// ListChats returns a page of chat summaries, newest first, optionally
// filtered by mode ("" or "all" means no filter).
func (s *ChatService) ListChats(ctx context.Context, ownerID uuid.UUID, modeFilter string, page, pageSize int) (*models.ListChatsResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	var mode *models.ChatMode
	if modeFilter != "" && modeFilter != "all" {
		m, err := models.ParseMode(modeFilter)
		if err != nil {
			return nil, err
		}
		mode = &m
	}

	summaries, total, err := s.store.ListChatSummaries(ctx, store.ListChatsParams{
		OwnerID: ownerID,
		Mode:    mode,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chats from store: %w", err)
	}

	return &models.ListChatsResponse{
		Success:    true,
		Chats:      summaries,
		Pagination: buildPagination(page, pageSize, total),
	}, nil
}

// ToggleBookmark flips the chat's bookmark flag and returns the new value.
// Repeated calls alternate; callers needing idempotence must inspect the
// returned value.
func (s *ChatService) ToggleBookmark(ctx context.Context, ownerID, chatID uuid.UUID) (bool, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	chat, err := s.store.GetChatByID(ctx, chatID, ownerID)
	if err != nil {
		return false, err
	}

	next := !chat.IsBookmarked
	if err := s.store.SetBookmarked(ctx, chatID, ownerID, next); err != nil {
		return false, err
	}
	return next, nil
}

// DeleteChat hard-deletes a chat and returns its last state. Delete is
// authoritative: a concurrent append that loses the race fails NotFound.
func (s *ChatService) DeleteChat(ctx context.Context, ownerID, chatID uuid.UUID) (*models.Chat, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	chat, err := s.store.DeleteChat(ctx, chatID, ownerID)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveChatDeleted()
	log.Printf("[ChatService] Deleted chat %s for owner %s", chatID, ownerID)
	return chat, nil
}

// Export formats accepted by ExportChat.
const (
	ExportFormatJSON = "json"
	ExportFormatText = "text"
)

// Export is a rendered chat ready to be delivered as a download attachment.
type Export struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportChat renders the full message sequence either as structured JSON or as
// human-readable text. Read-only; any format other than "text" renders JSON.
func (s *ChatService) ExportChat(ctx context.Context, ownerID, chatID uuid.UUID, format string) (*Export, error) {
	chat, err := s.store.GetChatByID(ctx, chatID, ownerID)
	if err != nil {
		return nil, err
	}

	if format == ExportFormatText {
		s.metrics.ObserveExport(ExportFormatText)
		return &Export{
			Data:        renderTextExport(chat),
			ContentType: "text/plain; charset=utf-8",
			Filename:    fmt.Sprintf("chat-%s.txt", chat.ID),
		}, nil
	}

	exported := models.ExportedChat{
		ChatID:       chat.ID,
		Title:        chat.Title,
		Mode:         chat.Mode,
		SubCategory:  chat.SubCategory,
		CreatedAt:    chat.CreatedAt,
		MessageCount: len(chat.Messages),
		Conversation: make([]models.ExportedMessage, 0, len(chat.Messages)),
		ExportedAt:   time.Now().UTC(),
		ExportedBy:   ownerID,
	}
	for i, msg := range chat.Messages {
		exported.Conversation = append(exported.Conversation, models.ExportedMessage{
			MessageNumber:   i + 1,
			Role:            msg.Role,
			Content:         msg.Content,
			Timestamp:       msg.Timestamp,
			TimeFromStartMs: msg.Timestamp.Sub(chat.CreatedAt).Milliseconds(),
		})
	}

	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat export: %w", err)
	}

	s.metrics.ObserveExport(ExportFormatJSON)
	return &Export{
		Data:        data,
		ContentType: "application/json",
		Filename:    fmt.Sprintf("chat-%s.json", chat.ID),
	}, nil
}

func renderTextExport(chat *models.Chat) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Chat: %s\n", chat.Title)
	fmt.Fprintf(&b, "Type: %s\n", chat.Mode)
	fmt.Fprintf(&b, "Created: %s\n", chat.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Messages: %d\n\n", len(chat.Messages))
	b.WriteString("--- Conversation ---\n\n")

	for i, msg := range chat.Messages {
		fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, strings.ToUpper(msg.Role), msg.Content)
		fmt.Fprintf(&b, "Time: %s\n\n", msg.Timestamp.Format(time.RFC3339))
	}

	return []byte(b.String())
}

// normalizePage applies the listing defaults: 1-indexed pages, page size
// between 1 and 100, default 20.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func buildPagination(page, pageSize int, total int64) models.Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalChats:  total,
		HasNext:     int64(page*pageSize) < total,
		HasPrev:     page > 1,
	}
}
