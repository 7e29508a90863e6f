package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
)

// HistoryService answers the detailed-history query: composable filters,
// search, sort and pagination over an owner's chats, with each summary
// enriched with per-conversation statistics. It is a pure reader and runs a
// single pass over the owner's chat set.
type HistoryService struct {
	store store.Store
}

func NewHistoryService(s store.Store) *HistoryService {
	return &HistoryService{store: s}
}

// Sortable fields accepted by GetHistory. Anything else falls back to
// created_at.
const (
	SortByCreatedAt    = "created_at"
	SortByUpdatedAt    = "updated_at"
	SortByTitle        = "title"
	SortByMessageCount = "message_count"
)

// GetHistory filters, sorts and paginates the owner's chats. The statistics
// block always covers the owner's full history, independent of the filters.
func (s *HistoryService) GetHistory(ctx context.Context, ownerID uuid.UUID, filters models.HistoryFilters) (*models.HistoryResponse, error) {
	filters.Page, filters.PageSize = normalizePage(filters.Page, filters.PageSize)
	if filters.SortBy == "" {
		filters.SortBy = SortByCreatedAt
	}
	if filters.SortOrder == "" {
		filters.SortOrder = "desc"
	}

	chats, err := s.store.ListChatsByOwner(ctx, ownerID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats from store: %w", err)
	}

	stats := overallStatistics(chats)

	matched := make([]models.Chat, 0, len(chats))
	for _, chat := range chats {
		if matchesFilters(&chat, filters) {
			matched = append(matched, chat)
		}
	}

	sortChats(matched, filters.SortBy, filters.SortOrder)

	total := int64(len(matched))
	start := (filters.Page - 1) * filters.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filters.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	entries := make([]models.HistoryEntry, 0, end-start)
	for i := start; i < end; i++ {
		entries = append(entries, buildHistoryEntry(&matched[i]))
	}

	return &models.HistoryResponse{
		Success:    true,
		Chats:      entries,
		Pagination: buildPagination(filters.Page, filters.PageSize, total),
		Statistics: stats,
		Filters:    filters,
	}, nil
}

// matchesFilters applies mode, search and date-range filters. Search matches
// case-insensitively against the title or any message's content.
func matchesFilters(chat *models.Chat, filters models.HistoryFilters) bool {
	if filters.Mode != "" && filters.Mode != "all" && string(chat.Mode) != filters.Mode {
		return false
	}

	if filters.DateFrom != nil && chat.CreatedAt.Before(*filters.DateFrom) {
		return false
	}
	if filters.DateTo != nil && chat.CreatedAt.After(*filters.DateTo) {
		return false
	}

	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		if !strings.Contains(strings.ToLower(chat.Title), needle) {
			found := false
			for _, msg := range chat.Messages {
				if strings.Contains(strings.ToLower(msg.Content), needle) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}

	return true
}

func sortChats(chats []models.Chat, sortBy, sortOrder string) {
	less := func(a, b *models.Chat) bool {
		switch sortBy {
		case SortByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case SortByTitle:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		case SortByMessageCount:
			return len(a.Messages) < len(b.Messages)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(chats, func(i, j int) bool {
		if sortOrder == "asc" {
			return less(&chats[i], &chats[j])
		}
		return less(&chats[j], &chats[i])
	})
}

func buildHistoryEntry(chat *models.Chat) models.HistoryEntry {
	return models.HistoryEntry{
		ID:                     chat.ID,
		Title:                  chat.Title,
		Mode:                   chat.Mode,
		SubCategory:            chat.SubCategory,
		IsBookmarked:           chat.IsBookmarked,
		CreatedAt:              chat.CreatedAt,
		UpdatedAt:              chat.UpdatedAt,
		MessageCount:           len(chat.Messages),
		FirstMessage:           chat.FirstMessage(),
		LastMessage:            chat.LastMessage(),
		UserMessageCount:       chat.CountByRole(models.RoleUser),
		AIMessageCount:         chat.CountByRole(models.RoleAssistant),
		ConversationDurationMs: chat.Duration().Milliseconds(),
	}
}

// overallStatistics reduces the owner's full chat set to the all-time
// statistics block. Average is 0 for an empty set, never a division by zero.
func overallStatistics(chats []models.Chat) models.OwnerStatistics {
	stats := models.OwnerStatistics{}
	for _, chat := range chats {
		stats.TotalChats++
		stats.TotalMessages += len(chat.Messages)
		switch chat.Mode {
		case models.ModeMentalHealth:
			stats.MentalHealthChats++
		case models.ModeSpiritual:
			stats.SpiritualChats++
		case models.ModeGeneral:
			stats.GeneralChats++
		}
		if chat.IsBookmarked {
			stats.BookmarkedChats++
		}
	}
	if stats.TotalChats > 0 {
		stats.AvgMessagesPerChat = float64(stats.TotalMessages) / float64(stats.TotalChats)
	}
	return stats
}
