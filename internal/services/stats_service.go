package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"

	"github.com/google/uuid"
)

// Engagement level thresholds (exclusive): more than 10 messages per chat on
// average is High, more than 5 is Medium, anything else Low.
const (
	engagementHighThreshold   = 10
	engagementMediumThreshold = 5
)

// defaultPeriodDays is the trailing window used when the caller gives none.
const defaultPeriodDays = 30

// StatsService computes the analytics dashboard over a trailing window of an
// owner's chats. It is a pure reader; each statistics block is an independent
// reducer over the same single iteration.
type StatsService struct {
	store store.Store
}

func NewStatsService(s store.Store) *StatsService {
	return &StatsService{store: s}
}

// GetStatistics aggregates the owner's chats created within the last
// periodDays days (UTC). Daily activity is keyed by the chat's creation day.
func (s *StatsService) GetStatistics(ctx context.Context, ownerID uuid.UUID, periodDays int) (*models.StatisticsResponse, error) {
	if periodDays <= 0 {
		periodDays = defaultPeriodDays
	}
	since := time.Now().UTC().AddDate(0, 0, -periodDays)

	chats, err := s.store.ListChatsByOwner(ctx, ownerID, &since)
	if err != nil {
		return nil, fmt.Errorf("failed to load chats from store: %w", err)
	}

	stats := reducePeriodStatistics(chats)
	daily := reduceDailyActivity(chats)
	byType := reduceChatTypeActivity(chats)

	return &models.StatisticsResponse{
		Success:          true,
		Period:           fmt.Sprintf("%d days", periodDays),
		Statistics:       stats,
		DailyActivity:    daily,
		ChatTypeActivity: byType,
		Insights:         deriveInsights(stats, daily, byType),
	}, nil
}

// reducePeriodStatistics computes the totals block. Average is 0 for an empty
// window, never a division by zero.
func reducePeriodStatistics(chats []models.Chat) models.PeriodStatistics {
	stats := models.PeriodStatistics{}
	for i, chat := range chats {
		n := len(chat.Messages)
		stats.TotalChats++
		stats.TotalMessages += n
		switch chat.Mode {
		case models.ModeMentalHealth:
			stats.MentalHealthChats++
		case models.ModeSpiritual:
			stats.SpiritualChats++
		case models.ModeGeneral:
			stats.GeneralChats++
		}
		if i == 0 || n > stats.LongestConversation {
			stats.LongestConversation = n
		}
		if i == 0 || n < stats.ShortestConversation {
			stats.ShortestConversation = n
		}
	}
	if stats.TotalChats > 0 {
		stats.AvgMessagesPerChat = float64(stats.TotalMessages) / float64(stats.TotalChats)
	}
	return stats
}

// reduceDailyActivity groups chats by their UTC creation day, ascending.
// Days without activity are omitted, not zero-filled.
func reduceDailyActivity(chats []models.Chat) []models.DailyActivity {
	byDay := make(map[string]*models.DailyActivity)
	for _, chat := range chats {
		day := chat.CreatedAt.UTC().Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &models.DailyActivity{Date: day}
			byDay[day] = entry
		}
		entry.ChatsCreated++
		entry.MessagesExchanged += len(chat.Messages)
	}

	daily := make([]models.DailyActivity, 0, len(byDay))
	for _, entry := range byDay {
		daily = append(daily, *entry)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return daily
}

// reduceChatTypeActivity groups chats by mode, sorted by count descending
// (ties broken by mode name for determinism).
func reduceChatTypeActivity(chats []models.Chat) []models.ChatTypeActivity {
	byMode := make(map[models.ChatMode]*models.ChatTypeActivity)
	for _, chat := range chats {
		entry, ok := byMode[chat.Mode]
		if !ok {
			entry = &models.ChatTypeActivity{Mode: chat.Mode}
			byMode[chat.Mode] = entry
		}
		entry.Count++
		entry.TotalMessages += len(chat.Messages)
	}

	byType := make([]models.ChatTypeActivity, 0, len(byMode))
	for _, entry := range byMode {
		if entry.Count > 0 {
			entry.AvgMessagesPerChat = float64(entry.TotalMessages) / float64(entry.Count)
		}
		byType = append(byType, *entry)
	}
	sort.Slice(byType, func(i, j int) bool {
		if byType[i].Count != byType[j].Count {
			return byType[i].Count > byType[j].Count
		}
		return byType[i].Mode < byType[j].Mode
	})
	return byType
}

// deriveInsights computes the derived observations: the busiest day (ties
// broken by the earliest day), the preferred mode, and the engagement level.
func deriveInsights(stats models.PeriodStatistics, daily []models.DailyActivity, byType []models.ChatTypeActivity) models.Insights {
	insights := models.Insights{EngagementLevel: engagementLevel(stats.AvgMessagesPerChat)}

	if len(daily) > 0 {
		most := daily[0]
		for _, day := range daily[1:] {
			if day.ChatsCreated > most.ChatsCreated {
				most = day
			}
		}
		insights.MostActiveDay = &most
	}

	if len(byType) > 0 {
		preferred := byType[0].Mode
		insights.PreferredChatType = &preferred
	}

	return insights
}

func engagementLevel(avgMessagesPerChat float64) string {
	switch {
	case avgMessagesPerChat > engagementHighThreshold:
		return "High"
	case avgMessagesPerChat > engagementMediumThreshold:
		return "Medium"
	default:
		return "Low"
	}
}
