package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Auth DTOs ---

// SignupRequest defines the expected body for the signup endpoint.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the expected body for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse defines the user information returned by the API.
// Avoid returning sensitive info like HashedPassword.
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse defines the response body for successful authentication.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// --- Chat DTOs ---

// CreateChatRequest defines the body for creating a new chat from its first
// user message.
type CreateChatRequest struct {
	Message     string  `json:"message"`
	Mode        string  `json:"mode"` // mental-health | spiritual | general
	SubCategory *string `json:"sub_category,omitempty"`
}

// CreateChatResponse wraps the freshly created chat.
type CreateChatResponse struct {
	Success bool   `json:"success"`
	Chat    *Chat  `json:"chat"`
	Message string `json:"message,omitempty"`
}

// SendMessageRequest defines the body for appending a user message to a chat.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse returns the appended user/assistant message pair.
type SendMessageResponse struct {
	Success     bool    `json:"success"`
	UserMessage Message `json:"user_message"`
	AIResponse  Message `json:"ai_response"`
}

// GetChatResponse wraps a single full chat.
type GetChatResponse struct {
	Success bool  `json:"success"`
	Chat    *Chat `json:"chat"`
}

// ChatSummary is a chat without its message bodies, used by list endpoints.
type ChatSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Mode         ChatMode  `json:"mode"`
	SubCategory  string    `json:"sub_category,omitempty"`
	IsBookmarked bool      `json:"is_bookmarked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Pagination describes an offset-paginated result window. Pages are 1-indexed.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalChats  int64 `json:"total_chats"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// ListChatsResponse wraps a page of chat summaries.
type ListChatsResponse struct {
	Success    bool          `json:"success"`
	Chats      []ChatSummary `json:"chats"`
	Pagination Pagination    `json:"pagination"`
}

// BookmarkResponse returns the new bookmark state after a toggle.
type BookmarkResponse struct {
	Success      bool   `json:"success"`
	IsBookmarked bool   `json:"is_bookmarked"`
	Message      string `json:"message,omitempty"`
}

// DeletedChat identifies a chat that was just removed.
type DeletedChat struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Mode  ChatMode  `json:"mode"`
}

// DeleteChatResponse confirms a hard delete.
type DeleteChatResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	DeletedChat DeletedChat `json:"deleted_chat"`
}

// WelcomeResponse carries the mode-specific greeting shown before any message
// has been sent.
type WelcomeResponse struct {
	Success        bool   `json:"success"`
	WelcomeMessage string `json:"welcome_message"`
	ChatType       string `json:"chat_type"`
}

// --- History DTOs ---

// HistoryFilters are the composable query parameters accepted by the detailed
// history endpoint. Zero values mean "no filter".
type HistoryFilters struct {
	Mode      string     `json:"mode,omitempty"` // exact mode or "all"
	Search    string     `json:"search,omitempty"`
	SortBy    string     `json:"sort_by,omitempty"`    // default created_at
	SortOrder string     `json:"sort_order,omitempty"` // asc | desc, default desc
	DateFrom  *time.Time `json:"date_from,omitempty"`
	DateTo    *time.Time `json:"date_to,omitempty"`
	Page      int        `json:"page,omitempty"`
	PageSize  int        `json:"page_size,omitempty"`
}

// HistoryEntry is a chat summary enriched with per-conversation statistics.
type HistoryEntry struct {
	ID                     uuid.UUID `json:"id"`
	Title                  string    `json:"title"`
	Mode                   ChatMode  `json:"mode"`
	SubCategory            string    `json:"sub_category,omitempty"`
	IsBookmarked           bool      `json:"is_bookmarked"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
	MessageCount           int       `json:"message_count"`
	FirstMessage           *Message  `json:"first_message,omitempty"`
	LastMessage            *Message  `json:"last_message,omitempty"`
	UserMessageCount       int       `json:"user_message_count"`
	AIMessageCount         int       `json:"ai_message_count"`
	ConversationDurationMs int64     `json:"conversation_duration_ms"`
}

// OwnerStatistics is the all-time statistics block attached to history results.
type OwnerStatistics struct {
	TotalChats         int     `json:"total_chats"`
	TotalMessages      int     `json:"total_messages"`
	MentalHealthChats  int     `json:"mental_health_chats"`
	SpiritualChats     int     `json:"spiritual_chats"`
	GeneralChats       int     `json:"general_chats"`
	BookmarkedChats    int     `json:"bookmarked_chats"`
	AvgMessagesPerChat float64 `json:"avg_messages_per_chat"`
}

// HistoryResponse is the detailed history payload: a filtered page of enriched
// summaries plus the owner's overall statistics.
type HistoryResponse struct {
	Success    bool            `json:"success"`
	Chats      []HistoryEntry  `json:"chats"`
	Pagination Pagination      `json:"pagination"`
	Statistics OwnerStatistics `json:"statistics"`
	Filters    HistoryFilters  `json:"filters"`
}

// --- Statistics DTOs ---

// PeriodStatistics aggregates a trailing time window of the owner's chats.
type PeriodStatistics struct {
	TotalChats           int     `json:"total_chats"`
	TotalMessages        int     `json:"total_messages"`
	MentalHealthChats    int     `json:"mental_health_chats"`
	SpiritualChats       int     `json:"spiritual_chats"`
	GeneralChats         int     `json:"general_chats"`
	AvgMessagesPerChat   float64 `json:"avg_messages_per_chat"`
	LongestConversation  int     `json:"longest_conversation"`
	ShortestConversation int     `json:"shortest_conversation"`
}

// DailyActivity is one calendar day's worth of activity (UTC). Days without
// activity are omitted from the series rather than zero-filled.
type DailyActivity struct {
	Date              string `json:"date"` // YYYY-MM-DD
	ChatsCreated      int    `json:"chats_created"`
	MessagesExchanged int    `json:"messages_exchanged"`
}

// ChatTypeActivity aggregates one mode's share of the period.
type ChatTypeActivity struct {
	Mode               ChatMode `json:"mode"`
	Count              int      `json:"count"`
	TotalMessages      int      `json:"total_messages"`
	AvgMessagesPerChat float64  `json:"avg_messages_per_chat"`
}

// Insights are derived observations over the aggregated period.
type Insights struct {
	MostActiveDay     *DailyActivity `json:"most_active_day"`
	PreferredChatType *ChatMode      `json:"preferred_chat_type"`
	EngagementLevel   string         `json:"engagement_level"` // High | Medium | Low
}

// StatisticsResponse is the analytics dashboard payload.
type StatisticsResponse struct {
	Success          bool               `json:"success"`
	Period           string             `json:"period"`
	Statistics       PeriodStatistics   `json:"statistics"`
	DailyActivity    []DailyActivity    `json:"daily_activity"`
	ChatTypeActivity []ChatTypeActivity `json:"chat_type_activity"`
	Insights         Insights           `json:"insights"`
}

// --- Export DTOs ---

// ExportedMessage is one conversation turn in a structured export, with its
// offset from the chat's creation time.
type ExportedMessage struct {
	MessageNumber   int       `json:"message_number"`
	Role            string    `json:"role"`
	Content         string    `json:"content"`
	Timestamp       time.Time `json:"timestamp"`
	TimeFromStartMs int64     `json:"time_from_start_ms"`
}

// ExportedChat is the structured (machine-readable) export of a full chat.
type ExportedChat struct {
	ChatID       uuid.UUID         `json:"chat_id"`
	Title        string            `json:"title"`
	Mode         ChatMode          `json:"mode"`
	SubCategory  string            `json:"sub_category,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	MessageCount int               `json:"message_count"`
	Conversation []ExportedMessage `json:"conversation"`
	ExportedAt   time.Time         `json:"exported_at"`
	ExportedBy   uuid.UUID         `json:"exported_by"`
}
