package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors returned before any persistence or responder call.
var (
	ErrInvalidMode    = errors.New("invalid chat mode")
	ErrInvalidMessage = errors.New("message content must not be empty")
	ErrInvalidRole    = errors.New("invalid message role")
	ErrInvalidDate    = errors.New("invalid date, expected RFC 3339 or YYYY-MM-DD")
)

// ChatMode is the enumerated conversation category. It fixes which system
// prompt and welcome text the AI responder uses and is immutable after creation.
type ChatMode string

const (
	ModeMentalHealth ChatMode = "mental-health"
	ModeSpiritual    ChatMode = "spiritual"
	ModeGeneral      ChatMode = "general"
)

// AllModes lists every recognized chat mode.
var AllModes = []ChatMode{ModeMentalHealth, ModeSpiritual, ModeGeneral}

// Valid reports whether m is a recognized chat mode.
func (m ChatMode) Valid() bool {
	switch m {
	case ModeMentalHealth, ModeSpiritual, ModeGeneral:
		return true
	}
	return false
}

// ParseMode validates a raw mode string.
// Returns ErrInvalidMode for anything outside the enumerated set.
func ParseMode(raw string) (ChatMode, error) {
	m := ChatMode(raw)
	if !m.Valid() {
		return "", ErrInvalidMode
	}
	return m, nil
}

// Message roles. Only the user and the assistant appear in a conversation log.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn within a chat's ordered, append-only log.
// Messages have no identity outside their parent chat; they are created only
// by an append and destroyed only with the chat.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage validates and constructs a message stamped with the current time.
func NewMessage(role, content string) (Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return Message{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrInvalidMessage
	}
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}, nil
}

// Chat is the full record of one conversation thread for one owner and one mode.
// Messages is append-only: never reordered, never individually deleted.
// IsBookmarked is the only attribute besides the message sequence that is
// mutable after creation.
type Chat struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"owner_id" db:"owner_id"`
	Mode         ChatMode  `json:"mode" db:"mode"`
	SubCategory  string    `json:"sub_category,omitempty" db:"sub_category"`
	Title        string    `json:"title" db:"title"`
	Messages     []Message `json:"messages" db:"messages"`
	IsBookmarked bool      `json:"is_bookmarked" db:"is_bookmarked"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LastMessage returns the most recent message, or nil for an empty log.
func (c *Chat) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// FirstMessage returns the oldest message, or nil for an empty log.
func (c *Chat) FirstMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[0]
}

// Duration is the delta between the first and last message timestamps.
// Zero when the chat holds fewer than two messages.
func (c *Chat) Duration() time.Duration {
	if len(c.Messages) < 2 {
		return 0
	}
	return c.Messages[len(c.Messages)-1].Timestamp.Sub(c.Messages[0].Timestamp)
}

// CountByRole returns how many messages in the log carry the given role.
func (c *Chat) CountByRole(role string) int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == role {
			n++
		}
	}
	return n
}

// User represents an account in the database. The chat core itself only ever
// sees the user's ID as an owner id; the auth layer owns the rest.
type User struct {
	ID             uuid.UUID `db:"id"`
	Email          string    `db:"email"`
	HashedPassword string    `db:"hashed_password"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
