// Package reconcile implements the client-side optimistic-update protocol for
// an in-flight conversation. A consuming interface applies a local mutation
// before the server confirms it, then either replaces its view with the
// authoritative server state or rolls the mutation back.
//
// It depends only on the store's wire contract (the models package), never on
// the store itself.
package reconcile

import (
	"errors"
	"sync"

	"soulchat-backend/internal/models"

	"github.com/google/uuid"
)

// State of a conversation-in-progress.
type State int

const (
	// StateIdle means no local conversation exists yet.
	StateIdle State = iota
	// StatePending means exactly one optimistic mutation awaits the server.
	StatePending
	// StateCommitted means the local view equals the last authoritative state.
	StateCommitted
	// StateRolledBack means the last optimistic mutation was undone; the view
	// equals the prior committed state (or nothing, for a failed creation).
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePending:
		return "Pending"
	case StateCommitted:
		return "Committed"
	case StateRolledBack:
		return "RolledBack"
	}
	return "Unknown"
}

var (
	// ErrMutationInFlight is returned when a Begin call overlaps a pending one.
	ErrMutationInFlight = errors.New("an optimistic mutation is already pending")
	// ErrNoActiveChat is returned by BeginAppend before any chat is committed.
	ErrNoActiveChat = errors.New("no active chat to append to")
	// ErrNoPendingMutation is returned by Commit/Rollback outside Pending.
	ErrNoPendingMutation = errors.New("no optimistic mutation is pending")
)

// Session tracks the local view of one conversation-in-progress. The visible
// message list always shows a pending optimistic message exactly once: Commit
// replaces the whole view with the authoritative chat rather than appending.
type Session struct {
	mu         sync.Mutex
	state      State
	chat       *models.Chat
	pendingNew bool // the pending mutation created the chat locally
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the current reconciliation state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Chat returns a copy of the local conversation view, or nil if none exists.
func (s *Session) Chat() *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyChat(s.chat)
}

// Messages returns the user-visible message list.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		return nil
	}
	return append([]models.Message(nil), s.chat.Messages...)
}

// BeginCreate synthesizes a temporary local chat containing only the
// optimistic user message and transitions to Pending. The temporary id and
// title are placeholders discarded on Commit.
func (s *Session) BeginCreate(mode models.ChatMode, subCategory, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending {
		return models.Message{}, ErrMutationInFlight
	}

	msg, err := models.NewMessage(models.RoleUser, content)
	if err != nil {
		return models.Message{}, err
	}

	s.chat = &models.Chat{
		ID:          uuid.New(), // temporary local id
		Mode:        mode,
		SubCategory: subCategory,
		Title:       "New Chat",
		Messages:    []models.Message{msg},
	}
	s.state = StatePending
	s.pendingNew = true
	return msg, nil
}

// BeginAppend adds one optimistic user message to the committed chat and
// transitions to Pending. The assistant reply is never added optimistically;
// it does not exist until the server confirms it.
func (s *Session) BeginAppend(content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePending {
		return models.Message{}, ErrMutationInFlight
	}
	if s.chat == nil {
		return models.Message{}, ErrNoActiveChat
	}

	msg, err := models.NewMessage(models.RoleUser, content)
	if err != nil {
		return models.Message{}, err
	}

	s.chat.Messages = append(s.chat.Messages, msg)
	s.state = StatePending
	s.pendingNew = false
	return msg, nil
}

// Commit replaces the entire local view with the authoritative server chat,
// discarding any temporary identifiers, and transitions to Committed.
func (s *Session) Commit(authoritative *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return ErrNoPendingMutation
	}

	s.chat = copyChat(authoritative)
	s.state = StateCommitted
	s.pendingNew = false
	return nil
}

// Rollback undoes the pending optimistic mutation: a failed creation discards
// the temporary chat entirely; a failed append removes exactly the one
// optimistic user message, restoring the prior committed view.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePending {
		return ErrNoPendingMutation
	}

	if s.pendingNew {
		s.chat = nil
	} else {
		s.chat.Messages = s.chat.Messages[:len(s.chat.Messages)-1]
	}
	s.state = StateRolledBack
	s.pendingNew = false
	return nil
}

func copyChat(chat *models.Chat) *models.Chat {
	if chat == nil {
		return nil
	}
	c := *chat
	c.Messages = append([]models.Message(nil), chat.Messages...)
	return &c
}
