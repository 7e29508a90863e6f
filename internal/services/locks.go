package services

import (
	"sync"

	"github.com/google/uuid"
)

// conversationLocks hands out one mutex per conversation id, so mutations to
// a single chat serialize for the whole read-modify-append-persist sequence
// while operations on different chats proceed in parallel. Entries are
// reference-counted and dropped once the last holder releases.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*conversationLock
}

type conversationLock struct {
	mu   sync.Mutex
	refs int
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[uuid.UUID]*conversationLock)}
}

// lock acquires the mutex for id and returns the matching release func.
func (l *conversationLocks) lock(id uuid.UUID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &conversationLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
