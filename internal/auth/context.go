package auth

import (
	"context"

	"github.com/google/uuid"
)

// GetOwnerIDFromContext retrieves the authenticated owner id from the request
// context. Returns the id and true if found, otherwise uuid.Nil and false.
func GetOwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(uuid.UUID)
	return ownerID, ok
}

// WithOwnerID returns a context carrying the authenticated owner id.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, OwnerIDKey, ownerID)
}
