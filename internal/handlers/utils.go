package handlers

import (
	"errors"
	"net/http"

	"soulchat-backend/internal/ai"
	"soulchat-backend/internal/auth"
	"soulchat-backend/internal/models"
	"soulchat-backend/internal/store"
	"soulchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ownerID extracts the authenticated owner from the request context. A missing
// owner means the auth middleware did not run; respond 401 and return false.
func ownerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := auth.GetOwnerIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

// chatIDParam parses the {chatID} URL parameter. Responds 400 and returns
// false when it is not a valid UUID.
func chatIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "chatID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondChatError maps service and store errors to HTTP status codes:
// validation failures are 400, unknown chats 404, responder outages 502,
// anything else 500.
func respondChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidMode),
		errors.Is(err, models.ErrInvalidMessage),
		errors.Is(err, models.ErrInvalidRole):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, ai.ErrUnavailable):
		httputil.RespondError(w, http.StatusBadGateway, "AI service is currently unavailable")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
