package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/services"
	"soulchat-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// ChatHandlers handles HTTP requests related to chats.
type ChatHandlers struct {
	chatService *services.ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
	}
}

// HandleGetWelcome handles GET /v1/chats/welcome/{chatType}. Public; returns
// the mode-specific greeting shown before a chat exists.
func (h *ChatHandlers) HandleGetWelcome(w http.ResponseWriter, r *http.Request) {
	chatType := chi.URLParam(r, "chatType")
	httputil.RespondJSON(w, http.StatusOK, models.WelcomeResponse{
		Success:        true,
		WelcomeMessage: h.chatService.WelcomeMessage(chatType),
		ChatType:       chatType,
	})
}

// HandleCreateChat handles POST /v1/chats: a new chat from its first user
// message.
func (h *ChatHandlers) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	chat, err := h.chatService.CreateChat(r.Context(), owner, req)
	if err != nil {
		log.Printf("CreateChat handler failed for owner %s: %v", owner, err)
		respondChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, models.CreateChatResponse{
		Success: true,
		Chat:    chat,
		Message: "Chat created successfully",
	})
}

// HandleSendMessage handles POST /v1/chats/{chatID}/messages.
func (h *ChatHandlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	defer r.Body.Close()

	userMsg, aiMsg, err := h.chatService.SendMessage(r.Context(), owner, chatID, req.Message)
	if err != nil {
		log.Printf("SendMessage handler failed for chat %s: %v", chatID, err)
		respondChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.SendMessageResponse{
		Success:     true,
		UserMessage: userMsg,
		AIResponse:  aiMsg,
	})
}

// HandleGetChat handles GET /v1/chats/{chatID}.
func (h *ChatHandlers) HandleGetChat(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), owner, chatID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.GetChatResponse{
		Success: true,
		Chat:    chat,
	})
}

// HandleListChats handles GET /v1/chats with optional mode, page and
// page_size query parameters.
func (h *ChatHandlers) HandleListChats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	resp, err := h.chatService.ListChats(r.Context(), owner, q.Get("mode"), page, pageSize)
	if err != nil {
		log.Printf("ListChats handler failed for owner %s: %v", owner, err)
		respondChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleToggleBookmark handles PATCH /v1/chats/{chatID}/bookmark.
func (h *ChatHandlers) HandleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	bookmarked, err := h.chatService.ToggleBookmark(r.Context(), owner, chatID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	message := "Chat removed from bookmarks"
	if bookmarked {
		message = "Chat bookmarked"
	}
	httputil.RespondJSON(w, http.StatusOK, models.BookmarkResponse{
		Success:      true,
		IsBookmarked: bookmarked,
		Message:      message,
	})
}

// HandleDeleteChat handles DELETE /v1/chats/{chatID}.
func (h *ChatHandlers) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	chat, err := h.chatService.DeleteChat(r.Context(), owner, chatID)
	if err != nil {
		respondChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.DeleteChatResponse{
		Success: true,
		Message: "Chat deleted successfully",
		DeletedChat: models.DeletedChat{
			ID:    chat.ID,
			Title: chat.Title,
			Mode:  chat.Mode,
		},
	})
}

// HandleExportChat handles GET /v1/chats/{chatID}/export?format=json|text.
// The rendered chat is delivered as a download attachment.
func (h *ChatHandlers) HandleExportChat(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	chatID, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = services.ExportFormatJSON
	}

	export, err := h.chatService.ExportChat(r.Context(), owner, chatID, format)
	if err != nil {
		respondChatError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		log.Printf("ExportChat handler failed writing response for chat %s: %v", chatID, err)
	}
}
