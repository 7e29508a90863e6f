package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"soulchat-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, reply string, capture *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if capture != nil {
			*capture = req
		}

		resp := completionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message ChatMessage `json:"message"`
		}{Message: ChatMessage{Role: "assistant", Content: reply}})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChatResponse(t *testing.T) {
	var captured completionRequest
	srv := completionServer(t, "I'm here for you.", &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	reply, err := client.ChatResponse(context.Background(), []ChatMessage{
		{Role: "user", Content: "I feel anxious today"},
	}, models.ModeMentalHealth)
	require.NoError(t, err)
	assert.Equal(t, "I'm here for you.", reply)

	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 500, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)

	// System prompt first, conversation after.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, SystemPrompt(models.ModeMentalHealth), captured.Messages[0].Content)
	assert.Equal(t, "I feel anxious today", captured.Messages[1].Content)
}

func TestChatResponseUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	_, err := client.ChatResponse(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, models.ModeGeneral)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestChatResponseNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	_, err := client.ChatResponse(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, models.ModeGeneral)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateTitle(t *testing.T) {
	var captured completionRequest
	srv := completionServer(t, `"Finding Calm"`, &captured)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	title := client.GenerateTitle(context.Background(), "I feel anxious today")

	// Quotes are stripped from the model output.
	assert.Equal(t, "Finding Calm", title)
	assert.Equal(t, 20, captured.MaxTokens)
	assert.InDelta(t, 0.5, captured.Temperature, 0.001)
}

func TestGenerateTitleFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	assert.Equal(t, FallbackTitle, client.GenerateTitle(context.Background(), "hello"))
}

func TestGenerateTitleEmptyOutputFallsBack(t *testing.T) {
	srv := completionServer(t, `""`, nil)
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", "test-model", 5*time.Second)
	assert.Equal(t, FallbackTitle, client.GenerateTitle(context.Background(), "hello"))
}

func TestWelcomeMessageByMode(t *testing.T) {
	for _, mode := range models.AllModes {
		assert.NotEmpty(t, WelcomeMessage(mode))
		assert.NotEmpty(t, SystemPrompt(mode))
	}
	// Unknown modes fall back to the general greeting.
	assert.Equal(t, WelcomeMessage(models.ModeGeneral), WelcomeMessage(models.ChatMode("bogus")))
}
