package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"soulchat-backend/internal/models"
)

// ErrUnavailable is returned when the responder fails or times out. Callers
// treat a failed reply as fatal for the enclosing operation; title generation
// degrades to FallbackTitle instead.
var ErrUnavailable = errors.New("ai responder unavailable")

// ChatMessage is the only shape the responder ever receives: conversational
// role and text, no timestamps or identifiers.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Responder is the external text-completion collaborator.
type Responder interface {
	// ChatResponse returns the assistant completion for the given context
	// window under the mode's system prompt.
	ChatResponse(ctx context.Context, msgs []ChatMessage, mode models.ChatMode) (string, error)
	// GenerateTitle produces a short supportive title from the chat's first
	// user message. Returns FallbackTitle on any failure.
	GenerateTitle(ctx context.Context, firstUserMessage string) string
}

// Client calls a Groq-style OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Responder = (*Client)(nil)

// NewClient creates a responder client. timeout bounds every completion call;
// a call exceeding it fails with ErrUnavailable.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// ChatResponse implements Responder.
func (c *Client) ChatResponse(ctx context.Context, msgs []ChatMessage, mode models.ChatMode) (string, error) {
	prompt := []ChatMessage{{Role: "system", Content: SystemPrompt(mode)}}
	prompt = append(prompt, msgs...)

	content, err := c.complete(ctx, completionRequest{
		Model:       c.model,
		Messages:    prompt,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		log.Printf("ERROR [ai.Client] ChatResponse: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return content, nil
}

// GenerateTitle implements Responder.
func (c *Client) GenerateTitle(ctx context.Context, firstUserMessage string) string {
	content, err := c.complete(ctx, completionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: titleInstruction},
			{Role: "user", Content: fmt.Sprintf("Generate a title for a conversation that starts with: %q", firstUserMessage)},
		},
		MaxTokens:   20,
		Temperature: 0.5,
	})
	if err != nil {
		log.Printf("WARN [ai.Client] GenerateTitle failed, using fallback: %v", err)
		return FallbackTitle
	}

	title := strings.TrimSpace(strings.NewReplacer(`"`, "", "'", "").Replace(content))
	if title == "" {
		return FallbackTitle
	}
	return title
}

func (c *Client) complete(ctx context.Context, reqBody completionRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
