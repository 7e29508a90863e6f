package services

import (
	"soulchat-backend/internal/ai"
	"soulchat-backend/internal/models"
)

// contextWindowSize caps how many trailing messages are sent to the AI
// responder. Bounding the window caps responder cost and latency; truncation
// always drops the oldest messages first.
const contextWindowSize = 10

// buildContextWindow reduces a chat's message log to the slice handed to the
// responder: the last min(n, contextWindowSize) messages in original order,
// stripped to role and content.
func buildContextWindow(msgs []models.Message) []ai.ChatMessage {
	start := 0
	if len(msgs) > contextWindowSize {
		start = len(msgs) - contextWindowSize
	}

	window := make([]ai.ChatMessage, 0, len(msgs)-start)
	for _, m := range msgs[start:] {
		window = append(window, ai.ChatMessage{Role: m.Role, Content: m.Content})
	}
	return window
}
