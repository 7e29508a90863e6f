package ai

import "soulchat-backend/internal/models"

// System prompts keyed by chat mode. The responder never sees anything beyond
// one of these plus the role/content pairs handed to it.
var systemPrompts = map[models.ChatMode]string{
	models.ModeMentalHealth: `You are a compassionate AI assistant specializing in mental health support. You provide empathetic, supportive conversations while maintaining clear boundaries. Always remind users that you're not a replacement for professional mental health care. Be encouraging, validate feelings, and suggest healthy coping strategies. If someone mentions self-harm or suicide, immediately provide crisis resources.`,

	models.ModeSpiritual: `You are a wise and respectful AI assistant for spiritual guidance. You honor all spiritual traditions and beliefs. Provide thoughtful, non-dogmatic responses that encourage personal reflection and growth. Draw from various wisdom traditions when appropriate, but always respect the user's individual path and beliefs. Focus on inner peace, meaning, and spiritual development.`,

	models.ModeGeneral: `You are a helpful and supportive AI assistant. Be kind, empathetic, and provide thoughtful responses to user queries.`,
}

var welcomeMessages = map[models.ChatMode]string{
	models.ModeMentalHealth: "Hello! I'm here to provide a safe space for you to share your thoughts and feelings. Remember, while I can offer support and coping strategies, I'm not a replacement for professional mental health care. How are you feeling today?",

	models.ModeSpiritual: "Welcome, dear soul. I'm here to accompany you on your spiritual journey with wisdom and respect for all paths. Whether you seek guidance, reflection, or simply someone to listen to your spiritual thoughts, I'm here. What's on your heart today?",

	models.ModeGeneral: "Hello! I'm here to help and support you with whatever you'd like to discuss. How can I assist you today?",
}

const titleInstruction = "Generate a short, descriptive title (4-6 words) for this conversation based on the user's first message. Make it empathetic and supportive."

// FallbackTitle is used when title generation fails; title failure is never
// allowed to abort chat creation.
const FallbackTitle = "New Chat"

// SystemPrompt returns the system prompt for a mode, falling back to the
// general prompt for anything unrecognized.
func SystemPrompt(mode models.ChatMode) string {
	if p, ok := systemPrompts[mode]; ok {
		return p
	}
	return systemPrompts[models.ModeGeneral]
}

// WelcomeMessage returns the greeting shown before a chat exists, falling back
// to the general greeting for anything unrecognized.
func WelcomeMessage(mode models.ChatMode) string {
	if m, ok := welcomeMessages[mode]; ok {
		return m
	}
	return welcomeMessages[models.ModeGeneral]
}
