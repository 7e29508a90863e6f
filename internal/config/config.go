package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort        string
	DatabaseURL     string // empty means run on the in-memory store
	JWTSecret       string
	TokenExpiration time.Duration

	// AI responder settings (Groq-style OpenAI-compatible endpoint).
	GroqAPIKey       string
	GroqBaseURL      string
	GroqModel        string
	AIRequestTimeout time.Duration

	MetricsNamespace string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "default-super-secret-key") // CHANGE THIS IN PRODUCTION!
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Println("Warning: DATABASE_URL not set; falling back to the in-memory store (data is not persisted).")
	}

	tokenExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 24)

	apiKey := getEnv("GROQ_API_KEY", "")
	if apiKey == "" {
		log.Fatal("FATAL: GROQ_API_KEY environment variable is not set.")
	}

	cfg := &Config{
		HTTPPort:         port,
		DatabaseURL:      dbURL,
		JWTSecret:        jwtSecret,
		TokenExpiration:  time.Hour * time.Duration(tokenExpHours),
		GroqAPIKey:       apiKey,
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:        getEnv("GROQ_MODEL", "llama3-8b-8192"),
		AIRequestTimeout: time.Second * time.Duration(getEnvInt("AI_REQUEST_TIMEOUT_SECONDS", 30)),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "soulchat"),
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, TokenExp=%s, Model=%s, AITimeout=%s",
		cfg.HTTPPort, cfg.TokenExpiration, cfg.GroqModel, cfg.AIRequestTimeout)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a default.
func getEnvInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}
