package api

import (
	"net/http"
	"time"

	"soulchat-backend/internal/config"
	"soulchat-backend/internal/handlers"
	"soulchat-backend/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	AuthHandler    *handlers.AuthHandler
	ChatHandler    *handlers.ChatHandlers
	HistoryHandler *handlers.HistoryHandlers
	Config         *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- CORS Configuration ---
	// Adjust AllowedOrigins for your frontend deployment(s)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.vercel.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	r.Route("/v1/auth", func(r chi.Router) {
		if deps.AuthHandler == nil {
			panic("AuthHandler dependency is nil in router setup")
		}
		r.Post("/signup", deps.AuthHandler.HandleSignup)
		r.Post("/login", deps.AuthHandler.HandleLogin)
	})

	// The welcome greeting needs no account; the frontend shows it before
	// signup.
	r.Get("/v1/chats/welcome/{chatType}", deps.ChatHandler.HandleGetWelcome)

	// --- Authenticated Routes (JWT Required) ---
	r.Route("/v1", func(r chi.Router) {
		r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))

		r.Route("/chats", func(r chi.Router) {
			if deps.ChatHandler == nil {
				panic("ChatHandler dependency is nil in router setup")
			}
			r.Post("/", deps.ChatHandler.HandleCreateChat)
			r.Get("/", deps.ChatHandler.HandleListChats)

			if deps.HistoryHandler != nil {
				r.Get("/history/detailed", deps.HistoryHandler.HandleGetDetailedHistory)
				r.Get("/analytics/statistics", deps.HistoryHandler.HandleGetStatistics)
			}

			r.Route("/{chatID}", func(r chi.Router) {
				r.Get("/", deps.ChatHandler.HandleGetChat)
				r.Delete("/", deps.ChatHandler.HandleDeleteChat)
				r.Post("/messages", deps.ChatHandler.HandleSendMessage)
				r.Patch("/bookmark", deps.ChatHandler.HandleToggleBookmark)
				r.Get("/export", deps.ChatHandler.HandleExportChat)
			})
		})
	})

	return r
}
