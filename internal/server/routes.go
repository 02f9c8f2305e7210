package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"seoscout/internal/db"
	"seoscout/internal/handlers/api"
	"seoscout/internal/history"
	"seoscout/internal/ratelimit"
	"seoscout/internal/research"
)

// Deps carries everything the route handlers need.
type Deps struct {
	DB       *db.DB
	Redis    *redis.Client // nil when history is in-memory
	History  history.Store
	Pipeline *research.Pipeline
	Governor *ratelimit.Governor
	Logger   *slog.Logger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	projectHandler := api.NewProjectHandler(deps.DB)
	conversationHandler := api.NewConversationHandler(deps.DB)
	researchHandler := api.NewResearchHandler(deps.DB, deps.Pipeline, deps.History, s.Cfg.DefaultPageSize, deps.Logger)
	healthHandler := api.NewHealthHandler(deps.DB, deps.Redis, deps.Governor)

	// Projects and tracked keywords
	s.App.Post("/api/projects", projectHandler.Create)
	s.App.Get("/api/projects", projectHandler.List)
	s.App.Get("/api/projects/:id", projectHandler.Get)
	s.App.Delete("/api/projects/:id", projectHandler.Delete)
	s.App.Post("/api/projects/:id/keywords", projectHandler.TrackKeywords)
	s.App.Get("/api/projects/:id/keywords", projectHandler.ListKeywords)
	s.App.Delete("/api/projects/:id/keywords/:keyword", projectHandler.UntrackKeyword)

	// Conversations and research
	s.App.Post("/api/projects/:id/conversations", conversationHandler.Create)
	s.App.Get("/api/conversations/:id", conversationHandler.Get)
	s.App.Post("/api/conversations/:id/research", researchHandler.Research)
	s.App.Post("/api/conversations/:id/research/more", researchHandler.ShowMore)

	// Observability
	s.App.Get("/health", healthHandler.Health)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
