package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kendinapp/kendin-backend/internal/clientip"
	"github.com/kendinapp/kendin-backend/internal/logger"
	"github.com/kendinapp/kendin-backend/internal/migration"
	"github.com/kendinapp/kendin-backend/internal/ratelimit"
	"github.com/kendinapp/kendin-backend/internal/reflection"
)

// DefaultMaxBodyBytes bounds request bodies when Deps.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 64 << 10

// ReflectionGenerator is implemented by *reflection.Generator.
type ReflectionGenerator interface {
	Generate(ctx context.Context, req reflection.Request) (*reflection.Result, error)
}

// DataMigrator is implemented by *migration.Migrator.
type DataMigrator interface {
	Migrate(ctx context.Context, req migration.Request) (*migration.Result, error)
}

// Pinger reports database reachability. *db.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	DB        Pinger
	Generator ReflectionGenerator
	Migrator  DataMigrator

	// ReflectionLimiter throttles generation per client. Nil disables it.
	ReflectionLimiter ratelimit.Limiter

	MaxBodyBytes int64
}

// Server holds dependencies for API handlers
type Server struct {
	deps Deps
}

// NewServer creates a new API server
func NewServer(deps Deps) *Server {
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{deps: deps}
}

// SetupRoutes configures HTTP routes.
//
// Function routes are mounted both under /functions/v1 (the path mobile
// clients already call) and at the root.
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(clientip.Middleware)
	r.Use(logger.Middleware)
	r.Use(spanEnricher)
	r.Use(accessLog)
	r.Use(recoverJSON)
	r.Use(cors)

	r.Get("/health", s.handleHealth)

	functions := func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.deps.ReflectionLimiter != nil {
				r.Use(ratelimit.Middleware(s.deps.ReflectionLimiter, handleRateLimited))
			}
			r.Post("/generate-reflection", withMaxBody(s.deps.MaxBodyBytes, HandleGenerateReflection(s.deps.Generator)))
		})
		r.Post("/migrate-user-data", withMaxBody(s.deps.MaxBodyBytes, HandleMigrateUserData(s.deps.Migrator)))
	}
	r.Route("/functions/v1", functions)
	r.Group(functions)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// handleHealth reports ok when the database answers a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(r.Context()); err != nil {
			logger.Ctx(r.Context()).Error("health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
}
