// Package api provides the HTTP API server and handlers for Push Pickup.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dwinston/pushpickup/internal/auth"
	"github.com/dwinston/pushpickup/internal/http/response"
	"github.com/dwinston/pushpickup/internal/ratelimit"
	"github.com/dwinston/pushpickup/internal/service"
	"github.com/dwinston/pushpickup/internal/sse"
	"github.com/dwinston/pushpickup/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	tokens          *auth.TokenService
	authService     *service.AuthService
	gameService     *service.GameService
	rosterService   *service.RosterService
	commentService  *service.CommentService
	optionsService  *service.OptionsService
	feedbackService *service.FeedbackService
	searchService   *service.SearchService
	sseHandler      *sse.Handler
	authLimiter     *ratelimit.KeyedRateLimiter
	router          *chi.Mux
	logger          *slog.Logger
}

// Services bundles the service layer dependencies for the server.
type Services struct {
	Auth     *service.AuthService
	Games    *service.GameService
	Roster   *service.RosterService
	Comments *service.CommentService
	Options  *service.OptionsService
	Feedback *service.FeedbackService
	Search   *service.SearchService
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *store.Store, tokens *auth.TokenService, services Services, sseHandler *sse.Handler, logger *slog.Logger) *Server {
	s := &Server{
		store:           store,
		tokens:          tokens,
		authService:     services.Auth,
		gameService:     services.Games,
		rosterService:   services.Roster,
		commentService:  services.Comments,
		optionsService:  services.Options,
		feedbackService: services.Feedback,
		searchService:   services.Search,
		sseHandler:      sseHandler,
		// Credential guessing gets 10 attempts per minute per IP.
		authLimiter: ratelimit.New(10.0/60.0, 10),
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited by IP).
		r.Route("/auth", func(r chi.Router) {
			r.Use(RateLimitMiddleware(s.authLimiter, s.logger))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/verify-email", s.handleVerifyEmail)
			r.With(s.requireAuth).Post("/logout", s.handleLogout)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
			r.Post("/me/unsubscribe-all", s.handleUnsubscribeAll)
		})

		// Games are world-readable; mutations need an account.
		r.Route("/games", func(r chi.Router) {
			r.Get("/", s.handleListGames)
			r.Get("/search", s.handleSearchGames)
			r.Get("/nearby", s.handleNearbyGames)
			r.Get("/{id}", s.handleGetGame)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleAddGame)
				r.Put("/{id}", s.handleEditGame)
				r.Delete("/{id}", s.handleCancelGame)

				r.Post("/{id}/players", s.handleAddSelf)
				r.Post("/{id}/players/friends", s.handleAddFriends)
				r.Put("/{id}/players", s.handleRenamePlayer)
				r.Delete("/{id}/players", s.handlePullPlayer)
				r.Post("/{id}/leave", s.handleLeaveGame)

				r.Post("/{id}/comments", s.handleAddComment)
				r.Delete("/{id}/comments", s.handleRemoveComment)
			})
		})

		// Option catalogs: values are public, edits are admin only.
		r.Route("/options", func(r chi.Router) {
			r.Get("/{name}", s.handleGetOption)
			r.With(s.requireAuth, s.requireAdmin).Put("/{name}", s.handleUpdateOption)
		})

		// Feedback works signed in or anonymous.
		r.With(s.optionalAuth).Post("/feedback", s.handleSendFeedback)

		// Admin maintenance.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Post("/reindex", s.handleReindex)
		})

		// Live game updates over SSE.
		r.With(s.optionalAuth).Get("/events", s.handleEvents)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// handleEvents upgrades the request to a server-sent event stream. Anonymous
// listeners get the public broadcast; authenticated ones also get their
// targeted events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.sseHandler.Stream(w, r, getUserID(ctx), isAdmin(ctx))
}

// parsePaginationParams extracts limit and cursor query parameters.
func parsePaginationParams(r *http.Request) store.PaginationParams {
	params := store.DefaultPaginationParms()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			params.Limit = limit
		}
	}

	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		params.Cursor = cursor
	}

	params.Validate()

	return params
}
