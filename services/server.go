package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prepmate/backend/models"
	"github.com/prepmate/backend/repository"
	ws "github.com/prepmate/backend/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config *Config
	repo   *repository.GORMRepository
	stats  *repository.StatsRepository
	gormDB *gorm.DB

	groqService         *GroqService
	ttsService          *TTSService
	evaluator           *AnswerEvaluator
	interviewer         *Interviewer
	summaryService      *SummaryService
	gamificationService *GamificationService
	sweeper             *SessionSweeper
	room                *InterviewRoom

	authService           *AuthService
	authEndpoints         *AuthEndpoints
	sessionEndpoints      *SessionEndpoints
	coachEndpoints        *CoachEndpoints
	gamificationEndpoints *GamificationEndpoints

	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, config.CORS.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connections
func (s *Server) SetDatabase(repo *repository.GORMRepository, gormDB *gorm.DB, pool *pgxpool.Pool) {
	s.repo = repo
	s.gormDB = gormDB
	if pool != nil {
		s.stats = repository.NewStatsRepository(pool)
	}
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GroqAPIKey != "" {
		s.groqService = NewGroqService(s.config.AI.GroqAPIKey, s.config.AI.GroqBaseURL, s.config.AI.Model)
		s.evaluator = NewAnswerEvaluator(s.groqService)
		s.interviewer = NewInterviewer(s.groqService)
		slog.Info("Groq service initialized", "model", s.config.AI.Model)
	} else {
		slog.Warn("Groq API key not configured, AI features disabled")
	}

	s.ttsService = NewTTSService(s.config.TTS.ElevenLabsKey, NewAudioCache(s.config.TTS.CacheDir))
	if s.ttsService != nil {
		slog.Info("Question audio service initialized", "cache_dir", s.config.TTS.CacheDir)
	}

	if s.repo != nil && s.groqService != nil {
		s.summaryService = NewSummaryService(s.repo, s.groqService)
		s.sweeper = NewSessionSweeper(s.repo, s.summaryService)
		slog.Info("Summary service and session sweeper initialized")
	}

	if s.repo != nil && s.stats != nil {
		s.gamificationService = NewGamificationService(s.repo, s.stats)
		s.gamificationEndpoints = NewGamificationEndpoints(s.repo, s.stats, s.gamificationService)
		slog.Info("Gamification service initialized")
	}

	if s.config.JWT.Secret != "" && s.repo != nil {
		s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		s.sessionEndpoints = NewSessionEndpoints(s.repo, s.interviewer, s.evaluator, s.summaryService, s.gamificationService, s.ttsService)
		s.coachEndpoints = NewCoachEndpoints(s.repo)
		slog.Info("Authentication service initialized")
	}

	if s.repo != nil && s.interviewer != nil && s.evaluator != nil && s.summaryService != nil {
		s.room = NewInterviewRoom(s.repo, s.interviewer, s.evaluator, s.summaryService, s.gamificationService)
		slog.Info("Interview room initialized")
	}

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)

		// WebSocket interview room (protected)
		if s.authService != nil && s.room != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				r.Get("/ws", s.websocketHandlerFunc)
			})
		}

		// Authentication routes
		if s.authEndpoints != nil {
			r.Route("/auth", func(r chi.Router) {
				// Public auth routes (no middleware)
				r.Post("/login", s.authEndpoints.LoginHandler)
				r.Post("/signup", s.authEndpoints.SignupHandler)
				r.Post("/refresh", s.authEndpoints.RefreshHandler)
				r.Post("/logout", s.authEndpoints.LogoutHandler)

				// Protected auth routes (with middleware)
				r.Group(func(r chi.Router) {
					r.Use(s.authService.Middleware)
					r.Get("/me", s.authEndpoints.MeHandler)
				})
			})
		}

		// Interview, coach and gamification routes (protected)
		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)
				if s.sessionEndpoints != nil {
					s.sessionEndpoints.RegisterRoutes(r)
				}
				if s.coachEndpoints != nil {
					s.coachEndpoints.RegisterRoutes(r)
				}
				if s.gamificationEndpoints != nil {
					s.gamificationEndpoints.RegisterRoutes(r)
				}
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if s.sweeper != nil {
		s.sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// corsMiddleware answers preflight requests and stamps CORS headers on
// every response. With a wildcard configuration the request origin is
// echoed back so cookie credentials still work.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(origin, s.config.CORS.AllowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(origin, allowedOriginsStr string) bool {
	if allowedOriginsStr == "" {
		return false
	}
	if allowedOriginsStr == "*" {
		return true
	}

	for _, allowed := range strings.Split(allowedOriginsStr, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}

// checkOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func checkOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	if originAllowed(origin, allowedOriginsStr) {
		return true
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.gormDB != nil {
		if sqlDB, err := s.gormDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	payload := map[string]interface{}{
		"status":   status,
		"database": dbStatus,
	}
	if s.ttsService != nil {
		if files, size, err := s.ttsService.CacheStats(); err == nil {
			payload["audio_cache"] = map[string]interface{}{"files": files, "bytes": size}
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	// Get user from context (set by auth middleware)
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		slog.Error("WebSocket connection failed - user not found in context")
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", user.ID, "session_id", sessionID)

	client := s.wsHub.RegisterClient(conn, user.ID, sessionID)
	client.MessageHandler = s.room.HandleMessage
	client.CloseHandler = s.room.HandleDisconnect

	go client.ReadPump()
	go client.WritePump()
	go s.room.HandleConnection(client)
}
