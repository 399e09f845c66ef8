// Package server wires handlers, middleware, and routes, and owns the HTTP
// server lifecycle. It is the composition root: every dependency is
// constructed and connected here, so the rest of the codebase stays free of
// wiring concerns.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/linknest/internal/auth"
	"github.com/sakif/linknest/internal/blob"
	"github.com/sakif/linknest/internal/config"
	"github.com/sakif/linknest/internal/genai"
	"github.com/sakif/linknest/internal/handler"
	"github.com/sakif/linknest/internal/middleware"
	"github.com/sakif/linknest/internal/repository/postgres"
	"github.com/sakif/linknest/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *postgres.DB
}

// New assembles the full dependency graph:
// postgres.DB → services → handlers → routes.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, blob.Config{
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(blobs); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes(blobs blob.Store) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var google *auth.GoogleProvider
	if s.cfg.GoogleClientID != "" && s.cfg.GoogleClientSecret != "" {
		google = auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleCallbackURL)
	} else {
		s.logger.Warn("Google OAuth not configured — OAuth routes disabled")
	}

	var bios service.BioGenerator
	if s.cfg.GeminiAPIKey != "" {
		bios = genai.NewClient(s.cfg.GeminiAPIKey, s.cfg.GeminiModel)
	} else {
		s.logger.Warn("GEMINI_API_KEY not set — bio suggestions disabled")
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	userService := service.NewUserService(s.db, blobs, bios, s.logger)
	linkService := service.NewLinkService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, google, s.cfg.FrontendURL, s.cfg.IsProduction(), s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	linkHandler := handler.NewLinkHandler(linkService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.NotFound(handler.NotFoundHandler)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			if google != nil {
				r.Get("/google", authHandler.HandleGoogleLogin)
				r.Get("/google/callback", authHandler.HandleGoogleCallback)
			}
			r.With(requireAuth).Get("/verify", authHandler.HandleVerify)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(requireAuth).Get("/me", userHandler.HandleMe)
			r.With(requireAuth).Put("/me", userHandler.HandleUpdateMe)
			r.With(requireAuth).Patch("/me", userHandler.HandleUpdateMe)
			r.With(requireAuth).Delete("/me/avatar", userHandler.HandleDeleteAvatar)
			r.With(requireAuth).Post("/me/bio", userHandler.HandleSuggestBio)
			r.Get("/{username}", userHandler.HandleGetByUsername)
		})

		r.Route("/links", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", linkHandler.HandleList)
			r.Post("/", linkHandler.HandleCreate)
			r.Put("/{id}", linkHandler.HandleUpdate)
			r.Delete("/{id}", linkHandler.HandleDelete)
		})

		r.Route("/social-links", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", linkHandler.HandleListSocial)
			r.Post("/", linkHandler.HandleCreateSocial)
			r.Put("/{id}", linkHandler.HandleUpdateSocial)
			r.Delete("/{id}", linkHandler.HandleDeleteSocial)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.Env),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
