package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"makeusbetter-backend/internal/config"
	"makeusbetter-backend/internal/handlers"
	"makeusbetter-backend/internal/middleware"
	"makeusbetter-backend/internal/repository"
	"makeusbetter-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	emotionRepo := repository.NewEmotionRepository(db)

	// Initialize services
	wsHub := services.NewWSHub()
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret)
	pairService := services.NewPairService(userRepo, authService, wsHub)
	notifier, err := services.NewNotifier(cfg.APNs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push notifier")
	}
	mediaService, err := services.NewMediaService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}
	userService := services.NewUserService(userRepo, mediaService)
	emotionService := services.NewEmotionService(emotionRepo, userRepo, pairService, notifier, wsHub)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	pairHandler := handlers.NewPairHandler(pairService)
	emotionHandler := handlers.NewEmotionHandler(emotionService)
	userHandler := handlers.NewUserHandler(userService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	notificationHandler := handlers.NewNotificationHandler(userRepo, notifier)
	wsHandler := handlers.NewWebSocketHandler(wsHub, authService, pairService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(authService))

			r.Post("/pair/create", pairHandler.CreatePair)
			r.Post("/pair/join", pairHandler.JoinPair)
			r.Get("/pair/partner", pairHandler.GetPartner)

			r.Post("/emotions", emotionHandler.CreateEmotion)
			r.Get("/emotions/calendar", emotionHandler.GetCalendar)
			r.Get("/emotions/today", emotionHandler.GetToday)

			r.Get("/user/profile", userHandler.GetProfile)
			r.Put("/user/push-token", userHandler.UpdatePushToken)
			r.Post("/user/avatar", userHandler.UpdateAvatar)

			r.Post("/media/voice", mediaHandler.UploadVoice)

			r.Post("/debug/notification/send/{userId}", notificationHandler.SendToUser)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
