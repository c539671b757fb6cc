package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lusolingo/internal/audio"
	"lusolingo/internal/catalog"
	"lusolingo/internal/config"
	"lusolingo/internal/database"
	"lusolingo/internal/handlers"
	"lusolingo/internal/repository"
	"lusolingo/internal/security"
	"lusolingo/internal/service"
	"lusolingo/internal/sessionstore"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const runStoreTTL = 2 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(db.MigrationsDir(cfg.MigrationsPath)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load the lesson catalog eagerly so content errors fail startup
	loader := service.NewLessonLoader(catalog.Load)
	if err := loader.Warm(); err != nil {
		log.Fatalf("Failed to load lesson catalog: %v", err)
	}

	log.Printf("Lesson catalog loaded (%d topics, %d lessons)", len(loader.AllTopics()), len(loader.AllLessons()))

	// Live run store: in-memory by default, Redis when configured
	runStore, err := sessionstore.New(cfg.RedisURL, runStoreTTL)
	if err != nil {
		log.Fatalf("Failed to initialize run store: %v", err)
	}
	defer runStore.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	lessonService := service.NewLessonService(service.DefaultDifficultyConfig())
	progressService := service.NewProgressService(lessonService, loader, progressRepo)
	ttsService := audio.NewTTSService(cfg.TTSBaseURL, cfg.TTSVoice, cfg.TTSCacheDir)

	reportService, err := service.NewReportService(cfg.AWSRegion, cfg.ReportFromEmail)
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}

	oauthProviders := buildOAuthProviders(cfg)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	loginLimiter := security.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	authHandler := handlers.NewAuthHandler(authService, oauthProviders, cfg.BaseURL)
	lessonHandler := handlers.NewLessonHandler(loader)
	progressHandler := handlers.NewProgressHandler(progressService, reportService)
	runHandler := handlers.NewRunHandler(runStore, lessonService, loader, progressService)
	ttsHandler := handlers.NewTTSHandler(ttsService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", handlers.RateLimit(loginLimiter, authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", handlers.RateLimit(loginLimiter, authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/auth/settings", middleware.RequireAuth(authHandler.UpdateSettings))
	mux.HandleFunc("GET /api/auth/providers", authHandler.ListOAuthProviders)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)

	// Catalog routes
	mux.HandleFunc("GET /api/topics", lessonHandler.Topics)
	mux.HandleFunc("GET /api/topics/{id}", lessonHandler.Topic)
	mux.HandleFunc("GET /api/topics/{id}/lessons", lessonHandler.TopicLessons)
	mux.HandleFunc("GET /api/lessons", lessonHandler.Lessons)
	mux.HandleFunc("GET /api/lessons/{id}", lessonHandler.Lesson)
	mux.HandleFunc("GET /api/lessons/{id}/image", lessonHandler.LessonImage)
	mux.HandleFunc("POST /api/catalog/invalidate", middleware.RequireAuth(lessonHandler.InvalidateCatalog))

	// Progress routes
	mux.HandleFunc("GET /api/lessons/available", middleware.RequireAuth(progressHandler.AvailableLessons))
	mux.HandleFunc("GET /api/lessons/{id}/availability", middleware.RequireAuth(progressHandler.Availability))
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progressHandler.Overview))
	mux.HandleFunc("GET /api/progress/building-blocks", middleware.RequireAuth(progressHandler.BuildingBlocks))
	mux.HandleFunc("GET /api/hints", middleware.RequireAuth(progressHandler.Hints))
	mux.HandleFunc("POST /api/report", middleware.RequireAuth(progressHandler.SendReport))

	// Lesson run routes
	mux.HandleFunc("POST /api/run/start", middleware.RequireAuth(runHandler.Start))
	mux.HandleFunc("GET /api/run", middleware.RequireAuth(runHandler.State))
	mux.HandleFunc("GET /api/run/current", middleware.RequireAuth(runHandler.Current))
	mux.HandleFunc("POST /api/run/answer", middleware.RequireAuth(runHandler.Answer))
	mux.HandleFunc("POST /api/run/advance", middleware.RequireAuth(runHandler.Advance))
	mux.HandleFunc("POST /api/run/reset", middleware.RequireAuth(runHandler.Reset))
	mux.HandleFunc("POST /api/run/complete", middleware.RequireAuth(runHandler.Complete))

	// TTS routes
	mux.HandleFunc("GET /api/tts", ttsHandler.Speak)
	mux.HandleFunc("GET /api/tts/health", ttsHandler.Health)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background cleanup
	go cleanupExpired(authService, runStore)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// buildOAuthProviders assembles the configured OAuth providers. Providers
// without credentials are still listed but rejected by the handlers.
func buildOAuthProviders(cfg *config.Config) map[string]handlers.OAuthProvider {
	appleSecret := ""
	if cfg.AppleClientID != "" {
		secret, err := handlers.GenerateAppleClientSecret(cfg.AppleTeamID, cfg.AppleClientID, cfg.AppleKeyID, cfg.ApplePrivateKey)
		if err != nil {
			log.Printf("Warning: Apple sign-in disabled: %v", err)
		} else {
			appleSecret = secret
		}
	}

	return map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"apple": {
			Name:  "apple",
			Label: "Apple",
			Config: &oauth2.Config{
				ClientID:     cfg.AppleClientID,
				ClientSecret: appleSecret,
				Endpoint: oauth2.Endpoint{
					AuthURL:  "https://appleid.apple.com/auth/authorize",
					TokenURL: "https://appleid.apple.com/auth/token",
				},
				Scopes: []string{"name", "email"},
			},
			AuthParams: map[string]string{
				"response_mode": "query",
			},
		},
	}
}

// cleanupExpired periodically removes expired auth sessions and, when the run
// store is in-memory, purges expired lesson runs.
func cleanupExpired(authService *service.AuthService, runStore sessionstore.Store) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}

		if memStore, ok := runStore.(*sessionstore.MemoryStore); ok {
			if purged := memStore.PurgeExpired(); purged > 0 {
				log.Printf("Purged %d expired lesson runs", purged)
			}
		}
	}
}
