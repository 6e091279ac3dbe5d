package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leasap/portal-server-go/internal/chatdemo"
	"github.com/leasap/portal-server-go/internal/config"
	"github.com/leasap/portal-server-go/internal/database"
	"github.com/leasap/portal-server-go/internal/handler"
	"github.com/leasap/portal-server-go/internal/jobs"
	"github.com/leasap/portal-server-go/internal/middleware"
	"github.com/leasap/portal-server-go/internal/redis"
	"github.com/leasap/portal-server-go/internal/repository"
	"github.com/leasap/portal-server-go/internal/service"
	"github.com/leasap/portal-server-go/internal/supabase"
	"github.com/leasap/portal-server-go/internal/upstream"
)

func main() {
	godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	var store repository.CredentialStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := db.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()
		log.Info().Msg("database connected")

		store = repository.NewCredentialStore(db.DB)
	} else {
		log.Warn().Msg("no DATABASE_URL, holding credential sessions in memory")
		store = repository.NewMemoryCredentialStore()
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	upstreamClient := upstream.NewClient(cfg.BackendBaseURL, store, cfg.UpstreamTimeout())
	supabaseClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)

	authService := service.NewAuthService(store, upstreamClient, supabaseClient, cfg.SessionSecret, cfg.SessionTTL())
	dashboardService := service.NewDashboardService(upstreamClient)
	formsService := service.NewFormsService(upstreamClient, supabaseClient)

	guard := middleware.NewSessionGuard(authService, config.SignInPath)
	loginLimiter := middleware.NewLoginRateLimiter()
	sessionRateLimit := middleware.NewSessionRateLimitMiddleware(redisClient.Client, cfg.PortalRateLimit)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService, dashboardService, cfg.SessionTTL(), isProduction)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, upstreamClient)
	formsHandler := handler.NewFormsHandler(formsService)
	demoHandler := handler.NewDemoChatHandler(chatdemo.DefaultScript, true)
	spaHandler := handler.NewSPAHandler(cfg.StaticDir)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeadersMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(csrfMiddleware.Handler)

		// chat demo streams; body limits and timeouts stay off this route
		r.Get("/demo/chat", demoHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Use(bodyLimitMiddleware.Handler)

			r.Post("/contact", formsHandler.Contact)
			r.Post("/book-demo", formsHandler.BookDemo)

			r.Route("/auth", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(loginLimiter.Handler)
					r.Post("/signin", authHandler.SignIn)
					r.Post("/signup", authHandler.SignUp)
				})
				r.Post("/logout", authHandler.Logout)
				r.With(guard.API).Get("/me", authHandler.Me)
			})
		})
	})

	r.Route("/portal/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(csrfMiddleware.Handler)
		r.Use(guard.API)
		r.Use(sessionRateLimit.Handler)
		r.Mount("/", dashboardHandler.Routes(guard))
	})

	// guarded pages bounce anonymous browsers to sign-in before the SPA loads
	for _, path := range []string{"/properties", "/properties/*", "/dashboard", "/uploadpage"} {
		r.With(guard.Page).Get(path, spaHandler.ServeHTTP)
	}
	r.Get("/*", spaHandler.ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(store, dashboardService, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
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
