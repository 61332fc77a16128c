package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/pawhaven/pawhaven-api/internal/config"
	"github.com/pawhaven/pawhaven-api/internal/domain/account"
	"github.com/pawhaven/pawhaven-api/internal/domain/audit"
	"github.com/pawhaven/pawhaven-api/internal/domain/auth"
	"github.com/pawhaven/pawhaven-api/internal/domain/care"
	"github.com/pawhaven/pawhaven-api/internal/domain/ledger"
	"github.com/pawhaven/pawhaven-api/internal/domain/opsfeed"
	"github.com/pawhaven/pawhaven-api/internal/domain/ratelimit"
	"github.com/pawhaven/pawhaven-api/internal/domain/rewards"
	"github.com/pawhaven/pawhaven-api/internal/domain/xp"
	"github.com/pawhaven/pawhaven-api/internal/middleware"
	"github.com/pawhaven/pawhaven-api/internal/pkg/database"
	"github.com/pawhaven/pawhaven-api/internal/pkg/jwt"
	"github.com/pawhaven/pawhaven-api/internal/pkg/logger"
	pkgresponse "github.com/pawhaven/pawhaven-api/internal/pkg/response"
	"github.com/pawhaven/pawhaven-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting PawHaven API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	accountRepo := account.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	xpRepo := xp.NewRepository(db)
	rewardsRepo := rewards.NewRepository(db)

	// ---------- Rate limiting ----------
	limiter := ratelimit.NewLimiter(ratelimit.NewRedisStore(redisClient))

	// ---------- Services ----------
	ledgerService := ledger.NewService(ledgerRepo)
	xpService := xp.NewService(xpRepo, ledgerService)
	authService := auth.NewService(accountRepo, ledgerService, limiter, jwtService)
	careService := care.NewService(accountRepo, ledgerService, xpService, limiter)
	auditService := audit.NewService(accountRepo, ledgerService)

	// ---------- Ops feed hub ----------
	opsHub := opsfeed.NewHub()
	go opsHub.Run()
	defer opsHub.Shutdown()

	// ---------- Daily rewards ----------
	processor := rewards.NewProcessor(rewardsRepo, ledgerService).WithNotifier(opsHub)

	if cfg.ArchiveEnabled {
		var store storage.ObjectStore
		switch cfg.ArchiveDriver {
		case "local":
			store, err = storage.NewLocalStorage(cfg.ArchiveLocalPath)
		default:
			store, err = storage.NewS3Storage(storage.S3Config{
				Bucket:    cfg.ArchiveBucket,
				Region:    cfg.ArchiveRegion,
				Endpoint:  cfg.ArchiveEndpoint,
				AccessKey: cfg.ArchiveAccessKey,
				SecretKey: cfg.ArchiveSecretKey,
			})
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive storage")
		}
		processor.WithArchiver(rewards.NewRunArchive(store))
	}

	var worker *rewards.Worker
	if cfg.RewardsWorkerEnabled {
		worker = rewards.NewWorker(processor, rewardsRepo, cfg.RewardsWorkerInterval)
		worker.Start()
		defer worker.Stop()
	}

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	accountHandler := account.NewHandler(accountRepo, ledgerService)
	careHandler := care.NewHandler(careService)
	rewardsHandler := rewards.NewHandler(processor, rewardsRepo)
	auditHandler := audit.NewHandler(auditService)
	opsHandler := opsfeed.NewHandler(opsHub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// http.TimeoutHandler cannot hijack, so the websocket mount
		// stays outside this group.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Mount("/auth", authHandler.Routes())
			r.Mount("/accounts", accountHandler.Routes(authMiddleware))
			r.Mount("/care", careHandler.Routes(authMiddleware))
			r.Mount("/rewards", rewardsHandler.Routes(authMiddleware))
			r.Mount("/audit", auditHandler.Routes(authMiddleware))
		})

		// WebSocket: token may arrive as a query parameter
		r.Mount("/ops", opsRoutes(opsHandler, authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// opsRoutes lets dashboards pass the access token as ?token= since browser
// WebSocket clients cannot set Authorization headers.
func opsRoutes(h *opsfeed.Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if token := req.URL.Query().Get("token"); token != "" && req.Header.Get("Authorization") == "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Mount("/", h.Routes(authMiddleware))

	return r
}
