package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sdr-backend/internal/admin"
	"sdr-backend/internal/auth"
	"sdr-backend/internal/cache"
	"sdr-backend/internal/config"
	"sdr-backend/internal/db"
	"sdr-backend/internal/leads"
	"sdr-backend/internal/middleware"
	"sdr-backend/internal/notifications"
	"sdr-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
	}

	var jwtManager *auth.Manager
	if cfg.JWTSecret != "" {
		jwtManager = &auth.Manager{
			Secret:     []byte(cfg.JWTSecret),
			AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
			Issuer:     "sdr-backend",
		}
	}

	var notifier leads.Notifier
	if mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.NotifyEmail, cfg.BrevoSandbox); mailer != nil {
		notifier = mailer
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	} else {
		logger.Info("brevo mailer disabled")
	}

	val := validation.New()

	forwarder := leads.NewForwarder(cfg.UpstreamLeadsURL, cfg.FrontendOrigin, time.Duration(cfg.UpstreamTimeoutSec)*time.Second)
	leadsRepo := leads.NewRepository(cols.Leads)
	leadsService := leads.NewService(leadsRepo, cfg.Timezone, notifier)
	leadsHandler := leads.NewHandler(leadsService, forwarder, val, cacheStore, time.Duration(cfg.CacheTTLSeconds)*time.Second, logger)

	adminHandler := admin.NewHandler(cfg, cols.Users, val, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	leadsLimiter := middleware.NewRateLimiter(cfg.RateLimitLeads, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	registerRoutes := func(api chi.Router) {
		api.Route("/leads", func(rt chi.Router) {
			// CORS first: preflights answer 200 {} before the guard or
			// limiter can touch them.
			rt.Use(middleware.CORS())
			rt.Use(leadsLimiter.Middleware)
			rt.Use(middleware.APIKeyAuth(cfg.AdminAPIKey))
			rt.Post("/", leadsHandler.Relay)
		})

		api.Route("/admin", func(adminRt chi.Router) {
			adminRt.Post("/login", adminHandler.Login)
			adminRt.Post("/refresh", adminHandler.Refresh)
			adminRt.Post("/logout", adminHandler.Logout)

			// Important (chi): middlewares must be attached before defining routes.
			// Session endpoints stay public; the rest sits behind a sub-router.
			adminRt.Group(func(protected chi.Router) {
				protected.Use(middleware.AdminAuth(cfg.AdminAPIKey, jwtManager))
				protected.Get("/leads", leadsHandler.AdminList)
				protected.Get("/leads/{id}", leadsHandler.AdminGetByID)
				protected.Patch("/leads/{id}/status", leadsHandler.AdminUpdateStatus)
			})
		})
	}

	// /api/... is the path the deployed form posts to; /api/v1/... pins the
	// current lead schema so a future shape can ship beside it.
	r.Route("/api", registerRoutes)
	r.Route("/api/v1", registerRoutes)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
