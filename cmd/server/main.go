package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/credit-market/config"
	"github.com/ErlanBelekov/credit-market/internal/catalogstats"
	"github.com/ErlanBelekov/credit-market/internal/email"
	"github.com/ErlanBelekov/credit-market/internal/health"
	"github.com/ErlanBelekov/credit-market/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/credit-market/internal/infrastructure/redis"
	ctxlog "github.com/ErlanBelekov/credit-market/internal/log"
	"github.com/ErlanBelekov/credit-market/internal/metrics"
	"github.com/ErlanBelekov/credit-market/internal/oauth"
	"github.com/ErlanBelekov/credit-market/internal/password"
	"github.com/ErlanBelekov/credit-market/internal/token"
	httptransport "github.com/ErlanBelekov/credit-market/internal/transport/http"
	"github.com/ErlanBelekov/credit-market/internal/transport/http/handler"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("JWT_SECRET not set, using the local development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
	}

	deps := []health.Dependency{{Name: "postgres", Pinger: pool}}

	// OAuth state
	var states oauth.StateStore = oauth.NewMemoryStateStore()
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		redisStates := redis.NewStateStore(rdb)
		states = redisStates
		deps = append(deps, health.Dependency{Name: "redis", Pinger: redisStates})
	}

	// Users
	userRepo := postgres.NewUserRepository(pool)
	tokens := token.NewManager([]byte(cfg.JWTSecret), cfg.TokenTTL)
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, password.NewHasher(cfg.BcryptCost), sender, logger, cfg.AllowAdminSignup)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	federation := oauth.NewFederation(cfg.OAuthRedirectBase, map[oauth.Provider]oauth.ProviderSettings{
		oauth.ProviderGoogle:  {ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
		oauth.ProviderDiscord: {ClientID: cfg.DiscordClientID, ClientSecret: cfg.DiscordClientSecret},
	}, states)
	var oauthHandler *handler.OAuthHandler
	if enabled := federation.Enabled(); len(enabled) > 0 {
		oauthHandler = handler.NewOAuthHandler(federation, authUsecase, logger)
		logger.Info("oauth enabled", "providers", enabled)
	}

	// Products
	productRepo := postgres.NewProductRepository(pool)
	productUsecase := usecase.NewProductUsecase(productRepo, cfg.MaxProductCredits)
	productHandler := handler.NewProductHandler(productUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer, deps...)

	statsJob := catalogstats.NewJob(productRepo, logger)
	statsJob.Run()
	statsCron, err := catalogstats.NewScheduler(statsJob, catalogstats.DefaultSpec)
	if err != nil {
		stop()
		log.Fatalf("catalog stats: %v", err)
	}
	statsCron.Start()

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, tokens, authUsecase, authHandler, productHandler, oauthHandler, cfg.RequestTimeout()),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
	<-statsCron.Stop().Done()
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
