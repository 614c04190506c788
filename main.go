package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vngglass/orderchat/internal/catalog"
	"github.com/vngglass/orderchat/internal/conversation"
	"github.com/vngglass/orderchat/internal/core"
	"github.com/vngglass/orderchat/internal/nlu"
	"github.com/vngglass/orderchat/internal/order"
	"github.com/vngglass/orderchat/internal/session"
	"github.com/vngglass/orderchat/internal/webhook"
	"github.com/vngglass/orderchat/internal/zalo"
	logx "github.com/vngglass/orderchat/pkg/logger"
	pkgredis "github.com/vngglass/orderchat/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// Infrastructure
	Redis    pkgredis.Config
	Database catalog.Config

	// Messaging provider
	Zalo zalo.Config

	// LLM provider; optional, heuristics-only without an API key
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Intent classifier
	NLU        nlu.Config
	NLUTimeout string `envconfig:"NLU_TIMEOUT" default:"5s"`

	// Conversation behaviour
	SessionTTL string `split_words:"true" default:"30m"`
	DedupTTL   string `split_words:"true" default:"24h"`
	MaxRetries int    `split_words:"true" default:"3"`
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.SessionTTL).Msg("invalid SESSION_TTL")
	}
	dedupTTL, err := time.ParseDuration(cfg.DedupTTL)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.DedupTTL).Msg("invalid DEDUP_TTL")
	}
	nluTimeout, err := time.ParseDuration(cfg.NLUTimeout)
	if err != nil {
		logx.Fatal().Err(err).Str("value", cfg.NLUTimeout).Msg("invalid NLU_TIMEOUT")
	}

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()

	db, err := catalog.Open(cfg.Database, &order.ZaloOrder{}, &order.ZaloOrderDetail{})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise database")
	}

	cfg.NLU.APIKey = cfg.APIKey
	cfg.NLU.BaseURL = cfg.BaseURL

	var classifier conversation.Classifier
	if cfg.NLU.Enabled() {
		gc, err := nlu.NewGeminiClassifier(ctx, cfg.NLU)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to initialise intent classifier")
		}
		classifier = gc
	} else {
		logx.Warn().Msg("no classifier API key configured, running on heuristics only")
	}

	engine := conversation.NewEngine(
		conversation.NewResolver(classifier, nluTimeout),
		catalog.NewDirectory(db),
		order.NewFinalizer(db),
		cfg.MaxRetries,
	)

	svc := webhook.NewService(
		session.NewRedisStore(rdb, sessionTTL),
		session.NewKeyed(),
		session.NewDedup(rdb, dedupTTL),
		engine,
		zalo.NewMessenger(cfg.Zalo),
	)

	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	webhook.NewHandler(svc).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logx.Info().Str("addr", cfg.HTTPAddr).Str("environment", env.String()).Msg("webhook server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-stopCtx.Done()
	logx.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error().Err(err).Msg("graceful shutdown failed")
	}
}
