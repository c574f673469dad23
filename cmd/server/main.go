package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/beelyapp/beely/internal/ai"
	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/chat"
	"github.com/beelyapp/beely/internal/config"
	"github.com/beelyapp/beely/internal/db"
	"github.com/beelyapp/beely/internal/email"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/httpapi"
	"github.com/beelyapp/beely/internal/httpapi/handlers"
	"github.com/beelyapp/beely/internal/logging"
	"github.com/beelyapp/beely/internal/metrics"
	"github.com/beelyapp/beely/internal/store/rabbitmq"
	"github.com/beelyapp/beely/internal/store/redisstore"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rds.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, captcha endpoints will fail", zap.Error(err))
	}
	cancel()

	// probe jobs are optional; video creation works without the queue
	var publisher handlers.ProbePublisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Warn("rabbitmq unavailable, video probes disabled", zap.Error(err))
	} else {
		defer pub.Close()
		publisher = pub
	}

	var mailer email.Sender = email.Nop{}
	smtp := email.NewSMTPSender(email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})
	if smtp.Enabled() {
		mailer = smtp
	} else {
		log.Warn("SMTP_HOST not set, outgoing mail is discarded")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	providers := newProviderRegistry(cfg, log)

	chatRepo := chat.NewRepo(gdb)
	catRepo := catalog.NewRepo(gdb)
	videoRepo := feed.NewRepo(gdb)

	asst := chat.NewAssistant(chatRepo, chat.AssistantConfig{
		Registry:      providers,
		ProviderName:  cfg.AIProvider,
		ContextWindow: cfg.ChatContextWindowSize,
		Logger:        log,
		Metrics:       m,
	})

	h := handlers.NewHandler(handlers.Deps{
		DB:        gdb,
		Cfg:       cfg,
		Captcha:   rds,
		Mailer:    mailer,
		Publisher: publisher,
		ChatSvc:   chat.NewService(chatRepo, catRepo, asst),
		Composer:  feed.NewComposer(videoRepo, catRepo, cfg.FeedVideoLimit, m),
		Likes:     feed.NewLikes(gdb, m),
		Logger:    log,
	})
	r := httpapi.NewRouter(h, cfg, log, m, reg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("ai_provider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}

// newProviderRegistry registers every chat backend behind a circuit breaker.
func newProviderRegistry(cfg config.Config, log *zap.Logger) *ai.Registry {
	reg := ai.NewRegistryWithBreaker(ai.BreakerConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		OnStateChange: func(provider, from, to string) {
			log.Warn("ai breaker state changed",
				zap.String("provider", provider),
				zap.String("from", from),
				zap.String("to", to),
			)
		},
	})

	opts := ai.Options{MaxTokens: cfg.AIMaxTokens, Temperature: cfg.AITemperature}
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second

	// the default instances are shared so their rate limiter sees every turn
	openRouter := ai.NewOpenRouterProvider(
		cfg.OpenRouterBaseURL,
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterModel,
		cfg.OpenRouterSiteURL,
		cfg.OpenRouterAppName,
		opts,
		timeout,
		cfg.AIRateLimitPerMin,
	)
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		model = strings.TrimSpace(model)
		if model == "" || model == cfg.OpenRouterModel {
			return openRouter, nil
		}
		return ai.NewOpenRouterProvider(
			cfg.OpenRouterBaseURL,
			cfg.OpenRouterAPIKey,
			model,
			cfg.OpenRouterSiteURL,
			cfg.OpenRouterAppName,
			opts,
			timeout,
			cfg.AIRateLimitPerMin,
		), nil
	})

	// Register Ollama
	ollama := ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, opts, timeout)
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		model = strings.TrimSpace(model)
		if model == "" || model == cfg.OllamaModel {
			return ollama, nil
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, model, opts, timeout), nil
	})

	return reg
}
