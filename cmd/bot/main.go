package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/internal/handlers"
	"github.com/rising-ai-tgbot-go/internal/i18n"
	"github.com/rising-ai-tgbot-go/internal/middleware"
	"github.com/rising-ai-tgbot-go/internal/services/cache"
	"github.com/rising-ai-tgbot-go/internal/services/generate"
	"github.com/rising-ai-tgbot-go/internal/services/llm"
	"github.com/rising-ai-tgbot-go/internal/services/search"
	"github.com/rising-ai-tgbot-go/internal/services/session"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Local development convenience, production sets real env vars.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePath:   cfg.Logging.File.Path,
		MaxSize:    cfg.Logging.File.MaxSize,
		MaxBackups: cfg.Logging.File.MaxBackups,
		MaxAge:     cfg.Logging.File.MaxAge,
	})

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatalf("failed to create bot: %v", err)
	}
	logger.WithField("username", bot.Self.UserName).Info("authorized on telegram")

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatalf("failed to create session store: %v", err)
	}
	defer store.Close()

	sessions := session.NewManager(store, cfg.Session.MaxHistory, defaultSystemPrompt, cfg.Providers.KnownModels())

	clients := make([]llm.Client, 0, len(cfg.Providers.Endpoints))
	for _, ep := range cfg.Providers.Endpoints {
		clients = append(clients, llm.NewOpenAIClient(ep, cfg.Providers.TopP))
	}
	generator := generate.NewGenerator(clients, cfg.Providers.Temperature)

	var assist handlers.IntentAssist
	if len(clients) > 0 {
		assist = clients[0]
	}

	loc, err := i18n.NewManager(cfg.I18n.DefaultLanguage, cfg.I18n.Languages)
	if err != nil {
		logger.Fatalf("failed to load translations: %v", err)
	}

	handler := handlers.New(
		bot,
		cfg,
		sessions,
		search.NewResolver(cfg.Search),
		generator,
		cache.NewResponseCache(cfg.Cache),
		middleware.NewRateLimiter(cfg.RateLimit),
		loc,
		assist,
	)

	middleware.StartMetricsServer(cfg.Monitoring.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = cfg.Bot.UpdateTimeout
	updates := bot.GetUpdatesChan(updateConfig)

	logger.Info("bot started, waiting for updates")
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			handler.HandleUpdate(ctx, update)
		}
	}
}

const defaultSystemPrompt = "You are a helpful, knowledgeable assistant chatting on Telegram. Be natural and direct. When live data is provided, prefer it over anything you remember."

func newStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Type == "redis" {
		return session.NewRedisStore(cfg.Session.Redis)
	}
	logger.Warn("using in-memory session store, sessions are lost on restart")
	return session.NewMemoryStore(), nil
}
