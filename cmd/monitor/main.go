package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/xaenox/marketwatch/internal/classifier"
	"github.com/xaenox/marketwatch/internal/conversation"
	"github.com/xaenox/marketwatch/internal/dedup"
	"github.com/xaenox/marketwatch/internal/models"
	"github.com/xaenox/marketwatch/internal/monitor"
	"github.com/xaenox/marketwatch/internal/notify"
	"github.com/xaenox/marketwatch/internal/responder"
	"github.com/xaenox/marketwatch/internal/source"
	"github.com/xaenox/marketwatch/internal/storage"
	"github.com/xaenox/marketwatch/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		memStore := storage.NewMemoryStorage()
		for _, account := range cfg.Accounts {
			memStore.AddAccount(models.Account{Email: account.Email, Usable: true})
		}
		for _, product := range cfg.Products {
			memStore.AddProduct(models.Product{
				ID:          product.ID,
				Title:       product.Title,
				Description: product.Description,
				Price:       product.Price,
				Condition:   product.Condition,
			})
		}
		store = memStore
	} else {
		logger.Info("Using PostgreSQL storage")
		dbConfig := storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		}
		store, err = storage.NewPostgresStorage(dbConfig)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Refuse to start without at least one usable account
	accounts, err := store.ListUsableAccounts(ctx)
	if err != nil {
		logger.Fatal("Failed to list accounts", zap.Error(err))
	}
	if len(accounts) == 0 {
		logger.Fatal("No usable accounts configured, refusing to start")
	}

	clf := classifier.NewKeywordClassifier()

	filter := dedup.NewFilter(store, cfg.Monitor.StalenessThreshold, cfg.Monitor.FingerprintContentLength, logger)
	if err := filter.Preload(ctx); err != nil {
		logger.Fatal("Failed to load fingerprint ledger", zap.Error(err))
	}

	contexts := conversation.NewStore(cfg.Monitor.ContextRetention)

	generator := responder.NewOpenAIGenerator(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)
	resolver := responder.NewSubstringResolver(store, logger)
	engine := responder.NewEngine(generator, resolver, contexts, clf, cfg.Monitor.AITimeout, cfg.Monitor.MaxContextMessages, logger)

	var notifier monitor.Notifier = monitor.NopNotifier{}
	if cfg.Telegram.Enabled {
		tn, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.OperatorChatID, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram notifier", zap.Error(err))
		}
		notifier = tn
	}

	scraper := source.NewClient(cfg.Scraper.BaseURL, cfg.Scraper.Timeout)

	m := monitor.New(scraper, scraper, notifier, engine, filter, clf, store, store, cfg.Monitor.PollInterval, logger)

	stats := m.Run(ctx)
	logger.Info("Monitor shut down",
		zap.Int("messages_found", stats.MessagesFound),
		zap.Int("processed", stats.Processed),
		zap.Int("responses_sent", stats.ResponsesSent),
		zap.Int("escalations", stats.Escalations),
		zap.Int("errors", stats.Errors))
}
