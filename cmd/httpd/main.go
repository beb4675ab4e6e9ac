// Command httpd runs the content engine HTTP service: the analysis API,
// the backlog processor, and the trending-topics refresher.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"

	"github.com/rawi-social/content-engine/internal/api"
	"github.com/rawi-social/content-engine/internal/cache"
	"github.com/rawi-social/content-engine/internal/config"
	"github.com/rawi-social/content-engine/internal/database"
	"github.com/rawi-social/content-engine/internal/engine"
	"github.com/rawi-social/content-engine/internal/lexicon"
	"github.com/rawi-social/content-engine/internal/logger"
	"github.com/rawi-social/content-engine/internal/metrics"
	"github.com/rawi-social/content-engine/internal/processor"
	"github.com/rawi-social/content-engine/internal/providers/openai"
	"github.com/rawi-social/content-engine/internal/trending"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Must(logger.Config{}).Fatal("config load failed", logger.Error(err))
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting content engine",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
	)

	db, err := database.NewPostgresConnection(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("database connection failed", logger.Error(err))
	}
	defer db.Close()
	log.Info("database connected", logger.String("host", cfg.Database.Host))

	postsRepo := database.NewPostsRepository(db)
	recsRepo := database.NewRecommendationsRepository(db)

	// Redis is optional. Without it the engine just recomputes analyses
	// and trending falls through to the database on every read.
	var analysisCache *cache.AnalysisCache
	if cfg.Redis.Address != "" {
		analysisCache, err = cache.New(cache.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			Database: cfg.Redis.Database,
			TTL:      cfg.Redis.CacheTTL,
		})
		if err != nil {
			log.Warn("redis unavailable, caching disabled", logger.Error(err))
			analysisCache = nil
		} else {
			defer analysisCache.Close()
			log.Info("redis connected", logger.String("address", cfg.Redis.Address))
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	provider := openai.New(openai.Config{
		APIKey:  cfg.Provider.APIKey,
		Model:   cfg.Provider.Model,
		Timeout: cfg.Provider.Timeout,
		RPS:     cfg.Provider.RPS,
	})
	var (
		qualityProvider    engine.QualityProvider
		sentimentProvider  engine.SentimentProvider
		moderationProvider engine.ModerationProvider
	)
	if provider != nil {
		qualityProvider = provider
		sentimentProvider = provider
		moderationProvider = provider
		log.Info("external provider enabled", logger.String("model", cfg.Provider.Model))
	} else {
		log.Info("no provider key configured, running on local heuristics")
	}

	lex := lexicon.Default()
	features := engine.NewFeatureExtractor(lex)

	engineCfg := engine.Config{
		Quality:    engine.NewQualityScorer(features, qualityProvider, cfg.Analysis.QualityMinChars, log, recorder),
		Tags:       engine.NewTagGenerator(lex, cfg.Analysis.MaxTags),
		Sentiment:  engine.NewSentimentClassifier(features, sentimentProvider, cfg.Analysis.SentimentMinChars, log, recorder),
		Moderation: engine.NewModerationFilter(lex, moderationProvider, log, recorder),
		Timeout:    cfg.Analysis.Timeout,
		Version:    cfg.Service.Version,
	}
	if analysisCache != nil {
		engineCfg.Cache = analysisCache
	}
	eng := engine.New(engineCfg, log, recorder)

	batch := processor.NewBatchProcessor(eng, postsRepo, 0, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Processor.Enabled {
		poller := processor.NewPoller(postsRepo, batch, log, processor.PollerConfig{
			BatchSize:    cfg.Processor.BatchSize,
			PollInterval: cfg.Processor.PollInterval,
			DatabaseRPS:  cfg.Processor.DatabaseRPS,
		})
		if err := poller.Start(ctx); err != nil {
			log.Fatal("poller start failed", logger.Error(err))
		}
		defer poller.Stop()
	}

	var trendingCache trending.TagCache
	if analysisCache != nil {
		trendingCache = analysisCache
	}
	trendingSvc := trending.New(postsRepo, trendingCache, cfg.Trending.Window, cfg.Trending.Limit, log)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Trending.Schedule, func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, time.Minute)
		defer refreshCancel()
		if err := trendingSvc.Refresh(refreshCtx); err != nil {
			log.Error("trending refresh failed", logger.Error(err))
		}
	}); err != nil {
		log.Fatal("trending schedule invalid",
			logger.String("schedule", cfg.Trending.Schedule), logger.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(eng, batch, postsRepo, recsRepo, trendingSvc, db, api.HandlerConfig{
		ServiceName:      cfg.Service.Name,
		Version:          cfg.Service.Version,
		FeedPageSize:     cfg.Feed.PageSize,
		RecommendLimit:   cfg.Recommend.Limit,
		RecentPostWindow: cfg.Recommend.RecentPostWindow,
	}, log)

	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, registry, log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("server error", logger.Error(err))
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info("server stopped")
	}
}
