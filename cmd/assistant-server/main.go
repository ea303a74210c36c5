// cmd/assistant-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"assistant-engine/internal/api"
	"assistant-engine/internal/audit"
	"assistant-engine/internal/common/camunda"
	"assistant-engine/internal/common/config"
	"assistant-engine/internal/common/database"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/common/metrics"
	"assistant-engine/internal/common/observability"
	"assistant-engine/internal/conversation"
	"assistant-engine/internal/dialogue/action"
	"assistant-engine/internal/dialogue/engine"
	"assistant-engine/internal/dialogue/intent"
	"assistant-engine/internal/lookup"
	"assistant-engine/internal/session"
	"assistant-engine/migrations"

	pct "assistant-engine/internal/workers/ai-conversation/process-chat-turn"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting assistant server", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, log)
	ctx := context.Background()

	var (
		checkers []database.Checker
		closers  []func() error
	)

	// --- Redis: sessions and the lookup cache ---
	var redisClient *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		redisClient = database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		checkers = append(checkers, redisClient)
		closers = append(closers, redisClient.Close)
		log.Info("redis connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
	}

	store := buildSessionStore(cfg, redisClient, log)

	// --- Audit sinks ---
	var sinks []audit.Sink
	if cfg.Audit.Postgres {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		applied, err := pg.Migrate(ctx, migrations.FS)
		if err != nil {
			zapLog.Fatal("postgres migrations failed", zap.Error(err))
		}
		if len(applied) > 0 {
			log.Info("postgres migrations applied", map[string]interface{}{"files": applied})
		}

		sink, err := audit.NewPostgresSink(pg.DB, cfg.Audit.Table)
		if err != nil {
			zapLog.Fatal("postgres audit sink", zap.Error(err))
		}
		sinks = append(sinks, sink)
		checkers = append(checkers, pg)
		closers = append(closers, pg.Close)
		log.Info("postgres audit enabled", map[string]interface{}{"table": cfg.Audit.Table})
	}

	if cfg.Audit.Elasticsearch {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sinks = append(sinks, audit.NewElasticsearchSink(es.Client, cfg.Audit.Index))
		checkers = append(checkers, es)
		log.Info("elasticsearch audit enabled", map[string]interface{}{"index": cfg.Audit.Index})
	}

	auditSink := audit.NewMultiSink(log, metrics.ObserveAuditFailure, sinks...)

	// --- Dialogue engine ---
	dispatcher := action.NewDispatcher(log)
	action.RegisterDefaults(dispatcher, action.Options{
		Lookup:         buildLookup(cfg, redisClient, log),
		LookupTimeout:  config.GetDuration(cfg.Dialogue.LookupTimeout),
		LookupObserver: metrics.ObserveLookup,
		YouTube:        searchProvider(action.YouTube, cfg.Dialogue.YouTubeSearchURL),
		Google:         searchProvider(action.Google, cfg.Dialogue.GoogleSearchURL),
	}, log)

	turnEngine := engine.New(intent.DefaultCatalog(), dispatcher, log,
		engine.WithObserver(func(out engine.Outcome, elapsed time.Duration) {
			metrics.ObserveTurn(out.Reply.Intent, string(out.State), out.Reply.Confidence, elapsed)
		}),
	)

	chat := conversation.NewService(turnEngine, store, log,
		conversation.WithAudit(auditSink),
		conversation.WithObservability(obs),
	)

	// --- Zeebe worker (optional) ---
	var (
		zeebe     *camunda.Client
		jobWorker worker.JobWorker
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda)
			if err != nil {
				return err
			}
			return zeebe.Ping(ctx)
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		checkers = append(checkers, zeebe)

		if config.IsWorkerEnabled(cfg, pct.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, pct.TaskType)
			handler := pct.NewHandler(pct.LoadConfig(wcfg), chat, log)
			jobWorker = camunda.StartWorker(zeebe.Raw(), pct.TaskType, wcfg, handler.Handle, log)
		} else {
			log.Info("worker disabled in configuration", map[string]interface{}{"taskType": pct.TaskType})
		}
	}

	// --- HTTP ---
	server := api.NewServer(cfg.Server, cfg.App.Environment, chat, log, checkers...)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("http server shutdown", map[string]interface{}{"error": err.Error()})
	}
	if jobWorker != nil {
		jobWorker.Close()
		jobWorker.AwaitClose()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			log.Error("error closing zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("error closing dependency", map[string]interface{}{"error": err.Error()})
		}
	}
	obs.Shutdown(shutdownCtx)

	log.Info("assistant server stopped", nil)
}

func buildSessionStore(cfg *config.Config, redisClient *database.RedisClient, log logger.Logger) session.Store {
	opts := session.Options{
		TTL:      time.Duration(cfg.Dialogue.SessionTTL) * time.Second,
		LockTTL:  config.GetDuration(cfg.Dialogue.LockTTL),
		LockWait: config.GetDuration(cfg.Dialogue.LockWait),
	}
	if cfg.Dialogue.SessionStore == config.SessionStoreRedis && redisClient != nil {
		log.Info("using redis session store", nil)
		return session.NewRedisStore(redisClient.Client, opts, log)
	}
	log.Info("using in-memory session store", nil)
	return session.NewMemoryStore(opts)
}

// buildLookup returns nil when the reference lookup is disabled, which
// leaves the wikipedia intent unregistered.
func buildLookup(cfg *config.Config, redisClient *database.RedisClient, log logger.Logger) lookup.Summarizer {
	w := cfg.APIs.Wikipedia
	if !w.Enabled {
		return nil
	}

	var source lookup.Summarizer = lookup.NewWikipediaClient(&lookup.WikipediaConfig{
		BaseURL:   w.BaseURL,
		UserAgent: w.UserAgent,
		Timeout:   config.GetDuration(w.Timeout),
		Sentences: w.Sentences,
	}, log)

	if redisClient != nil && w.CacheTTL > 0 {
		source = lookup.NewCachedSummarizer(source, redisClient.Client, time.Duration(w.CacheTTL)*time.Second, log)
	}
	return source
}

func searchProvider(base action.SearchProvider, urlTemplate string) action.SearchProvider {
	if urlTemplate != "" {
		base.URLTemplate = urlTemplate
	}
	return base
}
