package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/api"
	"github.com/loanlens/analysis-api/internal/api/handler"
	"github.com/loanlens/analysis-api/internal/core/ports"
	"github.com/loanlens/analysis-api/internal/core/prompt"
	"github.com/loanlens/analysis-api/internal/core/service"
	"github.com/loanlens/analysis-api/internal/infrastructure/config"
	mongodb "github.com/loanlens/analysis-api/internal/infrastructure/db/mongo"
	redisdb "github.com/loanlens/analysis-api/internal/infrastructure/db/redis"
	"github.com/loanlens/analysis-api/internal/infrastructure/llm"
	"github.com/loanlens/analysis-api/internal/infrastructure/queue"
	"github.com/loanlens/analysis-api/internal/infrastructure/scoring"
	"github.com/loanlens/analysis-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// @title        Loan Analysis API
// @version      1.0
// @description  Scores a loan application and explains the decision in plain language.
// @BasePath     /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// The configured logger may not exist yet if config loading failed.
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("loan analysis api stopped")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "loan-analysis-api",
	})
	log.Info().Str("env", cfg.Env).Msg("starting loan analysis api")

	guidance, err := prompt.ParseRejectionGuidance(cfg.Prompt.RejectionGuidance)
	if err != nil {
		return err
	}
	composer := prompt.NewComposer(prompt.Options{
		IncludeGreeting:   cfg.Prompt.IncludeGreeting,
		CurrencySymbol:    cfg.Prompt.CurrencySymbol,
		RejectionGuidance: guidance,
		MaxPoints:         cfg.Prompt.MaxPoints,
	})
	active := composer.Options()
	log.Info().
		Bool("greeting", active.IncludeGreeting).
		Str("currency", active.CurrencySymbol).
		Str("rejection_guidance", string(active.RejectionGuidance)).
		Int("max_points", active.MaxPoints).
		Msg("prompt variant")

	scorer := scoring.NewClient(scoring.Config{
		Endpoint: cfg.Scoring.Endpoint,
		Timeout:  cfg.Scoring.Timeout,
	}, log.With().Str("component", "scoring").Logger())

	explainer, err := llm.NewGeminiExplainer(ctx, llm.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, log.With().Str("component", "llm").Logger())
	if err != nil {
		return err
	}

	checks := map[string]handler.CheckFunc{"scoring": scorer.Ping}

	// --- Audit trail (optional) ---
	var audit ports.AuditSink
	if cfg.Mongo.URI != "" {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer disconnect(client.Disconnect, log)

		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			log.Warn().Err(err).Msg("could not ensure audit indexes")
		}

		// Workers outlive the signal context so queued records are flushed on Close.
		dispatcher := queue.NewAuditDispatcher(cfg.AuditWorkers, mongodb.NewAnalysisRepository(db), log.With().Str("component", "audit").Logger())
		dispatcher.Start(context.WithoutCancel(ctx))
		defer dispatcher.Close()

		audit = dispatcher
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		log.Info().Str("database", cfg.Mongo.Database).Msg("audit trail enabled")
	}

	// --- Rate limiting (optional) ---
	deps := api.Dependencies{
		RequireApplicantIdentity: cfg.RequireApplicantIdentity,
		AllowedOrigins:           cfg.AllowedOrigins,
		JWTSecret:                cfg.JWTSecret,
		ReadinessChecks:          checks,
		Log:                      log,
	}
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer disconnect(func(context.Context) error { return rdb.Close() }, log)

		deps.Limiter = redisdb.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info().Int("per_minute", cfg.RateLimitPerMinute).Msg("rate limiting enabled")
	}

	deps.Service = service.NewAnalysisService(scorer, composer, explainer, audit, log.With().Str("component", "analysis").Logger())
	e := api.NewRouter(deps)
	if cfg.AllowsAnyOrigin() {
		log.Warn().Msg("CORS reflects any origin with credentials; set ALLOWED_ORIGINS in production")
	} else {
		log.Info().Strs("origins", cfg.AllowedOrigins).Msg("CORS restricted")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func disconnect(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Msg("disconnect failed")
	}
}
