package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/riskibarqy/pickem-league/internal/config"
	"github.com/riskibarqy/pickem-league/internal/domain/score"
	"github.com/riskibarqy/pickem-league/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/pickem-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/pickem-league/internal/observability"
	idgen "github.com/riskibarqy/pickem-league/internal/platform/id"
	"github.com/riskibarqy/pickem-league/internal/platform/logging"
	"github.com/riskibarqy/pickem-league/internal/platform/resilience"
	"github.com/riskibarqy/pickem-league/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Services holds the use cases wired over the configured store.
type Services struct {
	Scoring       *usecase.ScoringService
	Recalculation *usecase.RecalculationService
	Picks         *usecase.PickService
	GameSync      *usecase.GameSyncService
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry

	closeStore func() error
}

func (s *Services) Close() error {
	if s == nil || s.closeStore == nil {
		return nil
	}
	return s.closeStore()
}

func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	scoringOpts := []usecase.ScoringOption{
		usecase.WithScoringRules(score.Rules{LeagueOffset: cfg.LeagueTZOffset}),
	}
	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = observability.NewRegistry()
		scoringMetrics, err := observability.NewScoringMetrics(registry, cfg.ServiceName)
		if err != nil {
			_ = repos.close()
			return nil, fmt.Errorf("register scoring metrics: %w", err)
		}
		scoringOpts = append(scoringOpts, usecase.WithScoringMetrics(scoringMetrics))
	}

	scoring := usecase.NewScoringService(repos.games, repos.picks, repos.scores, repos.leagues, logger, scoringOpts...)
	return &Services{
		Scoring: scoring,
		Recalculation: usecase.NewRecalculationService(
			scoring,
			repos.leagues,
			idgen.NewUUIDGenerator(),
			logger,
			cfg.RecalcMaxConcurrency,
			cfg.MaxWeek,
		),
		Picks:      usecase.NewPickService(repos.games, repos.picks, repos.leagues, scoring, logger),
		GameSync:   usecase.NewGameSyncService(repos.games, repos.leagues, scoring, logger, cfg.GameSyncWorkers),
		Registry:   registry,
		closeStore: repos.close,
	}, nil
}

func NewHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if services == nil {
		return nil, fmt.Errorf("services cannot be nil")
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	anubisClient := anubis.NewClient(
		&http.Client{
			Timeout:   cfg.AnubisTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
		logger,
	)

	opts := httpapi.RouterOptions{
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		InternalJobToken:    cfg.InternalJobToken,
		RecalcRatePerSecond: cfg.RecalcRateLimit,
		RecalcRateBurst:     cfg.RecalcRateBurst,
	}
	if services.Registry != nil {
		httpMetrics, err := observability.NewHTTPMetrics(services.Registry, cfg.ServiceName)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		opts.Metrics = httpMetrics
		opts.MetricsHandler = observability.MetricsHandler(services.Registry)
	}

	handler := httpapi.NewHandler(services.Scoring, services.Recalculation, services.Picks, services.GameSync, logger)
	router := httpapi.NewRouter(handler, anubisClient, logger, opts)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
