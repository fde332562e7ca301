package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/livescore/external/espn"
	"github.com/riskibarqy/livescore/external/goal"
	"github.com/riskibarqy/livescore/external/sofascore"
	"github.com/riskibarqy/livescore/external/streamed"
	"github.com/riskibarqy/livescore/external/webclient"
	"github.com/riskibarqy/livescore/internal/config"
	"github.com/riskibarqy/livescore/internal/interfaces/httpapi"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
	"github.com/riskibarqy/livescore/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	// One webclient per provider keeps the circuit breakers independent:
	// a failing source opens only its own circuit, never its neighbours'.
	newWeb := func() *webclient.Client {
		return webclient.New(webclient.Config{
			Timeout:     cfg.ProviderTimeout,
			MaxRetries:  cfg.ProviderMaxRetries,
			InsecureTLS: cfg.ProviderInsecureTLS,
			Logger:      logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ProviderCircuitEnabled,
				FailureThreshold: cfg.ProviderCircuitFailureCount,
				OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMaxReq,
			},
		})
	}

	scoresSvc := usecase.NewLiveScoreService(
		goal.NewClient(newWeb(), cfg.GoalBaseURL),
		espn.NewClient(newWeb(), cfg.ESPNBaseURL),
		sofascore.NewClient(newWeb(), cfg.SofaScoreBaseURL),
		streamed.NewClient(newWeb(), cfg.StreamedBaseURL),
		cfg.CacheTTL,
		cfg.MaxLiveStaleSeconds,
		logger,
	)

	handler := httpapi.NewHandler(scoresSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
