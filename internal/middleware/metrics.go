package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rising-ai-tgbot-go/internal/config"
	"github.com/rising-ai-tgbot-go/pkg/logger"
)

var (
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Messages processed, labeled by detected intent.",
	}, []string{"intent"})

	SearchResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_search_resolutions_total",
		Help: "Searches resolved, labeled by the source that answered.",
	}, []string{"source"})

	SearchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_search_failures_total",
		Help: "Searches where no source produced an adequate result.",
	})

	RaceWins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_provider_race_wins_total",
		Help: "Generation races won, labeled by provider.",
	}, []string{"provider"})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_generation_failures_total",
		Help: "Generations where every provider failed.",
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_generation_duration_seconds",
		Help:    "End-to-end generation latency.",
		Buckets: prometheus.DefBuckets,
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_cache_hits_total",
		Help: "Replies served from the response cache.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bot_rate_limited_total",
		Help: "Messages rejected by the per-user rate limiter.",
	})
)

// ObserveGeneration records one generation latency sample.
func ObserveGeneration(start time.Time) {
	GenerationDuration.Observe(time.Since(start).Seconds())
}

// StartMetricsServer exposes the metrics endpoint on its own port.
func StartMetricsServer(cfg config.MetricsConfig) {
	if !cfg.Enabled {
		return
	}
	r := mux.NewRouter()
	r.Handle(cfg.Path, promhttp.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		logger.WithField("addr", addr).Info("metrics server listening")
		if err := http.ListenAndServe(addr, r); err != nil {
			logger.Errorf("metrics server stopped: %v", err)
		}
	}()
}
