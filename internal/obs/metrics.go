package obs

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// PushTokens counts per-token push results by outcome (success, failure, unregistered).
	PushTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "push_tokens_total",
		Help: "Push tokens handed to the transport, by outcome.",
	}, []string{"outcome"})
	// PushBatchFailures counts dispatches where the transport failed as a whole.
	PushBatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "push_batch_failures_total",
		Help: "Dispatches that failed at the transport level.",
	})
	// NotificationsStored counts notification records by write outcome (saved, failed, invalid).
	NotificationsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_stored_total",
		Help: "Notification records written, by outcome.",
	}, []string{"outcome"})
	// SubmissionDuration observes the full resolve/dispatch/store cycle per listing.
	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listing_submission_duration_seconds",
		Help:    "Time to resolve, dispatch and store notifications for one listing.",
		Buckets: prometheus.DefBuckets,
	})
)

// BootstrapMetricsServer starts a side server exposing /metrics and /healthz.
func BootstrapMetricsServer(addr string, health func(context.Context) error, l *zap.Logger) *http.Server {
	ms := createMetricsServer(addr, health)

	go func() {
		l.Info("metrics listening", zap.String("addr", addr))
		if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("metrics server error", zap.Error(err))
		}
	}()

	return ms
}

func createMetricsServer(addr string, health func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		if err := health(ctx); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}
