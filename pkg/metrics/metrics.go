// Package metrics exposes Prometheus instrumentation for the watch
// loop: what the forecaster called, how the calls graded out, and how
// long the data plumbing takes.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/journal"
)

var log = logrus.WithField("component", "metrics")

// Metrics holds all Prometheus metrics for the forecaster.
type Metrics struct {
	ForecastsTotal   *prometheus.CounterVec // labels: direction
	ForecastErrors   prometheus.Counter
	EvaluationsTotal *prometheus.CounterVec // labels: outcome
	EvaluateErrors   prometheus.Counter

	LastConfidence prometheus.Gauge
	LastStrength   prometheus.Gauge
	Accuracy       prometheus.Gauge
	PendingRecords prometheus.Gauge

	FetchDuration    prometheus.Histogram
	ForecastDuration prometheus.Histogram
}

// New builds all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ForecastsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foresight_forecasts_total",
			Help: "Forecasts appended to the journal, by direction",
		}, []string{"direction"}),
		ForecastErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foresight_forecast_errors_total",
			Help: "Forecast runs that failed before a record landed",
		}),
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foresight_evaluations_total",
			Help: "Predictions graded, by outcome",
		}, []string{"outcome"}),
		EvaluateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foresight_evaluate_errors_total",
			Help: "Evaluation runs that stopped on an error",
		}),
		LastConfidence: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foresight_last_confidence",
			Help: "Confidence of the most recent forecast, 0-100",
		}),
		LastStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foresight_last_strength",
			Help: "Signed strength of the most recent forecast, -1 to 1",
		}),
		Accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foresight_accuracy_ratio",
			Help: "Lifetime accuracy over evaluated predictions, 0-1",
		}),
		PendingRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "foresight_pending_predictions",
			Help: "Predictions awaiting evaluation",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "foresight_fetch_duration_seconds",
			Help:    "Daily bar fetch latency",
			Buckets: prometheus.DefBuckets,
		}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "foresight_forecast_duration_seconds",
			Help:    "Snapshot build plus aggregation latency",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.ForecastsTotal,
		m.ForecastErrors,
		m.EvaluationsTotal,
		m.EvaluateErrors,
		m.LastConfidence,
		m.LastStrength,
		m.Accuracy,
		m.PendingRecords,
		m.FetchDuration,
		m.ForecastDuration,
	)

	return m
}

// ObserveForecast records a completed forecast run.
func (m *Metrics) ObserveForecast(f forecast.Forecast) {
	m.ForecastsTotal.WithLabelValues(string(f.Direction)).Inc()
	m.LastConfidence.Set(f.Confidence)
	m.LastStrength.Set(f.Strength)
}

// ObserveEvaluations records graded predictions.
func (m *Metrics) ObserveEvaluations(recs []journal.PredictionRecord) {
	for _, rec := range recs {
		m.EvaluationsTotal.WithLabelValues(string(rec.Outcome)).Inc()
	}
}

// SetScorecard refreshes the gauges derived from the journal.
func (m *Metrics) SetScorecard(st journal.Stats) {
	m.Accuracy.Set(st.Accuracy)
	m.PendingRecords.Set(float64(st.Pending))
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server on addr.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return &Server{
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.WithField("addr", s.srv.Addr).Info("metrics server listening")
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("metrics server shutdown")
	}
}
