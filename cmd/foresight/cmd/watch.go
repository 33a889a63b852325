package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/foresight/config"
	"github.com/rustyeddy/foresight/export"
	"github.com/rustyeddy/foresight/forecast"
	"github.com/rustyeddy/foresight/indicators"
	"github.com/rustyeddy/foresight/journal"
	"github.com/rustyeddy/foresight/pkg/id"
	"github.com/rustyeddy/foresight/pkg/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run forecast and evaluation on a schedule",
	Long: `Run unattended: generate the daily call and grade matured
predictions on cron schedules, refreshing dashboard artifacts after
each pass.

Schedules use five-field cron syntax and accept a CRON_TZ= prefix; the
defaults fire shortly after the US cash close on weekdays. When
watch.metrics_listen is set, Prometheus metrics and a health probe are
served on that address.

Examples:
  foresight watch
  foresight --config foresight.yaml watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Watch.ForecastCron == "" || cfg.Watch.EvaluateCron == "" {
		return fmt.Errorf("watch.forecast_cron and watch.evaluate_cron must be set")
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	w := &watcher{cfg: cfg, store: store}

	if cfg.Watch.MetricsListen != "" {
		w.metrics = metrics.New(prometheus.DefaultRegisterer)
		srv := metrics.NewServer(cfg.Watch.MetricsListen)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(ctx)
		}()
		w.seedScorecard()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Watch.ForecastCron, w.forecastJob); err != nil {
		return err
	}
	if _, err := c.AddFunc(cfg.Watch.EvaluateCron, w.evaluateJob); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	log.Infof("watch started: forecast %q, evaluate %q", cfg.Watch.ForecastCron, cfg.Watch.EvaluateCron)
	for _, e := range c.Entries() {
		log.Infof("next run at %s", e.Next.Format(time.RFC3339))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infof("received %s, shutting down", sig)
	return nil
}

// watcher owns the scheduled jobs. Jobs log failures and keep the loop
// alive; a missed run is recoverable, a dead scheduler is not. The
// mutex keeps a slow fetch in one job from overlapping the other.
type watcher struct {
	cfg     *config.Config
	store   journal.Store
	metrics *metrics.Metrics

	mu sync.Mutex
}

func (w *watcher) forecastJob() {
	w.mu.Lock()
	defer w.mu.Unlock()

	jlog := log.WithField("run", id.New())

	start := time.Now()
	bars, err := loadBars(context.Background(), w.cfg)
	if err != nil {
		w.fail(jlog, "forecast", err)
		return
	}
	if w.metrics != nil {
		w.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}
	if len(bars) < w.cfg.Forecast.MinBars {
		jlog.Warnf("only %d bars loaded, want %d", len(bars), w.cfg.Forecast.MinBars)
	}

	snap := indicators.BuildSnapshot(w.cfg.Forecast.Symbol, bars)
	agg, err := newAggregator(w.cfg)
	if err != nil {
		w.fail(jlog, "forecast", err)
		return
	}
	f, err := agg.Aggregate(snap)
	if err != nil {
		var insufficient *forecast.InsufficientDataError
		if !errors.As(err, &insufficient) {
			w.fail(jlog, "forecast", err)
			return
		}
		jlog.Warnf("recording neutral call: %v", err)
	}

	rec, err := w.store.Append(f)
	if err != nil {
		var dup *journal.DuplicateError
		if errors.As(err, &dup) {
			jlog.Infof("forecast %s already recorded", f.ID)
		} else {
			w.fail(jlog, "forecast", err)
			return
		}
	} else {
		jlog.WithFields(logrus.Fields{
			"id":         rec.ID,
			"direction":  rec.Direction,
			"confidence": rec.Confidence,
		}).Info("forecast recorded")
		if w.metrics != nil {
			w.metrics.ObserveForecast(f)
			w.metrics.ForecastDuration.Observe(time.Since(start).Seconds())
		}
	}

	w.export(jlog, &f, &snap)
}

func (w *watcher) evaluateJob() {
	w.mu.Lock()
	defer w.mu.Unlock()

	jlog := log.WithField("run", id.New())

	price := priceSource(context.Background(), w.cfg)
	done, err := journal.NewEvaluator().EvaluateDue(w.store, time.Now().UTC(), price)
	for _, rec := range done {
		jlog.WithFields(logrus.Fields{
			"id":      rec.ID,
			"outcome": rec.Outcome,
			"change":  rec.RealizedChangePct,
		}).Info("prediction graded")
	}
	if err != nil {
		w.fail(jlog, "evaluate", err)
	}
	if w.metrics != nil {
		w.metrics.ObserveEvaluations(done)
	}

	w.export(jlog, nil, nil)
}

func (w *watcher) fail(jlog *logrus.Entry, job string, err error) {
	jlog.WithError(err).Errorf("%s job failed", job)
	if w.metrics == nil {
		return
	}
	switch job {
	case "forecast":
		w.metrics.ForecastErrors.Inc()
	case "evaluate":
		w.metrics.EvaluateErrors.Inc()
	}
}

// export refreshes the dashboard artifacts and the scorecard gauges.
// latest and snap may be nil when no fresh forecast is on hand.
func (w *watcher) export(jlog *logrus.Entry, latest *forecast.Forecast, snap *forecast.Snapshot) {
	recs, err := w.store.All()
	if err != nil {
		jlog.WithError(err).Error("reading journal for export")
		return
	}
	st := journal.ComputeStats(recs)
	if w.metrics != nil {
		w.metrics.SetScorecard(st)
	}

	if _, err := export.WriteHistory(w.cfg.Export.Dir, st, recs, w.cfg.Export.Recent); err != nil {
		jlog.WithError(err).Error("writing history artifact")
	}
	if latest != nil && snap != nil {
		if _, err := export.WriteLatest(w.cfg.Export.Dir, *latest, *snap); err != nil {
			jlog.WithError(err).Error("writing latest artifact")
		}
	}
}

// seedScorecard exposes the stored scorecard before the first tick so
// a fresh process does not report zeros until the evening run.
func (w *watcher) seedScorecard() {
	recs, err := w.store.All()
	if err != nil {
		log.WithError(err).Warn("seeding scorecard metrics")
		return
	}
	w.metrics.SetScorecard(journal.ComputeStats(recs))
}
