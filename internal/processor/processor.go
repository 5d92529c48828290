package processor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"kpi-sync-go/internal/actionable"
	"kpi-sync-go/internal/aggregator"
	"kpi-sync-go/internal/collector"
	"kpi-sync-go/internal/config"
	"kpi-sync-go/internal/dataset"
	"kpi-sync-go/internal/kpi"
	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/metrics"
	"kpi-sync-go/internal/operator"
	"kpi-sync-go/internal/shift"
	"kpi-sync-go/internal/types"
)

// CycleResult is returned by /kpi and printed in run-once mode
type CycleResult struct {
	Report     aggregator.Report       `json:"report"`
	Actions    []actionable.ActionCard `json:"actions"`
	DurationMs int64                   `json:"duration_ms"`
	Error      string                  `json:"error,omitempty"`
}

type Processor struct {
	cfg   *config.Config
	tasks func(cfg *config.Config, now time.Time) []collector.Task
	now   func() time.Time
}

type Option func(*Processor)

// WithTasks replaces the source set, which defaults to collector.DefaultTasks.
func WithTasks(fn func(cfg *config.Config, now time.Time) []collector.Task) Option {
	return func(p *Processor) { p.tasks = fn }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func New(cfg *config.Config, opts ...Option) *Processor {
	p := &Processor{cfg: cfg, tasks: collector.DefaultTasks, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunCycle collects every source, computes the KPIs of all groups and refreshes
// the exported metrics. Operator summaries are best effort: a missing shift
// schedule or close workbook is logged and leaves them out.
func (p *Processor) RunCycle(ctx context.Context) (CycleResult, error) {
	log := logger.New().WithRun().WithField("component", "processor")
	start := time.Now()
	now := p.now().In(p.cfg.Location)
	res := CycleResult{}

	fail := func(err error) (CycleResult, error) {
		res.Error = err.Error()
		res.DurationMs = time.Since(start).Milliseconds()
		metrics.CyclesTotal.WithLabelValues("failure").Inc()
		log.WithError(err).Error("cycle failed")
		return res, err
	}

	log.WithField("date", now.Format("2006-01-02")).Info("cycle started")
	data, err := collector.Gather(ctx, collector.PolicyFrom(p.cfg), p.tasks(p.cfg, now), types.Groups...)
	if err != nil {
		return fail(err)
	}

	var opts []kpi.Option
	if p.cfg.ClampNegativeIVR {
		opts = append(opts, kpi.WithClampNegativeIVR())
	}
	report, err := aggregator.Build(kpi.New(data, opts...), types.Groups)
	if err != nil {
		return fail(err)
	}
	report.GeneratedAt = now
	for _, a := range report.Anomalies() {
		log.WithFields(logrus.Fields{
			"group":  a.Group,
			"metric": a.Metric,
		}).Warn(a.Message)
	}
	report.Operators = p.operators(now, log)

	res.Report = report
	res.Actions = actionable.Generate(report)
	metrics.Observe(report)
	metrics.CyclesTotal.WithLabelValues("success").Inc()
	elapsed := time.Since(start)
	metrics.CycleDurationSeconds.Observe(elapsed.Seconds())
	res.DurationMs = elapsed.Milliseconds()

	log.WithFields(logrus.Fields{
		"total_calls": report.TotalCalls(),
		"anomalies":   len(report.Anomalies()),
		"operators":   len(report.Operators),
		"closes":      operator.TotalCloses(report.Operators),
		"duration_ms": res.DurationMs,
	}).Info("cycle finished")
	return res, nil
}

func (p *Processor) operators(now time.Time, log *logrus.Entry) []operator.Summary {
	closes, err := dataset.LoadCloses(p.cfg.CloseFile, now)
	if err != nil {
		log.WithError(err).Warn("close counts unavailable")
		closes = nil
	}

	var assignments []shift.Assignment
	schedule := p.cfg.ShiftSchedulePath(now)
	if a, err := shift.LoadFile(schedule, now.Day()); err != nil {
		log.WithError(err).WithField("path", schedule).Warn("shift schedule unavailable")
	} else if roster, err := dataset.LoadRoster(p.cfg.OperatorsFile); err != nil {
		log.WithError(err).Warn("operator roster unavailable, keeping schedule names")
		assignments = a
	} else {
		log.WithField("roster_names", roster.Len()).Debug("operator roster loaded")
		assignments = shift.Resolve(a, roster)
	}

	if len(closes) == 0 && len(assignments) == 0 {
		return nil
	}
	return operator.Summarize(assignments, closes)
}
