// Package metrics exposes the KPI report and the sync cycle as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"kpi-sync-go/internal/aggregator"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// KPIMetric holds the latest value of every numeric KPI. Waiting lists are
// exported through their counts.
var KPIMetric = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "metric",
	Help:      "Latest KPI value by group and metric",
}, []string{"group", "metric"})

// AnomaliesTotal is the number of invariant violations in the latest report.
var AnomaliesTotal = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "anomalies",
	Help:      "Upstream invariant violations in the latest report by group",
}, []string{"group"})

// OperatorCloses is the number of cases each operator closed today.
var OperatorCloses = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "operator_closes",
	Help:      "Cases closed today by operator",
}, []string{"operator"})

// CyclesTotal counts sync cycles by outcome.
var CyclesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sync",
	Name:      "cycles_total",
	Help:      "Sync cycles by result",
}, []string{"result"})

// CycleDurationSeconds tracks time to collect and compute one report.
var CycleDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "sync",
	Name:      "duration_seconds",
	Help:      "Time taken to collect sources and build the report",
	Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
})

// Observe replaces the KPI gauges with the values of r.
func Observe(r aggregator.Report) {
	KPIMetric.Reset()
	AnomaliesTotal.Reset()
	OperatorCloses.Reset()
	for _, gr := range r.Groups {
		group := string(gr.Group)
		for _, e := range gr.Entries() {
			switch v := e.Value.(type) {
			case int:
				KPIMetric.WithLabelValues(group, e.Label).Set(float64(v))
			case float64:
				KPIMetric.WithLabelValues(group, e.Label).Set(v)
			}
		}
		AnomaliesTotal.WithLabelValues(group).Set(float64(len(gr.Anomalies)))
	}
	for _, o := range r.Operators {
		OperatorCloses.WithLabelValues(o.Name).Add(float64(o.Closes))
	}
}

// Push sends the registry to a Pushgateway.
func Push(url, job string) error {
	return push.New(url, job).Gatherer(Registry).Push()
}
