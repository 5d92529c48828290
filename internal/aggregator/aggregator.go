// Package aggregator assembles the per-group KPI report of one cycle.
package aggregator

import (
	"time"

	"kpi-sync-go/internal/kpi"
	"kpi-sync-go/internal/operator"
	"kpi-sync-go/internal/types"
)

type GroupReport struct {
	kpi.GroupMetrics
	Anomalies []kpi.Anomaly `json:"anomalies,omitempty"`
}

type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Groups      []GroupReport      `json:"groups"`
	Operators   []operator.Summary `json:"operators,omitempty"`
}

// Build computes every metric for groups, in the order given. An unknown group
// fails the whole report.
func Build(calc *kpi.Calculator, groups []types.Group) (Report, error) {
	r := Report{GeneratedAt: time.Now(), Groups: make([]GroupReport, 0, len(groups))}
	for _, g := range groups {
		m, err := calc.AllMetrics(g)
		if err != nil {
			return Report{}, err
		}
		anomalies, err := calc.Anomalies(g)
		if err != nil {
			return Report{}, err
		}
		r.Groups = append(r.Groups, GroupReport{GroupMetrics: m, Anomalies: anomalies})
	}
	return r, nil
}

// Group looks up the report of g.
func (r Report) Group(g types.Group) (GroupReport, bool) {
	for _, gr := range r.Groups {
		if gr.Group == g {
			return gr, true
		}
	}
	return GroupReport{}, false
}

// Anomalies flattens every group's anomalies.
func (r Report) Anomalies() []kpi.Anomaly {
	var out []kpi.Anomaly
	for _, gr := range r.Groups {
		out = append(out, gr.Anomalies...)
	}
	return out
}

// TotalCalls sums total calls over every group.
func (r Report) TotalCalls() int {
	n := 0
	for _, gr := range r.Groups {
		n += gr.TotalCalls
	}
	return n
}
