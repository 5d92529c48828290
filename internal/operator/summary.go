// Package operator joins today's shift assignments with close counts.
package operator

import (
	"sort"

	"kpi-sync-go/internal/dataset"
	"kpi-sync-go/internal/shift"
)

// Summary is one operator's day: the scheduled shift and the cases closed.
type Summary struct {
	Name   string `json:"name"`
	Shift  string `json:"shift"`
	Closes int    `json:"closes"`
}

// Summarize returns one summary per operator named in either input, sorted by
// name. Operators who closed cases without a scheduled shift keep an empty shift.
func Summarize(assignments []shift.Assignment, closes []dataset.OwnerCloses) []Summary {
	byName := make(map[string]*Summary, len(assignments))
	for _, a := range assignments {
		s, ok := byName[a.Name]
		if !ok {
			s = &Summary{Name: a.Name}
			byName[a.Name] = s
		}
		if s.Shift == "" {
			s.Shift = a.Shift
		}
	}
	for _, c := range closes {
		s, ok := byName[c.Name]
		if !ok {
			s = &Summary{Name: c.Name}
			byName[c.Name] = s
		}
		s.Closes += c.Closes
	}

	out := make([]Summary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TotalCloses sums closes over every operator.
func TotalCloses(summaries []Summary) int {
	n := 0
	for _, s := range summaries {
		n += s.Closes
	}
	return n
}
