package dataset

import (
	"fmt"
	"sort"
	"time"

	"kpi-sync-go/internal/logger"
)

const (
	colCloseOwner     = "所有者"
	colCloseCompleted = "完了日時"
)

// OwnerCloses is how many cases one owner closed today.
type OwnerCloses struct {
	Name   string `json:"name"`
	Closes int    `json:"closes"`
}

// LoadCloses counts today's closed cases per owner, sorted by name.
func LoadCloses(path string, now time.Time) ([]OwnerCloses, error) {
	log := logger.New().WithField("component", "dataset.close").WithField("path", path)
	t, err := OpenTable(path)
	if err != nil {
		log.WithError(err).Error("open failed")
		return nil, err
	}
	out, err := countCloses(t, now)
	if err != nil {
		return nil, err
	}
	log.WithField("owners", len(out)).Info("closes counted")
	return out, nil
}

func countCloses(t *Table, now time.Time) ([]OwnerCloses, error) {
	cols, err := t.Columns(colCloseOwner, colCloseCompleted)
	if err != nil {
		return nil, fmt.Errorf("close: %w", err)
	}
	start, end := DayRange(now)
	counts := map[string]int{}
	for i := 0; i < t.Len(); i++ {
		done, ok := t.SerialCell(i, cols[1], now.Location())
		if !ok || done < start || done >= end {
			continue
		}
		owner := t.Cell(i, cols[0])
		if owner == "" {
			continue
		}
		counts[owner]++
	}
	out := make([]OwnerCloses, 0, len(counts))
	for name, n := range counts {
		out = append(out, OwnerCloses{Name: name, Closes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
