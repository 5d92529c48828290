package dataset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/types"
)

// activity workbook columns; "(関連) (サポート案件)" columns belong to the parent case
const (
	colActSubject        = "件名"
	colActRegistered     = "登録日時"
	colActCaseNumber     = "案件番号 (関連) (サポート案件)"
	colActCaseRegistered = "登録日時 (関連) (サポート案件)"
	colActReception      = "受付タイプ (関連) (サポート案件)"
	colActCategory       = "サポート区分 (関連) (サポート案件)"
	colActExclude        = "指標に含めない (関連) (サポート案件)"
	colActStatus         = "顛末コード (関連) (サポート案件)"
)

const (
	receiptSubject = "【受付】"

	receptionCallback    = "折返し"
	receptionVoicemail   = "留守電"
	receptionHHDCallback = "HHD入電（折返し）"

	flagYes = "はい"
	flagNo  = "いいえ"

	statusInProgress = "対応中"
	statusWaiting    = "対応待ち"
)

type activity struct {
	subject        string
	caseNumber     string
	registered     float64
	hasRegistered  bool
	caseRegistered float64
	hasCase        bool
	reception      string
	category       string
	exclude        string
	status         string
}

// LoadActivity reads the activity workbook and derives, per group, the callback
// latency bucket counts and the lists of cases still waiting for a callback.
func LoadActivity(path string, now time.Time) (types.RawData, error) {
	log := logger.New().WithField("component", "dataset.activity").WithField("path", path)
	t, err := OpenTable(path)
	if err != nil {
		log.WithError(err).Error("open failed")
		return types.RawData{}, err
	}
	acts, err := readActivities(t, now.Location())
	if err != nil {
		return types.RawData{}, err
	}
	log.WithField("rows", len(acts)).Info("activity rows loaded")
	return summarizeActivity(acts, now), nil
}

func readActivities(t *Table, loc *time.Location) ([]activity, error) {
	cols, err := t.Columns(colActSubject, colActRegistered, colActCaseNumber, colActCaseRegistered,
		colActReception, colActCategory, colActExclude, colActStatus)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	out := make([]activity, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		a := activity{
			subject:    t.Cell(i, cols[0]),
			caseNumber: t.Cell(i, cols[2]),
			reception:  t.Cell(i, cols[4]),
			category:   t.Cell(i, cols[5]),
			exclude:    t.Cell(i, cols[6]),
			status:     t.Cell(i, cols[7]),
		}
		a.registered, a.hasRegistered = t.SerialCell(i, cols[1], loc)
		a.caseRegistered, a.hasCase = t.SerialCell(i, cols[3], loc)
		out = append(out, a)
	}
	return out, nil
}

// summarizeActivity computes the activity-derived raw data for every group.
func summarizeActivity(acts []activity, now time.Time) types.RawData {
	d := types.NewRawData()
	start, end := DayRange(now)

	var callbacks []activity
	for _, a := range acts {
		if strings.Contains(a.subject, receiptSubject) {
			continue
		}
		if !a.hasCase || a.caseRegistered < start || a.caseRegistered >= end {
			continue
		}
		callbacks = append(callbacks, a)
	}
	callbacks = firstPerCase(callbacks)

	for _, g := range types.Groups {
		k, _ := types.KeysFor(g)
		counts, excluded := bucketCallbacks(callbacksFor(g, callbacks))
		for b, n := range counts {
			d.Counts[k.Callback[b]] = n
		}
		d.Counts[k.Excluded] = excluded
	}

	pending := pendingFor(acts, ToSerial(now), start, end)
	for _, g := range types.Groups {
		k, _ := types.KeysFor(g)
		for _, th := range types.Thresholds {
			ids := []string{}
			for _, p := range pending {
				if p.category == g.Category() && p.wait >= Minutes(int(th))-edgeTolerance {
					ids = append(ids, p.caseNumber)
				}
			}
			d.Pending[k.Waiting[th]] = ids
		}
	}
	return d
}

func callbacksFor(g types.Group, acts []activity) []activity {
	var out []activity
	for _, a := range acts {
		if a.category != g.Category() {
			continue
		}
		switch a.reception {
		case receptionVoicemail:
		case receptionCallback:
			if g == types.GroupHHD {
				continue
			}
		case receptionHHDCallback:
			if g != types.GroupHHD {
				continue
			}
		default:
			continue
		}
		out = append(out, a)
	}
	return out
}

// bucketCallbacks classifies each callback by latency. Latencies over 40 minutes
// only count when the case is not excluded from KPIs; excluded 60+ cases are
// returned separately.
func bucketCallbacks(acts []activity) (map[types.Bucket]int, int) {
	counts := make(map[types.Bucket]int, len(types.Buckets))
	for _, b := range types.Buckets {
		counts[b] = 0
	}
	excluded := 0
	for _, a := range acts {
		latency := 0.0
		if a.hasRegistered && a.hasCase {
			latency = a.registered - a.caseRegistered
		}
		switch {
		case latency <= Minutes(20)+edgeTolerance:
			counts[types.Bucket0To20]++
		case latency <= Minutes(30)+edgeTolerance:
			counts[types.Bucket20To30]++
		case latency <= Minutes(40)+edgeTolerance:
			counts[types.Bucket30To40]++
		case latency <= Minutes(60)+edgeTolerance:
			if a.exclude == flagNo {
				counts[types.Bucket40To60]++
			}
		case a.exclude == flagNo:
			counts[types.BucketOver60]++
		case a.exclude == flagYes:
			excluded++
		}
	}
	return counts, excluded
}

type pendingCase struct {
	caseNumber string
	category   string
	wait       float64
}

// pendingFor finds open callback cases registered today whose only activity is
// the receipt record, and how long each has waited as of nowSerial.
func pendingFor(acts []activity, nowSerial, start, end float64) []pendingCase {
	var open []activity
	for _, a := range acts {
		if a.reception != receptionCallback && a.reception != receptionVoicemail {
			continue
		}
		if a.exclude != flagNo {
			continue
		}
		if a.status != statusInProgress && a.status != statusWaiting {
			continue
		}
		open = append(open, a)
	}

	hasReceipt := map[string]bool{}
	handled := map[string]bool{}
	for _, a := range open {
		if a.subject == receiptSubject {
			hasReceipt[a.caseNumber] = true
		} else {
			handled[a.caseNumber] = true
		}
	}
	var untouched []activity
	for _, a := range open {
		if hasReceipt[a.caseNumber] && !handled[a.caseNumber] {
			untouched = append(untouched, a)
		}
	}

	var out []pendingCase
	for _, a := range firstPerCase(untouched) {
		if !a.hasCase || a.caseRegistered < start || a.caseRegistered >= end {
			continue
		}
		out = append(out, pendingCase{
			caseNumber: a.caseNumber,
			category:   a.category,
			wait:       nowSerial - a.caseRegistered,
		})
	}
	return out
}

// firstPerCase sorts by case number then activity time and keeps the earliest
// activity of each case.
func firstPerCase(acts []activity) []activity {
	sorted := make([]activity, len(acts))
	copy(sorted, acts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].caseNumber != sorted[j].caseNumber {
			return lessCaseNumber(sorted[i].caseNumber, sorted[j].caseNumber)
		}
		// rows without a timestamp sort last
		if sorted[i].hasRegistered != sorted[j].hasRegistered {
			return sorted[i].hasRegistered
		}
		return sorted[i].registered < sorted[j].registered
	})
	out := sorted[:0]
	seen := map[string]bool{}
	for _, a := range sorted {
		if seen[a.caseNumber] {
			continue
		}
		seen[a.caseNumber] = true
		out = append(out, a)
	}
	return out
}

// lessCaseNumber orders numeric case numbers numerically and anything else lexically.
func lessCaseNumber(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
