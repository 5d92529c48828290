package kpi

import (
	"fmt"

	"kpi-sync-go/internal/types"
)

// GroupMetrics is every KPI for one group, as a flat record.
type GroupMetrics struct {
	Group types.Group `json:"group"`

	TotalCalls              int     `json:"total_calls"`
	IVRInterruptions        int     `json:"ivr_interruptions"`
	AbandonedCalls          int     `json:"abandoned_calls"`
	AbandonedDuringOperator int     `json:"abandoned_during_operator"`
	AbandonedInIVR          int     `json:"abandoned_in_ivr"`
	Voicemails              int     `json:"voicemails"`
	Responses               int     `json:"responses"`
	ResponseRate            float64 `json:"response_rate"`
	PhoneInquiries          int     `json:"phone_inquiries"`
	DirectHandling          int     `json:"direct_handling"`
	DirectHandlingRate      float64 `json:"direct_handling_rate"`

	Callback0To20     int `json:"callback_count_0_20"`
	CumulativeUnder20 int `json:"cumulative_callback_under_20"`
	Callback20To30    int `json:"callback_count_20_30"`
	CumulativeUnder30 int `json:"cumulative_callback_under_30"`
	Callback30To40    int `json:"callback_count_30_40"`
	CumulativeUnder40 int `json:"cumulative_callback_under_40"`
	Callback40To60    int `json:"callback_count_40_60"`
	CumulativeUnder60 int `json:"cumulative_callback_under_60"`
	CallbackOver60    int `json:"callback_count_60over"`

	WaitingCount20 int `json:"waiting_count_20over"`
	WaitingCount30 int `json:"waiting_count_30over"`
	WaitingCount40 int `json:"waiting_count_40over"`
	WaitingCount60 int `json:"waiting_count_60over"`

	WaitingList20 []string `json:"waiting_list_20over"`
	WaitingList30 []string `json:"waiting_list_30over"`
	WaitingList40 []string `json:"waiting_list_40over"`
	WaitingList60 []string `json:"waiting_list_60over"`

	CallbackRateUnder20 float64 `json:"cumulative_callback_rate_under_20"`
	CallbackRateUnder30 float64 `json:"cumulative_callback_rate_under_30"`
	CallbackRateUnder40 float64 `json:"cumulative_callback_rate_under_40"`
	CallbackRateUnder60 float64 `json:"cumulative_callback_rate_under_60"`
}

// Entry is one labelled metric value: int, float64 or []string.
type Entry struct {
	Label string
	Value any
}

// Entries lists the metrics in display order.
func (m GroupMetrics) Entries() []Entry {
	return []Entry{
		{"Total calls", m.TotalCalls},
		{"IVR interruptions", m.IVRInterruptions},
		{"Abandoned calls", m.AbandonedCalls},
		{"Abandoned during operator", m.AbandonedDuringOperator},
		{"Abandoned in IVR", m.AbandonedInIVR},
		{"Voicemails", m.Voicemails},
		{"Responses", m.Responses},
		{"Response rate", m.ResponseRate},
		{"Phone inquiries", m.PhoneInquiries},
		{"Direct handling", m.DirectHandling},
		{"Direct handling rate", m.DirectHandlingRate},
		{"Callbacks 0-20 min", m.Callback0To20},
		{"Cumulative callbacks within 20 min", m.CumulativeUnder20},
		{"Callbacks 20-30 min", m.Callback20To30},
		{"Cumulative callbacks within 30 min", m.CumulativeUnder30},
		{"Callbacks 30-40 min", m.Callback30To40},
		{"Cumulative callbacks within 40 min", m.CumulativeUnder40},
		{"Callbacks 40-60 min", m.Callback40To60},
		{"Cumulative callbacks within 60 min", m.CumulativeUnder60},
		{"Callbacks over 60 min", m.CallbackOver60},
		{"Waiting 20+ min", m.WaitingCount20},
		{"Waiting 30+ min", m.WaitingCount30},
		{"Waiting 40+ min", m.WaitingCount40},
		{"Waiting 60+ min", m.WaitingCount60},
		{"Waiting 20+ min cases", m.WaitingList20},
		{"Waiting 30+ min cases", m.WaitingList30},
		{"Waiting 40+ min cases", m.WaitingList40},
		{"Waiting 60+ min cases", m.WaitingList60},
		{"Callback rate within 20 min", m.CallbackRateUnder20},
		{"Callback rate within 30 min", m.CallbackRateUnder30},
		{"Callback rate within 40 min", m.CallbackRateUnder40},
		{"Callback rate within 60 min", m.CallbackRateUnder60},
	}
}

// AllMetrics computes every KPI for g. An unknown group fails on the first lookup.
func (c *Calculator) AllMetrics(g types.Group) (GroupMetrics, error) {
	m := GroupMetrics{Group: g}
	var err error
	ints := []struct {
		dst *int
		fn  func(types.Group) (int, error)
	}{
		{&m.TotalCalls, c.TotalCalls},
		{&m.IVRInterruptions, c.IVRInterruptions},
		{&m.AbandonedCalls, c.AbandonedCalls},
		{&m.AbandonedDuringOperator, c.AbandonedDuringOperator},
		{&m.AbandonedInIVR, c.AbandonedInIVR},
		{&m.Voicemails, c.Voicemails},
		{&m.Responses, c.Responses},
		{&m.PhoneInquiries, c.PhoneInquiries},
		{&m.DirectHandling, c.DirectHandling},
	}
	for _, f := range ints {
		if *f.dst, err = f.fn(g); err != nil {
			return GroupMetrics{}, err
		}
	}
	if m.ResponseRate, err = c.ResponseRate(g); err != nil {
		return GroupMetrics{}, err
	}
	if m.DirectHandlingRate, err = c.DirectHandlingRate(g); err != nil {
		return GroupMetrics{}, err
	}

	buckets := map[types.Bucket]*int{
		types.Bucket0To20:  &m.Callback0To20,
		types.Bucket20To30: &m.Callback20To30,
		types.Bucket30To40: &m.Callback30To40,
		types.Bucket40To60: &m.Callback40To60,
		types.BucketOver60: &m.CallbackOver60,
	}
	for b, dst := range buckets {
		if *dst, err = c.CallbackCount(g, b); err != nil {
			return GroupMetrics{}, err
		}
	}

	perThreshold := map[types.Threshold]struct {
		cumulative *int
		count      *int
		list       *[]string
		rate       *float64
	}{
		types.Threshold20: {&m.CumulativeUnder20, &m.WaitingCount20, &m.WaitingList20, &m.CallbackRateUnder20},
		types.Threshold30: {&m.CumulativeUnder30, &m.WaitingCount30, &m.WaitingList30, &m.CallbackRateUnder30},
		types.Threshold40: {&m.CumulativeUnder40, &m.WaitingCount40, &m.WaitingList40, &m.CallbackRateUnder40},
		types.Threshold60: {&m.CumulativeUnder60, &m.WaitingCount60, &m.WaitingList60, &m.CallbackRateUnder60},
	}
	for _, t := range types.Thresholds {
		dst := perThreshold[t]
		if *dst.cumulative, err = c.CumulativeCallbackUnder(g, t); err != nil {
			return GroupMetrics{}, err
		}
		if *dst.list, err = c.WaitingList(g, t); err != nil {
			return GroupMetrics{}, err
		}
		*dst.count = len(*dst.list)
		if *dst.rate, err = c.CumulativeCallbackRate(g, t); err != nil {
			return GroupMetrics{}, err
		}
	}
	return m, nil
}

// Anomaly is an upstream invariant the raw data violates. The calculator never
// rejects such data; callers decide whether to warn.
type Anomaly struct {
	Group   types.Group `json:"group"`
	Metric  string      `json:"metric"`
	Message string      `json:"message"`
}

// Anomalies reports violated cross-field invariants for g.
func (c *Calculator) Anomalies(g types.Group) ([]Anomaly, error) {
	t, err := c.template(g)
	if err != nil {
		return nil, err
	}
	vm, err := c.Voicemails(g)
	if err != nil {
		return nil, err
	}
	var out []Anomaly
	if t.TimeOut < vm {
		out = append(out, Anomaly{
			Group:   g,
			Metric:  "abandoned_in_ivr",
			Message: fmt.Sprintf("time_out %d is below voicemails %d", t.TimeOut, vm),
		})
	}
	prev := -1
	for _, th := range types.Thresholds {
		n, err := c.WaitingCount(g, th)
		if err != nil {
			return nil, err
		}
		if prev >= 0 && n > prev {
			out = append(out, Anomaly{
				Group:   g,
				Metric:  "waiting_count_" + th.String(),
				Message: fmt.Sprintf("%d cases waiting %d+ min exceeds %d at the previous threshold", n, int(th), prev),
			})
		}
		prev = n
	}
	return out, nil
}
