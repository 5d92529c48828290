// Package kpi derives the per-group call-center KPIs from one cycle's raw counters.
// Every query is a pure function of the RawData the Calculator was built with.
package kpi

import (
	"fmt"
	"slices"

	"kpi-sync-go/internal/types"
)

// Calculator answers KPI queries against an immutable RawData.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	data     types.RawData
	clampIVR bool
}

type Option func(*Calculator)

// WithClampNegativeIVR floors abandoned_in_ivr at zero when time_out < voicemails.
// Without it the negative value propagates, which existing reports rely on.
func WithClampNegativeIVR() Option {
	return func(c *Calculator) { c.clampIVR = true }
}

func New(data types.RawData, opts ...Option) *Calculator {
	c := &Calculator{data: data}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) keys(g types.Group) (types.GroupKeys, error) {
	if !g.Valid() {
		return types.GroupKeys{}, &InvalidGroupError{Group: g}
	}
	k, _ := types.KeysFor(g)
	return k, nil
}

func (c *Calculator) template(g types.Group) (types.TemplateCounters, error) {
	k, err := c.keys(g)
	if err != nil {
		return types.TemplateCounters{}, err
	}
	return c.data.Templates[k.Template], nil
}

// rate divides a by b+extra, returning 0 for a zero denominator.
func rate(a, b, extra int) float64 {
	den := b + extra
	if den == 0 {
		return 0.0
	}
	return float64(a) / float64(den)
}

// TotalCalls is the number of inbound calls that reached the IVR.
func (c *Calculator) TotalCalls(g types.Group) (int, error) {
	t, err := c.template(g)
	if err != nil {
		return 0, err
	}
	return t.TotalCalls, nil
}

// IVRInterruptions counts calls dropped inside the voice menu, before and after the response.
func (c *Calculator) IVRInterruptions(g types.Group) (int, error) {
	t, err := c.template(g)
	if err != nil {
		return 0, err
	}
	return t.IVRInterruptionsBeforeResponse + t.IVRInterruptions, nil
}

func (c *Calculator) AbandonedDuringOperator(g types.Group) (int, error) {
	t, err := c.template(g)
	if err != nil {
		return 0, err
	}
	return t.AbandonedDuringOperator, nil
}

// Voicemails comes from the support workbook, not the reporting template.
func (c *Calculator) Voicemails(g types.Group) (int, error) {
	k, err := c.keys(g)
	if err != nil {
		return 0, err
	}
	return c.data.Counts[k.Voicemail], nil
}

// AbandonedInIVR is time_out minus voicemails. Negative when the inputs disagree,
// unless the calculator was built WithClampNegativeIVR.
func (c *Calculator) AbandonedInIVR(g types.Group) (int, error) {
	t, err := c.template(g)
	if err != nil {
		return 0, err
	}
	vm, err := c.Voicemails(g)
	if err != nil {
		return 0, err
	}
	n := t.TimeOut - vm
	if c.clampIVR && n < 0 {
		return 0, nil
	}
	return n, nil
}

func (c *Calculator) AbandonedCalls(g types.Group) (int, error) {
	op, err := c.AbandonedDuringOperator(g)
	if err != nil {
		return 0, err
	}
	ivr, err := c.AbandonedInIVR(g)
	if err != nil {
		return 0, err
	}
	return op + ivr, nil
}

// Responses is the answered-call count: total minus IVR interruptions minus abandoned.
func (c *Calculator) Responses(g types.Group) (int, error) {
	total, err := c.TotalCalls(g)
	if err != nil {
		return 0, err
	}
	ivr, err := c.IVRInterruptions(g)
	if err != nil {
		return 0, err
	}
	abandoned, err := c.AbandonedCalls(g)
	if err != nil {
		return 0, err
	}
	return total - ivr - abandoned, nil
}

func (c *Calculator) ResponseRate(g types.Group) (float64, error) {
	resp, err := c.Responses(g)
	if err != nil {
		return 0, err
	}
	total, err := c.TotalCalls(g)
	if err != nil {
		return 0, err
	}
	return rate(resp, total, 0), nil
}

func (c *Calculator) PhoneInquiries(g types.Group) (int, error) {
	vm, err := c.Voicemails(g)
	if err != nil {
		return 0, err
	}
	resp, err := c.Responses(g)
	if err != nil {
		return 0, err
	}
	return vm + resp, nil
}

// DirectHandling counts inquiries resolved on the first contact, without a callback.
func (c *Calculator) DirectHandling(g types.Group) (int, error) {
	k, err := c.keys(g)
	if err != nil {
		return 0, err
	}
	return c.data.Counts[k.Direct], nil
}

func (c *Calculator) DirectHandlingRate(g types.Group) (float64, error) {
	direct, err := c.DirectHandling(g)
	if err != nil {
		return 0, err
	}
	inq, err := c.PhoneInquiries(g)
	if err != nil {
		return 0, err
	}
	return rate(direct, inq, 0), nil
}

// CallbackCount is the number of callbacks whose latency fell in bucket b.
func (c *Calculator) CallbackCount(g types.Group, b types.Bucket) (int, error) {
	k, err := c.keys(g)
	if err != nil {
		return 0, err
	}
	key, ok := k.Callback[b]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBucket, b)
	}
	return c.data.Counts[key], nil
}

// CumulativeCallbackUnder is direct handling plus every callback closed within t minutes.
// The running total is seeded with direct handling and adds one bucket per threshold.
func (c *Calculator) CumulativeCallbackUnder(g types.Group, t types.Threshold) (int, error) {
	total, err := c.DirectHandling(g)
	if err != nil {
		return 0, err
	}
	if !t.Valid() {
		return 0, fmt.Errorf("%w: threshold %d", ErrUnknownBucket, int(t))
	}
	for _, th := range types.Thresholds {
		n, err := c.CallbackCount(g, th.ClosingBucket())
		if err != nil {
			return 0, err
		}
		total += n
		if th == t {
			return total, nil
		}
	}
	return 0, fmt.Errorf("%w: threshold %d", ErrUnknownBucket, int(t))
}

func (c *Calculator) pending(g types.Group, t types.Threshold) ([]string, error) {
	k, err := c.keys(g)
	if err != nil {
		return nil, err
	}
	key, ok := k.Waiting[t]
	if !ok {
		return nil, fmt.Errorf("%w: threshold %d", ErrUnknownBucket, int(t))
	}
	return c.data.Pending[key], nil
}

// WaitingList returns a copy of the open cases that have waited at least t
// minutes, as reported.
func (c *Calculator) WaitingList(g types.Group, t types.Threshold) ([]string, error) {
	l, err := c.pending(g, t)
	if err != nil {
		return nil, err
	}
	return slices.Clone(l), nil
}

func (c *Calculator) WaitingCount(g types.Group, t types.Threshold) (int, error) {
	l, err := c.pending(g, t)
	if err != nil {
		return 0, err
	}
	return len(l), nil
}

// CumulativeCallbackRate is the share of the day's cases closed within t minutes.
// The denominator is everything closed (within 60, and over 60) plus what is
// still pending at threshold t; only the pending term varies with t.
func (c *Calculator) CumulativeCallbackRate(g types.Group, t types.Threshold) (float64, error) {
	under, err := c.CumulativeCallbackUnder(g, t)
	if err != nil {
		return 0, err
	}
	under60, err := c.CumulativeCallbackUnder(g, types.Threshold60)
	if err != nil {
		return 0, err
	}
	over60, err := c.CallbackCount(g, types.BucketOver60)
	if err != nil {
		return 0, err
	}
	waiting, err := c.WaitingCount(g, t)
	if err != nil {
		return 0, err
	}
	return rate(under, under60+over60, waiting), nil
}
