package types

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMissingKey is returned when a raw data mapping lacks a key the calculator needs.
var ErrMissingKey = errors.New("missing raw data key")

// TemplateCounters are the per-template counters read from the reporting portal.
type TemplateCounters struct {
	TotalCalls                     int `json:"total_calls"`
	IVRInterruptionsBeforeResponse int `json:"ivr_interruptions_before_response"`
	IVRInterruptions               int `json:"ivr_interruptions"`
	TimeOut                        int `json:"time_out"`
	AbandonedDuringOperator        int `json:"abandoned_during_operator"`
}

// RawData is the normalized mapping handed from the collector to the KPI calculator.
// Templates is keyed by template key, Counts and Pending by group-keyed names
// (see GroupKeys). It is built once per reporting cycle and never mutated afterwards.
type RawData struct {
	Templates map[string]TemplateCounters `json:"templates"`
	Counts    map[string]int              `json:"counts"`
	Pending   map[string][]string         `json:"pending"`
}

func NewRawData() RawData {
	return RawData{
		Templates: map[string]TemplateCounters{},
		Counts:    map[string]int{},
		Pending:   map[string][]string{},
	}
}

// Merge copies every key of other into d. A key present on both sides is an error,
// since two sources must never report the same counter.
func (d *RawData) Merge(other RawData) error {
	if d.Templates == nil {
		d.Templates = map[string]TemplateCounters{}
	}
	if d.Counts == nil {
		d.Counts = map[string]int{}
	}
	if d.Pending == nil {
		d.Pending = map[string][]string{}
	}
	for k, v := range other.Templates {
		if _, ok := d.Templates[k]; ok {
			return fmt.Errorf("duplicate template key %q", k)
		}
		d.Templates[k] = v
	}
	for k, v := range other.Counts {
		if _, ok := d.Counts[k]; ok {
			return fmt.Errorf("duplicate count key %q", k)
		}
		d.Counts[k] = v
	}
	for k, v := range other.Pending {
		if _, ok := d.Pending[k]; ok {
			return fmt.Errorf("duplicate pending key %q", k)
		}
		d.Pending[k] = v
	}
	return nil
}

// Validate checks that every key the calculator reads for the given groups is present.
func (d RawData) Validate(groups ...Group) error {
	for _, g := range groups {
		k, ok := KeysFor(g)
		if !ok {
			return fmt.Errorf("unknown group %q", g)
		}
		if _, ok := d.Templates[k.Template]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingKey, k.Template)
		}
		counts := []string{k.Voicemail, k.Direct}
		for _, b := range Buckets {
			counts = append(counts, k.Callback[b])
		}
		for _, key := range counts {
			if _, ok := d.Counts[key]; !ok {
				return fmt.Errorf("%w: %s", ErrMissingKey, key)
			}
		}
		for _, t := range Thresholds {
			if _, ok := d.Pending[k.Waiting[t]]; !ok {
				return fmt.Errorf("%w: %s", ErrMissingKey, k.Waiting[t])
			}
		}
	}
	return nil
}

// Keys lists every key in the mapping, sorted. Used for debug logging.
func (d RawData) Keys() []string {
	out := make([]string, 0, len(d.Templates)+len(d.Counts)+len(d.Pending))
	for k := range d.Templates {
		out = append(out, k)
	}
	for k := range d.Counts {
		out = append(out, k)
	}
	for k := range d.Pending {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
