package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-sync-go/internal/collector"
	"kpi-sync-go/internal/config"
	"kpi-sync-go/internal/processor"
	"kpi-sync-go/internal/types"
)

func fullData() types.RawData {
	d := types.NewRawData()
	for _, g := range types.Groups {
		k, _ := types.KeysFor(g)
		d.Templates[k.Template] = types.TemplateCounters{TotalCalls: 40, TimeOut: 6}
		d.Counts[k.Voicemail] = 4
		d.Counts[k.Direct] = 1
		for _, b := range types.Buckets {
			d.Counts[k.Callback[b]] = 1
		}
		for _, th := range types.Thresholds {
			d.Pending[k.Waiting[th]] = []string{}
		}
	}
	return d
}

func testProcessor(t *testing.T, run func(context.Context) (types.RawData, error)) *processor.Processor {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:              dir,
		CloseFile:            dir + "/close.xlsx",
		OperatorsFile:        dir + "/operators.xlsx",
		ShiftSchedulePattern: "%s.csv",
		Location:             time.UTC,
	}
	tasks := func(*config.Config, time.Time) []collector.Task {
		return []collector.Task{{Name: "static", Run: run}}
	}
	return processor.New(cfg, processor.WithTasks(tasks))
}

func ok(context.Context) (types.RawData, error) { return fullData(), nil }

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(testProcessor(t, ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestKPI(t *testing.T) {
	tests := map[string]struct {
		query       string
		contentType string
		contains    string
	}{
		"JSON":     {query: "", contentType: "application/json", contains: `"total_calls": 40`},
		"Text":     {query: "?format=text", contentType: "text/plain; charset=utf-8", contains: "HHD Total calls: 40\n"},
		"CSV":      {query: "?format=csv", contentType: "text/csv; charset=utf-8", contains: "KMN,Voicemails,4\n"},
		"Explicit": {query: "?format=json", contentType: "application/json", contains: `"group": "TVS"`},
	}

	mux := newMux(testProcessor(t, ok))
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kpi"+tc.query, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tc.contains)
		})
	}
}

func TestKPIUnsupportedFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(testProcessor(t, ok)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kpi?format=xml", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKPIFailure(t *testing.T) {
	failing := func(context.Context) (types.RawData, error) { return types.RawData{}, errors.New("portal down") }
	rec := httptest.NewRecorder()
	newMux(testProcessor(t, failing)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/kpi?format=text", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var res processor.CycleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Error, "portal down")
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newMux(testProcessor(t, ok))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/kpi", nil))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `kpi_metric{group="SS",metric="Total calls"} 40`), body)
	assert.Contains(t, body, "sync_cycles_total")
}

func TestRender(t *testing.T) {
	tests := map[string]struct {
		format   string
		contains string
	}{
		"Text":    {format: "text", contains: "SS Total calls: 40\n"},
		"Default": {format: "", contains: "SS Total calls: 40\n"},
		"JSON":    {format: "json", contains: `"total_calls": 40`},
		"CSV":     {format: "csv", contains: "SS,Total calls,40\n"},
	}

	res, err := testProcessor(t, ok).RunCycle(context.Background())
	require.NoError(t, err)
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, render(tc.format, res.Report), tc.contains)
		})
	}
}

func TestRunOnce(t *testing.T) {
	cfg := &config.Config{OutputFormat: "json"}
	assert.Equal(t, 0, runOnce(cfg, testProcessor(t, ok)))

	failing := func(context.Context) (types.RawData, error) { return types.RawData{}, errors.New("portal down") }
	assert.Equal(t, 1, runOnce(cfg, testProcessor(t, failing)))
}
