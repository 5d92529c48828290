package reporter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpi-sync-go/internal/types"
)

var day = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestFetchTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/report", r.URL.Path)
		assert.Equal(t, "op-1", r.URL.Query().Get("operator"))
		assert.Equal(t, "TEMPLATE_SS", r.URL.Query().Get("template"))
		assert.Equal(t, "2026/10/18", r.URL.Query().Get("from"))
		assert.Equal(t, "2026/10/18", r.URL.Query().Get("to"))
		_, _ = w.Write([]byte(reportPage(ListName, reportHeader, []string{"TEMPLATE_SS", "100", "3", "5", "10", "4"})))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "op-1", 2, WithBackOff(noWait))
	got, err := c.FetchTemplate(context.Background(), "TEMPLATE_SS", day)
	require.NoError(t, err)
	assert.Equal(t, types.TemplateCounters{
		TotalCalls:                     100,
		IVRInterruptionsBeforeResponse: 3,
		IVRInterruptions:               5,
		TimeOut:                        10,
		AbandonedDuringOperator:        4,
	}, got)
}

func TestFetchTemplateRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(reportPage(ListName, reportHeader, []string{"x", "7", "0", "0", "0", "0"})))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "op-1", 5, WithBackOff(noWait))
	got, err := c.FetchTemplate(context.Background(), "TEMPLATE_TVS", day)
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalCalls)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchTemplateGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "op-1", 2, WithBackOff(noWait))
	_, err := c.FetchTemplate(context.Background(), "TEMPLATE_SS", day)
	assert.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchTemplateClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unknown template", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "op-1", 5, WithBackOff(noWait))
	_, err := c.FetchTemplate(context.Background(), "TEMPLATE_XX", day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchGroups(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		total := map[string]string{"TEMPLATE_SS": "10", "TEMPLATE_HHD": "20"}[r.URL.Query().Get("template")]
		_, _ = w.Write([]byte(reportPage(ListName, reportHeader, []string{"t", total, "0", "0", "0", "0"})))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "op-1", 0, WithBackOff(noWait))
	d, err := c.FetchGroups(context.Background(), []types.Group{types.GroupSS, types.GroupHHD}, day)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Templates["TEMPLATE_SS"].TotalCalls)
	assert.Equal(t, 20, d.Templates["TEMPLATE_HHD"].TotalCalls)
	assert.Empty(t, d.Counts)
}
