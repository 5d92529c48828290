package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kpi-sync-go/internal/aggregator"
	"kpi-sync-go/internal/formatter"
	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/metrics"
	"kpi-sync-go/internal/processor"
)

func newMux(p *processor.Processor) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		logger.New().WithRequest(r).Debug("health check")
		fmt.Fprint(w, "ok")
	})

	// runs one cycle per request
	mux.HandleFunc("/kpi", func(w http.ResponseWriter, r *http.Request) {
		reqLog := logger.New().WithRequest(r).WithField("handler", "kpi")
		format := r.URL.Query().Get("format")
		switch format {
		case "", "json", "text", "csv":
		default:
			reqLog.WithField("format", format).Warn("unsupported format")
			http.Error(w, "unsupported format", http.StatusBadRequest)
			return
		}

		res, err := p.RunCycle(r.Context())
		reqLog = reqLog.WithField("duration_ms", res.DurationMs)
		if err != nil {
			reqLog.WithError(err).Warn("cycle returned error")
		} else {
			reqLog.Info("cycle finished")
		}

		switch {
		case err == nil && format == "text":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, render(format, res.Report))
		case err == nil && format == "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			fmt.Fprint(w, render(format, res.Report))
		default:
			w.Header().Set("Content-Type", "application/json")
			if err != nil {
				w.WriteHeader(http.StatusBadGateway)
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				reqLog.WithError(err).Error("failed to write response")
			}
		}
	})

	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// render formats a report the same way for /kpi and run-once output.
func render(format string, r aggregator.Report) string {
	switch format {
	case "json":
		return formatter.FormatJSON(r) + "\n"
	case "csv":
		return formatter.FormatCSV(r)
	default: // "text"
		return formatter.FormatText(r)
	}
}
