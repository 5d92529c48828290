package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kpi-sync-go/internal/config"
	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/metrics"
	"kpi-sync-go/internal/processor"
)

const jobName = "kpi_sync"

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.WithField("service", "kpi-sync-go").WithField("environment", cfg.Environment).Info("starting service")

	p := processor.New(cfg)

	if cfg.RunOnce {
		os.Exit(runOnce(cfg, p))
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(p),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// runOnce computes a single report, prints it and optionally pushes the metrics.
func runOnce(cfg *config.Config, p *processor.Processor) int {
	log := logger.New().WithField("mode", "run_once")
	res, err := p.RunCycle(context.Background())
	if err != nil {
		log.WithError(err).Error("cycle failed")
		return 1
	}
	fmt.Print(render(cfg.OutputFormat, res.Report))

	if cfg.MetricsPushURL != "" {
		if err := metrics.Push(cfg.MetricsPushURL, jobName); err != nil {
			log.WithError(err).Error("failed to push metrics")
			return 1
		}
		log.WithField("url", cfg.MetricsPushURL).Info("metrics pushed")
	}
	return 0
}
