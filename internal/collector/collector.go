// Package collector gathers the raw data of one reporting cycle from every source.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"kpi-sync-go/internal/logger"
	"kpi-sync-go/internal/types"
)

// Task produces one slice of the raw data mapping.
type Task struct {
	Name string
	Run  func(ctx context.Context) (types.RawData, error)
	// Policy overrides the Gather policy for this task. Tasks that already retry
	// internally set a zero policy so they run once.
	Policy *RetryPolicy
}

// RetryPolicy is applied to every task independently.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Gather runs every task concurrently and merges the results. The first task to
// exhaust its retries cancels the others and nothing is returned. The merged
// mapping is checked for every key the calculator reads for groups.
func Gather(ctx context.Context, policy RetryPolicy, tasks []Task, groups ...types.Group) (types.RawData, error) {
	log := logger.New().WithField("component", "collector")
	results := make([]types.RawData, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		g.Go(func() error {
			d, err := runTask(gctx, policy, task, log)
			if err != nil {
				return fmt.Errorf("%s: %w", task.Name, err)
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("collection failed")
		return types.RawData{}, err
	}

	merged := types.NewRawData()
	for i, d := range results {
		if err := merged.Merge(d); err != nil {
			return types.RawData{}, fmt.Errorf("%s: %w", tasks[i].Name, err)
		}
	}
	if err := merged.Validate(groups...); err != nil {
		return types.RawData{}, err
	}
	log.WithField("keys", len(merged.Keys())).Info("collection complete")
	log.WithField("key_names", merged.Keys()).Debug("collected keys")
	return merged, nil
}

func runTask(ctx context.Context, policy RetryPolicy, task Task, log *logrus.Entry) (types.RawData, error) {
	if task.Policy != nil {
		policy = *task.Policy
	}
	log = log.WithField("task", task.Name)
	var out types.RawData
	attempt := 0
	operation := func() error {
		attempt++
		d, err := task.Run(ctx)
		if err != nil {
			return err
		}
		out = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": wait.String(),
		}).Warn("task failed, retrying")
	}

	start := time.Now()
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Delay), uint64(policy.MaxRetries)), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		return types.RawData{}, err
	}
	log.WithFields(logrus.Fields{
		"attempts": attempt,
		"elapsed":  time.Since(start).String(),
	}).Info("task done")
	return out, nil
}
