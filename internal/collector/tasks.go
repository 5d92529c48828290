package collector

import (
	"context"
	"time"

	"kpi-sync-go/internal/config"
	"kpi-sync-go/internal/dataset"
	"kpi-sync-go/internal/reporter"
	"kpi-sync-go/internal/types"
)

func ActivityTask(path string, now time.Time) Task {
	return Task{Name: "activity", Run: func(context.Context) (types.RawData, error) {
		return dataset.LoadActivity(path, now)
	}}
}

func SupportTask(path string, now time.Time) Task {
	return Task{Name: "support", Run: func(context.Context) (types.RawData, error) {
		return dataset.LoadSupport(path, now)
	}}
}

// ReporterTask fetches every group's template, bounded by timeout. The client
// retries each request itself, so the task runs once.
func ReporterTask(client *reporter.Client, groups []types.Group, now time.Time, timeout time.Duration) Task {
	return Task{Name: "reporter", Policy: &RetryPolicy{}, Run: func(ctx context.Context) (types.RawData, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return client.FetchGroups(ctx, groups, now)
	}}
}

// DefaultTasks is the production source set: the activity and support workbooks
// and the reporting portal.
func DefaultTasks(cfg *config.Config, now time.Time) []Task {
	client := reporter.NewClient(cfg.ReporterURL, cfg.ReporterID, cfg.ReporterMaxRetries)
	return []Task{
		ActivityTask(cfg.ActivityFile, now),
		SupportTask(cfg.SupportFile, now),
		ReporterTask(client, types.Groups, now, cfg.FetchTimeout),
	}
}

// PolicyFrom reads the sync retry settings.
func PolicyFrom(cfg *config.Config) RetryPolicy {
	return RetryPolicy{MaxRetries: cfg.SyncMaxRetries, Delay: cfg.SyncRetryDelay}
}
