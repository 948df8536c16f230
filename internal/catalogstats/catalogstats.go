// Package catalogstats periodically publishes the catalog size as a gauge.
package catalogstats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/metrics"
	"github.com/robfig/cron/v3"
)

const DefaultSpec = "@every 1m"

type productCounter interface {
	Count(ctx context.Context) (int, error)
}

// Job implements cron.Job.
type Job struct {
	products productCounter
	logger   *slog.Logger
	timeout  time.Duration
}

func NewJob(products productCounter, logger *slog.Logger) *Job {
	return &Job{
		products: products,
		logger:   logger.With("component", "catalogstats"),
		timeout:  5 * time.Second,
	}
}

func (j *Job) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.products.Count(ctx)
	if err != nil {
		j.logger.Error("count products", "error", err)
		return
	}
	metrics.CatalogProducts.Set(float64(n))
	j.logger.Debug("catalog size refreshed", "products", n)
}

// NewScheduler returns a stopped cron that runs job on spec. Overlapping
// runs are skipped.
func NewScheduler(job *Job, spec string) (*cron.Cron, error) {
	logger := cronLogger{job.logger}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule catalog stats %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
