package daemon

import (
	"cand/internal/global"
	"cand/internal/logctx"
	"cand/internal/metrics"
	"context"
	"runtime/debug"
	"time"
)

// Prune old slices every this many polls
const pruneEveryTicks int = 30

func NewGatherer(interval time.Duration, maximumMetricAge time.Duration, collectors ...Collector) (new *Gatherer) {
	new = &Gatherer{
		Registry:   metrics.New(),
		Interval:   interval,
		Retention:  maximumMetricAge,
		collectors: collectors,
	}
	return
}

// Collects every interval until ctx ends
func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	var tickCount int
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				lastRun = now
				gatherer.Collect(ctx, now)
			}

			tickCount++
			if tickCount >= pruneEveryTicks {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Reads every collector into the time slice for now
func (gatherer *Gatherer) Collect(ctx context.Context, now time.Time) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector: %v\n%s", fatalError, stack)
		}
	}()

	timeSlice := gatherer.Registry.NewTimeSlice(now, gatherer.Interval)
	for _, collector := range gatherer.collectors {
		gatherer.Registry.Add(timeSlice, collector.CollectMetrics(gatherer.Interval))
	}
}
