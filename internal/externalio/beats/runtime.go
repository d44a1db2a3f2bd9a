package beats

import (
	"cand/internal/atomics"
	"cand/internal/global"
	"cand/internal/logctx"
	"cand/pkg/record"
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"
)

// Queues an alert for a persisted loss marker. Never blocks the capture loop.
func (alerter *Alerter) ObserveLoss(ctx context.Context, rec record.Record, totalDropped uint64) {
	if alerter == nil {
		return
	}
	event := lossEvent{
		recordTimestamp: rec.Timestamp,
		delta:           rec.DropCount(),
		total:           totalDropped,
		wallTime:        time.Now().UTC().Format(time.RFC3339Nano),
	}

	alerter.Metrics.Pending.Add(1)
	select {
	case alerter.queue <- event:
	default:
		alerter.Metrics.Pending.Add(^uint64(0))
		alerter.Metrics.Overflow.Add(1)
	}
}

// Starts the sender worker. Stops once Shutdown drains the queue.
func (alerter *Alerter) Start(ctx context.Context) {
	if alerter == nil {
		return
	}
	ctx = logctx.AppendCtxTag(ctx, global.NSAlert)

	alerter.wg.Add(1)
	go func() {
		defer alerter.wg.Done()
		for event := range alerter.queue {
			alerter.deliver(ctx, event)
			alerter.Metrics.Pending.Add(^uint64(0))
		}
	}()
}

func (alerter *Alerter) deliver(ctx context.Context, event lossEvent) {
	defer func() {
		// Record panics and keep the worker alive
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "panic in alert sender: %v\n%s", fatalError, stack)
		}
	}()

	if alerter.sink == nil {
		client, err := alerter.dial()
		if err != nil {
			alerter.Metrics.Failed.Add(1)
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed reconnecting to beats server %s: %v\n", alerter.endpoint, err)
			return
		}
		alerter.sink = client
	}

	_, err := alerter.sink.Send([]interface{}{alerter.fields(event)})
	if err != nil {
		alerter.Metrics.Failed.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed sending loss alert to %s: %v\n", alerter.endpoint, err)

		// Reconnect on next alert
		_ = alerter.sink.Close()
		alerter.sink = nil
		return
	}
	alerter.Metrics.Sent.Add(1)
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Sent loss alert (%d frames dropped)\n", event.delta)
}

// Document sent for one loss marker
func (alerter *Alerter) fields(event lossEvent) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": event.wallTime,
		"message":    "CAN receive queue overflow on " + alerter.iface,

		"host": map[string]interface{}{
			"name":     global.Hostname,
			"hostname": global.Hostname,
		},
		"agent": map[string]interface{}{
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "cand",
			"pid":     os.Getpid(),
		},
		"can": map[string]interface{}{
			"interface": alerter.iface,
			"drop": map[string]interface{}{
				"frames":       event.delta,
				"session":      event.total,
				"record_ts_ms": event.recordTimestamp,
			},
		},
	}
	return
}

// Stops accepting alerts, sends what is queued and closes the connection.
// Alerts still unsent after the shutdown timeout are abandoned.
func (alerter *Alerter) Shutdown() (err error) {
	if alerter == nil {
		return
	}
	close(alerter.queue)

	drained, unsent := atomics.WaitUntilZero(&alerter.Metrics.Pending, global.ShutdownTimeout)
	if !drained {
		err = fmt.Errorf("abandoned %d unsent loss alerts", unsent)
		return
	}
	alerter.wg.Wait()
	if alerter.sink != nil {
		err = alerter.sink.Close()
		alerter.sink = nil
	}
	return
}
