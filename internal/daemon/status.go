package daemon

import (
	"cand/internal/capture"
	"cand/internal/global"
	"cand/internal/lifecycle"
	"cand/internal/logctx"
	"cand/pkg/record"
	"context"
	"fmt"
	"time"
)

// Pokes the status notifier when a loss marker is written
type lossNotifier struct {
	notice chan<- struct{}
}

func (notifier lossNotifier) ObserveLoss(ctx context.Context, rec record.Record, totalDropped uint64) {
	select {
	case notifier.notice <- struct{}{}:
	default:
		// One pending wake-up is enough
	}
}

// One line service status for systemctl status
func statusLine(file string, totals *capture.Totals) (line string) {
	line = fmt.Sprintf("Capturing to %s: %d frames, %d dropped", file, totals.Frames.Load(), totals.DroppedFrames.Load())
	return
}

// Publishes STATUS= periodically and after every loss marker
func (daemon *Daemon) runStatusNotifier(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSLifecycle)

	ticker := time.NewTicker(global.StatusNotifyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-daemon.lossNotice:
		}

		err := lifecycle.NotifyStatus(ctx, statusLine(daemon.Sink.Path(), &daemon.Capture.Totals))
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog, "Systemd notify status failed: %v\n", err)
		}
	}
}
