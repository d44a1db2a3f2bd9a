package logctx

import (
	"bytes"
	"cand/internal/global"
	"context"
	"strings"
	"testing"
)

func TestWatcherDrainsAndDedups(t *testing.T) {
	done := make(chan struct{})
	ctx := New(context.Background(), global.NSTest, global.VerbosityDebug, done)
	logger := GetLogger(ctx)

	// Queue everything before the watcher starts so ordering is deterministic
	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "first\n")
	for i := 0; i < minRepeats+1; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "kernel dropped frames\n")
	}
	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "last\n")

	var output bytes.Buffer
	close(done)
	StartWatcher(logger, &output)
	logger.Wake()
	logger.Wait()

	out := output.String()
	if !strings.Contains(out, "first") || !strings.Contains(out, "last") {
		t.Fatalf("expected queued events to be drained, got:\n%s", out)
	}
	if strings.Count(out, "[Warn] kernel dropped frames") != 1 {
		t.Errorf("expected repeated message printed once, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed 10 repeated messages") {
		t.Errorf("expected suppression notice, got:\n%s", out)
	}
	if logger.Pending() != 0 {
		t.Errorf("expected empty queue after drain")
	}
}
