package lifecycle

import (
	"cand/internal/global"
	"cand/internal/logctx"
	"context"
	"os"
	"os/signal"
	"syscall"
)

type DaemonLike interface {
	Shutdown()
}

// Handles all incoming signals from external sources.
// Any of SIGINT, SIGQUIT, SIGTERM or SIGHUP initiates daemon shutdown, then returns.
// Also returns (without shutting down) when ctx ends.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	handleSignals(ctx, sigChan, daemonManager)
}

func handleSignals(ctx context.Context, sigChan <-chan os.Signal, daemonManager DaemonLike) {
	ctx = logctx.AppendCtxTag(ctx, global.NSLifecycle)

	var sig os.Signal
	select {
	case <-ctx.Done():
		return
	case sig = <-sigChan: // Blocking
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v, shutting down\n", sig)

	err := NotifyStopping(ctx)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
	}

	daemonManager.Shutdown()

	logger := logctx.GetLogger(ctx)
	if logger != nil {
		logger.Wake()
	}
}
