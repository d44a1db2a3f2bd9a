// Daemon for continuous capture of CAN frames into a durable record log
package daemon

import (
	"cand/internal/capture"
	"cand/internal/externalio/beats"
	"cand/internal/externalio/server"
	"cand/internal/global"
	"cand/internal/lifecycle"
	"cand/internal/logctx"
	"cand/internal/network"
	"cand/internal/sink"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Capture loop still running after the shutdown timeout
var ErrCaptureStuck = errors.New("capture loop did not stop")

// Create new capture daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:         cfg,
		ctx:         ctx,
		cancel:      cancel,
		captureDone:     make(chan struct{}),
		shutdownDone:    make(chan struct{}),
		lossNotice:      make(chan struct{}, 1),
		shutdownTimeout: global.ShutdownTimeout,
		openSource:      openSocket,
		now:             time.Now,
	}
	return
}

func openSocket(ctx context.Context, cfg Config) (source frameSource, err error) {
	sock, err := network.Open(ctx, nil, cfg.Interface, network.Options{
		ReceiveBufferSize: cfg.ReceiveBufferSize,
		Filters:           cfg.Filters,
		UseEBPF:           cfg.UseEBPF,
	})
	if err != nil {
		return
	}
	source = sock
	return
}

// Opens the output file and socket, then starts the capture loop and side workers.
// Startup errors release anything already opened.
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(context.Background())
	daemon.ctx = logctx.WithLogger(daemon.ctx, logctx.GetLogger(globalCtx))

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSCapture)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	daemon.cfg.setDefaults()

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %v", err)
		return
	}

	// Socket first so a missing interface never leaves an empty output file behind
	daemon.Source, err = daemon.openSource(daemon.ctx, daemon.cfg)
	if err != nil {
		daemon.Source = nil
		return
	}

	daemon.Sink, err = sink.Open([]string{daemon.cfg.Interface}, daemon.cfg.OutputDirectory, daemon.now(),
		sink.Options{SyncOnFlush: daemon.cfg.SyncOnFlush})
	if err != nil {
		_ = daemon.Source.Close()
		daemon.Source = nil
		daemon.Sink = nil
		return
	}
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Writing records to %s\n", daemon.Sink.Path())

	// Optional loss alerts
	observers := []capture.LossObserver{lossNotifier{notice: daemon.lossNotice}}
	alerter, alertErr := beats.New([]string{daemon.cfg.Interface}, daemon.cfg.BeatsEndpoint, daemon.cfg.Interface)
	if alertErr != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"Loss alerts disabled: %v\n", alertErr)
	} else if alerter != nil {
		daemon.Alerter = alerter
		daemon.Alerter.Start(daemon.ctx)
		observers = append(observers, daemon.Alerter)
	}

	daemon.Capture = capture.New([]string{daemon.cfg.Interface}, daemon.Source, daemon.Sink, capture.NewSession(daemon.now), observers...)

	// Capture loop. A panic here is fatal.
	captureCtx := daemon.ctx
	go func() {
		defer close(daemon.captureDone)
		runErr := daemon.Capture.Run(captureCtx)
		if runErr != nil {
			daemon.runErr = runErr
			logctx.LogEvent(captureCtx, global.VerbosityStandard, global.ErrorLog, "Capture stopped: %v\n", runErr)
		}
	}()

	// Metrics Collector
	collectors := []Collector{daemon.Capture, daemon.Sink, daemon.Source}
	if daemon.Alerter != nil {
		collectors = append(collectors, daemon.Alerter)
	}
	daemon.Gatherer = NewGatherer(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge, collectors...)
	workerCtx := daemon.ctx
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.Gatherer.Run(workerCtx)
	}()

	// Metric Server
	if daemon.cfg.MetricQueryServerEnabled {
		serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetricSrv)

		var srvErr error
		daemon.MetricServer, srvErr = server.SetupListener(serverCtx,
			daemon.cfg.MetricQueryServerPort,
			daemon.Gatherer.Registry.Search,
			daemon.Gatherer.Registry.Discover,
			daemon.Gatherer.Registry.Aggregate)
		if srvErr != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Metric query server disabled: %v\n", srvErr)
			daemon.MetricServer = nil
		} else {
			daemon.wg.Add(1)
			go func() {
				defer daemon.wg.Done()
				server.Start(serverCtx, daemon.MetricServer)
			}()
		}
	}

	// Status notifications
	daemon.wg.Add(1)
	go func() {
		defer daemon.wg.Done()
		daemon.runStatusNotifier(workerCtx)
	}()

	err = lifecycle.NotifyReady(daemon.ctx)
	if err != nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
		err = nil
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Capture started on %s\n", daemon.cfg.Interface)
	return
}

// Blocks until the capture loop stops (fatal error) or shutdown completes.
// Returns the capture error, nil on signal-initiated shutdown, and
// ErrCaptureStuck when shutdown gave up waiting on the capture loop.
func (daemon *Daemon) Run() (err error) {
	select {
	case <-daemon.captureDone:
	case <-daemon.shutdownDone:
		select {
		case <-daemon.captureDone:
		default:
			err = fmt.Errorf("%w within %v", ErrCaptureStuck, daemon.shutdownTimeout)
			return
		}
	}
	err = daemon.runErr
	return
}

// Gracefully stops capture: receive is interrupted by closing the socket, then the sink is
// flushed and closed. Safe to call more than once and from any goroutine.
func (daemon *Daemon) Shutdown() {
	daemon.shutdownOnce.Do(daemon.shutdown)
}

func (daemon *Daemon) shutdown() {
	defer close(daemon.shutdownDone)

	ctx := logctx.AppendCtxTag(daemon.ctx, global.NSLifecycle)

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Daemon shutdown started...\n")

	// Capture loop treats the receive error after cancel as a clean stop
	daemon.cancel()

	if daemon.Source != nil {
		err := daemon.Source.Close()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed closing socket: %v\n", err)
		}
	}

	captureStopped := true
	if daemon.Capture != nil {
		select {
		case <-daemon.captureDone:
		case <-time.After(daemon.shutdownTimeout):
			captureStopped = false
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"Timeout: capture loop did not stop within %v, output file left open\n", daemon.shutdownTimeout)
		}
	}

	// Sink is owned by the capture loop until it has returned
	if daemon.Sink != nil && captureStopped {
		err := daemon.Sink.Close()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed closing output file: %v\n", err)
		} else {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
				"Closed %s (blake2b %s)\n", daemon.Sink.Path(), daemon.Sink.Digest())
		}
	}

	// Observers may still be called by a capture loop that has not stopped
	if daemon.Alerter != nil && captureStopped {
		err := daemon.Alerter.Shutdown()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Failed closing beats connection: %v\n", err)
		}
	}

	if daemon.MetricServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), daemon.shutdownTimeout)
		err := daemon.MetricServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Wait for all workers to finish (with timeout)
	done := make(chan struct{})
	go func() {
		daemon.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Daemon shutdown completed successfully\n")
	case <-time.After(daemon.shutdownTimeout):
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Timeout: daemon workers did not stop within %v\n", daemon.shutdownTimeout)
	}
}
