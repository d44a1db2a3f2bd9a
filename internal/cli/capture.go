package cli

import (
	"cand/internal/daemon"
	"cand/internal/global"
	"cand/internal/lifecycle"
	"cand/internal/logctx"
	"context"
	"flag"
	"fmt"
)

// Runs the capture daemon in the foreground until signalled or the capture fails.
// A non-nil error means the process should exit non-zero.
func CaptureMode(ctx context.Context, commandname string, args []string) (err error) {
	var configPath string
	var outputDir string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	commandFlags.StringVar(&outputDir, "d", "", "Directory to write capture files into (overrides config)")
	commandFlags.StringVar(&outputDir, "directory", "", "Directory to write capture files into (overrides config)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, global.CmdOpts)
	}
	commandFlags.Parse(args)
	logctx.SetLogLevel(ctx, global.Verbosity)

	daemonConfig, err := captureConfig(configPath, outputDir, commandFlags.Args())
	if err != nil {
		return
	}
	logctx.LogEvent(logctx.AppendCtxTag(ctx, global.NSCLI), global.VerbosityProgress, global.InfoLog,
		"Loaded configuration from %s (interface %s)\n", configPath, daemonConfig.Interface)

	captureDaemon := daemon.NewDaemon(daemonConfig)
	err = captureDaemon.Start(ctx)
	if err != nil {
		err = fmt.Errorf("failed starting capture daemon: %v", err)
		captureDaemon.Shutdown()
		return
	}

	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go lifecycle.SignalHandler(signalCtx, captureDaemon)

	err = captureDaemon.Run()

	// Signal path already shut down, a capture failure still needs the file closed
	captureDaemon.Shutdown()
	if err != nil {
		err = fmt.Errorf("capture failed: %v", err)
	}
	return
}

// Config file plus command line overrides
func captureConfig(configPath string, outputDir string, positional []string) (cfg daemon.Config, err error) {
	if len(positional) > 1 {
		err = fmt.Errorf("expected at most one interface name, got %d arguments", len(positional))
		return
	}

	jsonCfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return
	}

	if len(positional) == 1 {
		jsonCfg.Interface = positional[0]
	}
	if outputDir != "" {
		jsonCfg.Output.Directory = outputDir
	}

	cfg, err = jsonCfg.NewDaemonConf()
	if err != nil {
		return
	}
	return
}
