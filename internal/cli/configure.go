package cli

import (
	"cand/internal/global"
	"cand/internal/install"
	"flag"
	"fmt"
	"os"
)

// Setup/installation options
func ConfigureMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var installDaemon bool
	var uninstallDaemon bool
	var newConf bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	commandFlags.BoolVar(&installDaemon, "install", false, "Install/Upgrade the capture daemon (binary, config, systemd unit)")
	commandFlags.BoolVar(&uninstallDaemon, "uninstall", false, "Remove the capture daemon (capture files are kept)")
	commandFlags.StringVar(&templateConfPath, "c", "", "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", "", "Path to template config file")
	commandFlags.BoolVar(&newConf, "config-template", false, "Create new template config (using config-path argument)")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	var err error

	if newConf {
		err = install.CreateTemplateConfig(templateConfPath)
	} else if installDaemon {
		install.Run()
	} else if uninstallDaemon {
		install.Remove()
	} else {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
