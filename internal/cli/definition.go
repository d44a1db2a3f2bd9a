package cli

import "cand/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "CAN bus capture daemon (cand)",
		FullDescription: "  Records every frame seen on a SocketCAN interface to a durable binary log",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Capturing
	root.ChildCommands["capture"] = &global.CommandSet{
		CommandName:     "capture",
		UsageOption:     "[interface]",
		Description:     "Capture Frames",
		FullDescription: "Receives frames from the interface (default " + global.DefaultInterface + ", '" + global.AnyInterface + "' for all) and appends them to a new log file until signalled",
		ChildCommands:   nil,
	}

	// Reading logs
	root.ChildCommands["decode"] = &global.CommandSet{
		CommandName:     "decode",
		UsageOption:     "<file>",
		Description:     "Print Log Records",
		FullDescription: "Prints every record of a capture log (plain, .zst or .gz) in candump style",
		ChildCommands:   nil,
	}

	// Setup
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Setup Actions",
		FullDescription: "Install or remove the daemon, or write a template configuration",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
