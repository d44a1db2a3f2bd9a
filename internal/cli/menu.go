package cli

import (
	"cand/internal/global"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Output files are named candump-YYYY-MM-DD_HHMMSS.bin and hold 16 byte records.
Read them back with: cand decode <file>
`
	menuIndent string = "  "
)

// Prints the help menu for a top level command (or the root) to stdout
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	writeHelpMenu(os.Stdout, filepath.Base(os.Args[0]), fs, command, rootCmd)
}

func writeHelpMenu(out io.Writer, progName string, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	curCmdSet := rootCmd
	if command != "" && command != RootCLICommand {
		var ok bool
		curCmdSet, ok = rootCmd.ChildCommands[command]
		if !ok {
			fmt.Fprintf(out, "Unknown command: %s\n", command)
			return
		}
	}

	usage := []string{progName}
	if curCmdSet == rootCmd {
		usage = append(usage, "[options]", "<command>")
	} else {
		usage = append(usage, curCmdSet.CommandName, "[options]")
		if curCmdSet.UsageOption != "" {
			usage = append(usage, curCmdSet.UsageOption)
		}
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usage, " "))

	if curCmdSet == rootCmd {
		fmt.Fprintln(out, curCmdSet.Description)
		fmt.Fprintln(out, curCmdSet.FullDescription)
		fmt.Fprintln(out)
		writeCommandList(out, rootCmd)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintf(out, "%sDescription:\n", menuIndent)
		fmt.Fprintf(out, "%s%s%s\n\n", menuIndent, menuIndent, curCmdSet.FullDescription)
	}

	writeFlagOptions(out, fs)

	if curCmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

// Commands in name order, descriptions aligned
func writeCommandList(out io.Writer, rootCmd *global.CommandSet) {
	if len(rootCmd.ChildCommands) == 0 {
		return
	}

	names := make([]string, 0, len(rootCmd.ChildCommands))
	width := 0
	for name := range rootCmd.ChildCommands {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%sCommands:\n", menuIndent)
	for _, name := range names {
		fmt.Fprintf(out, "%s%s%-*s  %s\n", menuIndent, menuIndent, width, name, rootCmd.ChildCommands[name].Description)
	}
	fmt.Fprintln(out)
}

// One line per option, with the short and long spelling of the same flag joined
// ("-c, --config <path>"). Flags sharing usage text are treated as one option.
func writeFlagOptions(out io.Writer, fs *flag.FlagSet) {
	type option struct {
		short string
		long  string
		value string
		usage string
		def   string
		left  string
	}

	var options []*option
	byUsage := make(map[string]*option)
	fs.VisitAll(func(arg *flag.Flag) {
		opt, seen := byUsage[arg.Usage]
		if !seen {
			opt = &option{def: arg.DefValue}
			opt.value, opt.usage = flag.UnquoteUsage(arg)
			byUsage[arg.Usage] = opt
			options = append(options, opt)
		}
		if len(arg.Name) == 1 {
			opt.short = "-" + arg.Name
		} else {
			opt.long = "--" + arg.Name
		}
	})
	if len(options) == 0 {
		return
	}

	width := 0
	for _, opt := range options {
		// Long-only options line up under the long spelling of paired ones
		opt.left = "    " + opt.long
		switch {
		case opt.short != "" && opt.long != "":
			opt.left = opt.short + ", " + opt.long
		case opt.short != "":
			opt.left = opt.short
		}
		if opt.value != "" && opt.value != "value" {
			opt.left += " <" + opt.value + ">"
		}
		width = max(width, len(opt.left))
	}

	sort.Slice(options, func(a, b int) bool {
		return optionKey(options[a].short, options[a].long) < optionKey(options[b].short, options[b].long)
	})

	fmt.Fprintf(out, "%sOptions:\n", menuIndent)
	for _, opt := range options {
		desc := opt.usage
		if opt.def != "" && opt.def != "false" && opt.def != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.def)
		}
		fmt.Fprintf(out, "%s%-*s  %s\n", menuIndent, width, opt.left, desc)
	}
}

func optionKey(short, long string) (key string) {
	key = strings.TrimLeft(short, "-")
	if key == "" {
		key = strings.TrimLeft(long, "-")
	}
	key = strings.ToLower(key)
	return
}
