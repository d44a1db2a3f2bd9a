package cli

import (
	"bytes"
	"cand/internal/global"
	"flag"
	"strings"
	"testing"
)

func TestWriteHelpMenu(t *testing.T) {
	rootFlags := func() *flag.FlagSet {
		fs := flag.NewFlagSet("cand", flag.ContinueOnError)
		var verbosity int
		fs.IntVar(&verbosity, "v", 1, "Increase detailed progress messages")
		fs.IntVar(&verbosity, "verbosity", 1, "Increase detailed progress messages")
		return fs
	}
	captureFlags := func() *flag.FlagSet {
		fs := flag.NewFlagSet("capture", flag.ContinueOnError)
		var configPath string
		SetCommon(fs, &configPath)
		return fs
	}
	configureFlags := func() *flag.FlagSet {
		fs := flag.NewFlagSet("configure", flag.ContinueOnError)
		var install bool
		fs.BoolVar(&install, "install", false, "Install the daemon")
		return fs
	}

	tests := []struct {
		name     string
		command  string
		flags    *flag.FlagSet
		contains []string
		absent   []string
	}{
		{
			name:    "root",
			command: RootCLICommand,
			flags:   rootFlags(),
			contains: []string{
				"Usage: cand [options] <command>\n",
				"Commands:\n",
				"    capture    Capture Frames\n",
				"    version    Show Version Information\n",
				"  -v, --verbosity <int>  Increase detailed progress messages [default: 1]\n",
				"cand decode <file>",
			},
		},
		{
			name:    "capture",
			command: "capture",
			flags:   captureFlags(),
			contains: []string{
				"Usage: cand capture [options] [interface]\n",
				"  Description:\n",
				"-c, --config <file>  Path to the configuration file [default: " + global.DefaultConfigPath + "]\n",
			},
			absent: []string{"Commands:", "cand decode <file>"},
		},
		{
			name:     "long only option",
			command:  "configure",
			flags:    configureFlags(),
			contains: []string{"Usage: cand configure [options]\n", "      --install  Install the daemon\n"},
			absent:   []string{"[default: false]"},
		},
		{
			name:     "unknown command",
			command:  "replay",
			flags:    rootFlags(),
			contains: []string{"Unknown command: replay\n"},
			absent:   []string{"Usage:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			writeHelpMenu(&out, "cand", tt.flags, tt.command, DefineOptions())

			text := out.String()
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("expected menu to contain %q, got:\n%s", want, text)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(text, unwanted) {
					t.Errorf("expected menu without %q, got:\n%s", unwanted, text)
				}
			}
		})
	}
}
