// Handles all installation/setup/configuration/updates
package install

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Read in installation static files at compile time
//
//go:embed static-files/*
var installationFiles embed.FS

// Full installation (idempotent)
func Run() {
	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Installation must be run as root\n")
		os.Exit(1)
	}

	// Move binary (self) into place
	err := installBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error installing binary: %v\n", err)
		os.Exit(1)
	}

	// Add shell autocomplete
	err = installBashAutocomplete()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting bash autocomplete: %v\n", err)
		os.Exit(1)
	}

	// Create template config
	err = installConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with template config: %v\n", err)
		os.Exit(1)
	}

	// Create apparmor profile if system supports it
	err = installAAProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with AppArmor profile: %v\n", err)
		os.Exit(1)
	}

	// Create systemd service
	err = installService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with Systemd service: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Installation completed successfully\n")
}

// Full uninstall. Captured logs in the output directory are left in place.
func Remove() {
	// Only ask if in terminal
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if !confirm("Are you SURE you want to uninstall? (this will remove the configuration file)") {
			fmt.Printf("Aborting uninstall\n")
			return
		}
	}

	// Must run as root
	if os.Geteuid() != 0 {
		fmt.Fprintf(os.Stderr, "Uninstall must be run as root\n")
		os.Exit(1)
	}

	// Remove apparmor profile if system supports it
	err := uninstallAAProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with AppArmor profile: %v\n", err)
	}

	// Systemd service
	err = uninstallService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with Systemd service: %v\n", err)
	}

	// Remove binary
	err = uninstallBinary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing binary: %v\n", err)
	}

	// Remove shell autocomplete
	err = uninstallBashAutocomplete()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error removing bash autocomplete: %v\n", err)
	}

	// Remove template config
	err = uninstallConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error with template config: %v\n", err)
	}
}

// Prompts for a yes/no answer on stdin
func confirm(question string) (yes bool) {
	fmt.Printf("%s (yes/no): ", question)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	yes = strings.ToLower(input) == "yes"
	return
}
