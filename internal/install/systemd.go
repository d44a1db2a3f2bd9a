package install

import (
	"cand/internal/global"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Unit file with variables injected
func renderServiceUnit() (unitFile []byte, err error) {
	unitFile, err = installationFiles.ReadFile("static-files/" + filepath.Base(global.DefaultServicePath))
	if err != nil {
		err = fmt.Errorf("Unable to retrieve unit file from embedded filesystem: %v", err)
		return
	}

	newUnitFile := strings.Replace(string(unitFile), "$executableFilePath", global.DefaultBinaryPath, 1)
	newUnitFile = strings.Replace(newUnitFile, "$configFilePath", global.DefaultConfigPath, 1)
	unitFile = []byte(newUnitFile)
	return
}

func installService() (err error) {
	unitName := filepath.Base(global.DefaultServicePath)

	unitFile, err := renderServiceUnit()
	if err != nil {
		return
	}

	err = os.WriteFile(global.DefaultServicePath, unitFile, 0644)
	if err != nil {
		return
	}

	// Reload for new unit file
	command := exec.Command("systemctl", "daemon-reload")
	output, err := command.CombinedOutput()
	if err != nil {
		err = fmt.Errorf("Failed to reload systemd units: %v: %s", err, string(output))
		return
	}

	// Check if enabled
	command = exec.Command("systemctl", "is-enabled", unitName)
	output, err = command.CombinedOutput()
	if err != nil {
		if !strings.Contains(string(output), "disabled") {
			err = fmt.Errorf("Failed to check systemd service enablement status: %v: %s", err, string(output))
			return
		}
		// Disabled status is exit code 1
		err = nil
	}
	enableStatus := strings.Trim(string(output), "\n")

	if strings.ToLower(enableStatus) != "enabled" {
		command := exec.Command("systemctl", "enable", unitName)
		output, err = command.CombinedOutput()
		if err != nil {
			err = fmt.Errorf("Failed to enable systemd service: %v: %s", err, string(output))
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: set the interface in '%s' and start the service with 'systemctl start %s'\n",
		global.DefaultConfigPath, unitName)
	return
}

func uninstallService() (err error) {
	unitName := filepath.Base(global.DefaultServicePath)

	// Check if enabled
	command := exec.Command("systemctl", "is-enabled", unitName)
	output, err := command.CombinedOutput()
	if err != nil {
		if !strings.Contains(string(output), "not-found") && !strings.Contains(string(output), "disabled") {
			err = fmt.Errorf("Failed to check systemd service enablement status: %v: %s", err, string(output))
			return
		}
		// Disabled/not-found status is exit code != 0
		err = nil
	}
	enableStatus := strings.Trim(string(output), "\n")

	if strings.ToLower(enableStatus) == "enabled" {
		command := exec.Command("systemctl", "disable", unitName)
		output, err = command.CombinedOutput()
		if err != nil {
			err = fmt.Errorf("Failed to disable systemd service: %v: %s", err, string(output))
			return
		}
	}

	command = exec.Command("systemctl", "show", unitName, "--property=ActiveState")
	output, err = command.CombinedOutput()
	if err != nil {
		if !strings.Contains(string(output), "could not be found") {
			err = fmt.Errorf("Failed to check systemd service status: %v: %s", err, string(output))
			return
		}
		err = nil
	}
	serviceStatus := strings.Trim(string(output), "\n")

	// Stopping lets the daemon flush and close the current capture file
	if strings.Contains(serviceStatus, "active") && !strings.Contains(serviceStatus, "inactive") {
		command = exec.Command("systemctl", "stop", unitName)
		output, err = command.CombinedOutput()
		if err != nil {
			err = fmt.Errorf("Failed to stop systemd service: %v: %s", err, string(output))
			return
		}
	}

	err = os.Remove(global.DefaultServicePath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	// Reload for removed unit file
	command = exec.Command("systemctl", "daemon-reload")
	output, err = command.CombinedOutput()
	if err != nil {
		err = fmt.Errorf("Failed to reload systemd units: %v: %s", err, string(output))
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
