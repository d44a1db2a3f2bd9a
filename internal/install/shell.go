package install

import (
	"fmt"
	"os"
	"path/filepath"
)

const sysAutocompleteDir string = "/usr/share/bash-completion/completions"

// System completion dir when present, otherwise ~/.bash_completion.d (userDir reports the fallback)
func completionPath(systemDir string, executable string) (path string, userDir bool, err error) {
	name := filepath.Base(executable)

	_, err = os.Stat(systemDir)
	if err == nil {
		path = filepath.Join(systemDir, name)
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		err = fmt.Errorf("failed to find user home directory: %v", err)
		return
	}
	path = filepath.Join(homeDir, ".bash_completion.d", name)
	userDir = true
	return
}

func installBashAutocomplete() (err error) {
	script, err := installationFiles.ReadFile("static-files/autocomplete.sh")
	if err != nil {
		err = fmt.Errorf("unable to retrieve autocomplete file from embedded filesystem: %v", err)
		return
	}

	path, userDir, err := completionPath(sysAutocompleteDir, os.Args[0])
	if err != nil {
		return
	}
	if userDir {
		err = os.MkdirAll(filepath.Dir(path), 0750)
		if err != nil {
			err = fmt.Errorf("failed to create user autocomplete dir: %v", err)
			return
		}
		fmt.Printf("System completion dir missing, installing bash completion at %s\n", path)
		fmt.Printf("Make sure ~/.bashrc sources ~/.bash_completion and ~/.bash_completion.d/*\n")
	}

	err = os.WriteFile(path, script, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write autocompletion file: %v", err)
		return
	}
	return
}

func uninstallBashAutocomplete() (err error) {
	path, _, err := completionPath(sysAutocompleteDir, os.Args[0])
	if err != nil {
		return
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove autocompletion file: %v", err)
		return
	}
	err = nil

	fmt.Printf("Successfully removed shell autocompletion\n")
	return
}
