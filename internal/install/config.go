package install

import (
	"cand/internal/daemon"
	"cand/internal/global"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"
)

func installConfig() (err error) {
	configFilePath := global.DefaultConfigPath

	// Don't overwrite existing
	_, err = os.Stat(configFilePath)
	if err == nil {
		// No terminal - no overwrite
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		// File exists, prompt user for confirmation to overwrite
		question := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it?", configFilePath)
		if !confirm(question) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	} else if !os.IsNotExist(err) {
		err = fmt.Errorf("failed checking configuration file existence: %v", err)
		return
	}

	err = CreateTemplateConfig(configFilePath)
	if err != nil {
		return
	}

	// Output directory must exist before the first capture
	err = os.MkdirAll(global.DefaultOutputDir, 0750)
	if err != nil {
		err = fmt.Errorf("failed to create output directory: %v", err)
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", configFilePath)
	return
}

func uninstallConfig() (err error) {
	err = os.Remove(global.DefaultConfigPath)
	if err != nil && !os.IsNotExist(err) {
		return
	}
	err = nil

	fmt.Printf("Successfully removed configuration file '%s'\n", global.DefaultConfigPath)
	return
}

// Template daemon config with every default spelled out
func TemplateConfig() (newCfg daemon.JSONConfig) {
	syncOnFlush := true

	newCfg.Interface = global.DefaultInterface

	newCfg.Output.Directory = global.DefaultOutputDir
	newCfg.Output.SyncOnFlush = &syncOnFlush

	newCfg.Socket.ReceiveBufferSize = global.AutoReceiveBuffer
	newCfg.Socket.UseEBPF = true

	newCfg.Metrics.MaxAge = global.DefaultMetricMaxAge.String()
	newCfg.Metrics.Interval = global.DefaultMetricInterval.String()
	newCfg.Metrics.EnableQueryServer = false
	newCfg.Metrics.QueryServerPort = global.DefaultMetricPort
	return
}

func CreateTemplateConfig(filepath string) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	newConfFile, err := os.OpenFile(filepath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer newConfFile.Close()

	confBytes, err := json.MarshalIndent(TemplateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %v", err)
		return
	}
	confBytes = append(confBytes, []byte("\n")...)

	_, err = newConfFile.Write(confBytes)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %v", err)
		return
	}
	return
}
