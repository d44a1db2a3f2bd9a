package daemon

import (
	"cand/internal/global"
	"cand/pkg/record"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

// Loads JSON (comments and trailing commas allowed) config from file.
// A missing file at the default path yields an empty config.
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		if path == global.DefaultConfigPath && errors.Is(err, os.ErrNotExist) {
			err = nil
			return
		}
		err = fmt.Errorf("failed to read config file: %v", err)
		return
	}

	err = json.Unmarshal(jsonc.ToJSON(configFile), &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %v", path, err)
		return
	}
	return
}

// Parses JSON config into daemon config
func (cfg JSONConfig) NewDaemonConf() (config Config, err error) {
	// Capture settings
	config.Interface = cfg.Interface
	config.OutputDirectory = cfg.Output.Directory
	config.SyncOnFlush = true
	if cfg.Output.SyncOnFlush != nil {
		config.SyncOnFlush = *cfg.Output.SyncOnFlush
	}

	// Socket settings
	if cfg.Socket.ReceiveBufferSize < global.AutoReceiveBuffer {
		err = fmt.Errorf("invalid receive buffer size %d (use -1 for automatic)", cfg.Socket.ReceiveBufferSize)
		return
	}
	config.ReceiveBufferSize = cfg.Socket.ReceiveBufferSize
	config.UseEBPF = cfg.Socket.UseEBPF
	if len(cfg.Socket.Filters) > global.MaxCANFilters {
		err = fmt.Errorf("too many socket filters: %d (max %d)", len(cfg.Socket.Filters), global.MaxCANFilters)
		return
	}
	for i, rawFilter := range cfg.Socket.Filters {
		var filter global.CANFilter
		filter, err = rawFilter.parse()
		if err != nil {
			err = fmt.Errorf("socket filter %d: %v", i, err)
			return
		}
		config.Filters = append(config.Filters, filter)
	}

	// Output settings
	config.BeatsEndpoint = cfg.Alerts.BeatsAddress

	// Metric settings
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age time: %v", err)
			return
		}
	}
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse metric collection interval time: %v", err)
			return
		}
	}
	return
}

func (rawFilter JSONFilter) parse() (filter global.CANFilter, err error) {
	filter.ID, err = parseHex32(rawFilter.ID)
	if err != nil {
		err = fmt.Errorf("invalid id: %v", err)
		return
	}

	if rawFilter.Mask == "" {
		filter.Mask = record.FlagEFF | record.FlagRTR | record.MaskExtID
		return
	}
	filter.Mask, err = parseHex32(rawFilter.Mask)
	if err != nil {
		err = fmt.Errorf("invalid mask: %v", err)
		return
	}
	return
}

func parseHex32(raw string) (value uint32, err error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if raw == "" {
		err = fmt.Errorf("empty value")
		return
	}
	parsed, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return
	}
	value = uint32(parsed)
	return
}

// Sets defaults for any missing/invalid values
func (cfg *Config) setDefaults() {
	// Capture
	if cfg.Interface == "" {
		cfg.Interface = global.DefaultInterface
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = global.DefaultOutputDir
	}

	// Metrics
	if cfg.MetricMaxAge <= 0 {
		cfg.MetricMaxAge = global.DefaultMetricMaxAge
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.DefaultMetricPort
	}
	if cfg.MetricCollectionInterval <= 0 {
		cfg.MetricCollectionInterval = global.DefaultMetricInterval
	}
}
