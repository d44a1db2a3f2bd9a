package install

import (
	"cand/internal/daemon"
	"cand/internal/global"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateTemplateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cand.json")
	if err := CreateTemplateConfig(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jsonCfg, err := daemon.LoadConfig(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	cfg, err := jsonCfg.NewDaemonConf()
	if err != nil {
		t.Fatalf("template does not convert: %v", err)
	}

	if cfg.Interface != global.DefaultInterface {
		t.Errorf("expected interface %s, got %s", global.DefaultInterface, cfg.Interface)
	}
	if cfg.OutputDirectory != global.DefaultOutputDir {
		t.Errorf("expected directory %s, got %s", global.DefaultOutputDir, cfg.OutputDirectory)
	}
	if !cfg.SyncOnFlush || !cfg.UseEBPF || cfg.ReceiveBufferSize != global.AutoReceiveBuffer {
		t.Errorf("unexpected socket/output settings: %+v", cfg)
	}
	if cfg.MetricCollectionInterval != global.DefaultMetricInterval || cfg.MetricMaxAge != global.DefaultMetricMaxAge {
		t.Errorf("unexpected metric settings: %+v", cfg)
	}
}

func TestCreateTemplateConfigNoPath(t *testing.T) {
	if err := CreateTemplateConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestRenderedFiles(t *testing.T) {
	tests := []struct {
		name     string
		render   func() ([]byte, error)
		contains []string
	}{
		{
			name:   "service unit",
			render: renderServiceUnit,
			contains: []string{
				"ExecStart=" + global.DefaultBinaryPath + " capture --config " + global.DefaultConfigPath,
				"Restart=on-failure",
				"Type=notify",
			},
		},
		{
			name:   "apparmor profile",
			render: renderAAProfile,
			contains: []string{
				"@{exec_path}=" + global.DefaultBinaryPath,
				"@{config_path}=" + global.DefaultConfigPath,
				"@{output_dir}=" + global.DefaultOutputDir,
				"network can raw,",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := tt.render()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			text := string(content)
			if strings.Contains(text, "=$") || strings.Contains(text, " $") {
				t.Errorf("unreplaced variable left in output:\n%s", text)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("expected output to contain %q", want)
				}
			}
		})
	}
}

func TestCompletionPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	systemDir := t.TempDir()
	tests := []struct {
		name        string
		systemDir   string
		wantPath    string
		wantUserDir bool
	}{
		{"system dir present", systemDir, filepath.Join(systemDir, "cand"), false},
		{"fallback to home", filepath.Join(systemDir, "missing"), filepath.Join(home, ".bash_completion.d", "cand"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, userDir, err := completionPath(tt.systemDir, "/usr/local/bin/cand")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if path != tt.wantPath || userDir != tt.wantUserDir {
				t.Errorf("expected %s (user %v), got %s (user %v)", tt.wantPath, tt.wantUserDir, path, userDir)
			}
		})
	}
}

func TestAutocompleteScript(t *testing.T) {
	script, err := installationFiles.ReadFile("static-files/autocomplete.sh")
	if err != nil {
		t.Fatalf("missing embedded script: %v", err)
	}
	text := string(script)
	for _, want := range []string{"capture decode configure version", "--config-template", "complete -F _cand cand"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected completion script to contain %q", want)
		}
	}
}
