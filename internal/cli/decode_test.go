package cli

import (
	"bytes"
	"cand/pkg/record"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeLog(t *testing.T, records []record.Record, tail []byte) (path string) {
	t.Helper()
	var raw []byte
	for _, rec := range records {
		var err error
		raw, err = rec.AppendBinary(raw)
		if err != nil {
			t.Fatalf("failed encoding record: %v", err)
		}
	}
	raw = append(raw, tail...)

	path = filepath.Join(t.TempDir(), "candump-test.bin")
	if err := os.WriteFile(path, raw, 0640); err != nil {
		t.Fatalf("failed writing log: %v", err)
	}
	return
}

func mustData(t *testing.T, ts uint32, id uint32, payload [8]byte) (rec record.Record) {
	t.Helper()
	rec, err := record.NewData(ts, id, payload)
	if err != nil {
		t.Fatalf("failed building data record: %v", err)
	}
	return
}

func TestFormatRecord(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 500_000_000, time.UTC)
	tests := []struct {
		name string
		rec  record.Record
		want []string
	}{
		{
			name: "standard frame",
			rec:  mustData(t, 1234567, 0x123, [8]byte{0xDE, 0xAD, 0xBE, 0xEF}),
			want: []string{"(1234.567)", "123#DEADBEEF"},
		},
		{
			name: "extended frame",
			rec:  mustData(t, 5, record.FlagEFF|0x18DAF110, [8]byte{1}),
			want: []string{"(0.005)", "18DAF110#01"},
		},
		{
			name: "error frame",
			rec:  mustData(t, 10, record.FlagERR|0x4, [8]byte{}),
			want: []string{"(0.010)", "ERR"},
		},
		{
			name: "start marker",
			rec:  record.NewStartTime(record.TimevalFromTime(start)),
			want: []string{"START", "2026-03-14T15:09:26.5"},
		},
		{
			name: "drop marker",
			rec:  record.NewDrop(2000, 17),
			want: []string{"(2.000)", "DROP 17"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := formatRecord(tt.rec)
			for _, want := range tt.want {
				if !strings.Contains(line, want) {
					t.Errorf("expected %q in %q", want, line)
				}
			}
		})
	}
}

func TestDumpLog(t *testing.T) {
	records := []record.Record{
		record.NewStartTime(record.Timeval{Sec: 1, Usec: 0}),
		mustData(t, 1000, 0x0A, [8]byte{'A'}),
		record.NewDrop(1200, 5),
		mustData(t, 1200, 0x0B, [8]byte{'B'}),
	}

	tests := []struct {
		name      string
		tail      []byte
		annotate  bool
		wantLines int
		wantErr   error
	}{
		{"plain", nil, false, 4, nil},
		{"annotated", nil, true, 6, nil},
		{"partial tail record", []byte{1, 2, 3}, false, 4, record.ErrShortRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer
			summary, err := dumpLog(writeLog(t, records, tt.tail), &output, tt.annotate)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
			if len(lines) != tt.wantLines {
				t.Errorf("expected %d lines, got %d:\n%s", tt.wantLines, len(lines), output.String())
			}
			if summary.Data != 2 || summary.Starts != 1 || summary.Drops != 1 || summary.DroppedFrames != 5 {
				t.Errorf("unexpected summary %+v", summary)
			}
		})
	}
}

func TestCaptureConfig(t *testing.T) {
	tests := []struct {
		name       string
		outputDir  string
		positional []string
		wantIface  string
		wantDir    string
		wantErr    bool
	}{
		{name: "config values", wantIface: "vcan0", wantDir: "/srv/candump"},
		{name: "interface override", positional: []string{"can1"}, wantIface: "can1", wantDir: "/srv/candump"},
		{name: "directory override", outputDir: "/tmp/cap", wantIface: "vcan0", wantDir: "/tmp/cap"},
		{name: "too many interfaces", positional: []string{"can0", "can1"}, wantErr: true},
	}

	configPath := filepath.Join(t.TempDir(), "cand.json")
	content := `{"interface": "vcan0", "output": {"directory": "/srv/candump"}}`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed writing config: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := captureConfig(configPath, tt.outputDir, tt.positional)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Interface != tt.wantIface || cfg.OutputDirectory != tt.wantDir {
				t.Errorf("expected %s in %s, got %s in %s", tt.wantIface, tt.wantDir, cfg.Interface, cfg.OutputDirectory)
			}
		})
	}
}
