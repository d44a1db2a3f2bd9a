package logctx

import (
	"cand/internal/global"
	"context"
	"testing"
)

func TestLogEvent(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	ctx := New(context.Background(), global.NSTest, global.VerbosityProgress, done)
	logger := GetLogger(ctx)
	if logger == nil {
		t.Fatalf("expected logger creation, got nil logger")
	}

	tests := []struct {
		name          string
		logLevel      int
		eventLevel    int
		severity      string
		message       string
		vars          []any
		expectEvents  int
		expectMessage string
	}{
		{
			name:          "event level <= print level is logged",
			logLevel:      2,
			eventLevel:    1,
			severity:      global.InfoLog,
			message:       "capture started",
			expectEvents:  1,
			expectMessage: "capture started",
		},
		{
			name:         "event level > print level is dropped",
			logLevel:     1,
			eventLevel:   3,
			severity:     global.InfoLog,
			message:      "should not appear",
			expectEvents: 0,
		},
		{
			name:          "error severity bypasses level filtering",
			logLevel:      0,
			eventLevel:    5,
			severity:      global.ErrorLog,
			message:       "receive failed",
			expectEvents:  1,
			expectMessage: "receive failed",
		},
		{
			name:          "formatted message with vars",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.WarnLog,
			message:       "dropped=%d",
			vars:          []any{5},
			expectEvents:  1,
			expectMessage: "dropped=5",
		},
		{
			name:          "format verb but no variables for format",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.InfoLog,
			message:       "rate 100%",
			expectEvents:  1,
			expectMessage: "rate 100%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger.mutex.Lock()
			logger.queue = []Event{}
			logger.mutex.Unlock()

			SetLogLevel(ctx, tt.logLevel)
			LogEvent(ctx, tt.eventLevel, tt.severity, tt.message, tt.vars...)

			if got := logger.Pending(); got != tt.expectEvents {
				t.Fatalf("expected %d events, got %d", tt.expectEvents, got)
			}
			if tt.expectEvents == 1 {
				ev := logger.queue[0]
				if ev.Message != tt.expectMessage {
					t.Errorf("expected message %q, got %q", tt.expectMessage, ev.Message)
				}
				if ev.Severity != tt.severity {
					t.Errorf("expected severity %q, got %q", tt.severity, ev.Severity)
				}
			}
		})
	}
}

func TestLogEventWithoutLogger(t *testing.T) {
	// Must be a no-op rather than a panic
	LogEvent(context.Background(), global.VerbosityStandard, global.InfoLog, "nobody listening")
	SetLogLevel(context.Background(), 3)
}
