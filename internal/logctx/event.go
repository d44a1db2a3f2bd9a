package logctx

import (
	"cand/internal/global"
	"context"
	"fmt"
	"strings"
	"time"
)

// Timestamp layout with fixed width fractional seconds
const timestampLayout string = "2006-01-02T15:04:05.000000000Z07:00"

// Entry for logging events
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	logger := GetLogger(ctx)
	if logger == nil || !logger.Enabled(eventLevel, severity) {
		return
	}

	newMsg := message
	if len(vars) > 0 && strings.Contains(message, "%") {
		newMsg = fmt.Sprintf(message, vars...)
	}
	logger.log(eventLevel, severity, GetTagList(ctx), newMsg)
}

// Reports whether an event at this level and severity would be recorded
func (logger *Logger) Enabled(eventLevel int, severity string) (enabled bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()
	enabled = eventLevel <= logger.PrintLevel || severity == global.ErrorLog
	return
}

// Queues event unless filtered by level
func (logger *Logger) log(eventLevel int, eventSeverity string, tags []string, fullMessage string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if eventLevel > logger.PrintLevel && eventSeverity != global.ErrorLog {
		return
	}

	logger.queue = append(logger.queue, Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  eventSeverity,
		Message:   fullMessage,
	})
	logger.cond.Signal() // Notify watcher that new event is available
}

// Stringify full event. No newline added, message creator determines newlines
func (event Event) Format() (text string) {
	var parts []string
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+event.Timestamp.Format(timestampLayout)+"]")
	}
	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}
	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	text = strings.Join(parts, " ")
	return
}
