package refreshflow

import (
	"fmt"
	"os"
	"time"
)

// LogEvent captures information about a logging event.
type LogEvent struct {
	// A human-readable message about the event.
	Message string

	// The batch ID, if the event belongs to a batch run.
	BatchID string

	// The client-side item ID, if available.
	ItemID *string

	// The remote job ID, if available.
	JobID *string

	// The resource kind, if available.
	Kind *string

	// Any error associated with the event.
	Err error

	// How long the operation took, if relevant.
	Duration *time.Duration
}

func defaultInfoLog(ev LogEvent) {
	// Simple fallback to stdout
	msg := fmt.Sprintf("[refreshflow:INFO] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stdout, msg)
}

func defaultErrorLog(ev LogEvent) {
	// Simple fallback to stderr
	msg := fmt.Sprintf("[refreshflow:ERROR] %s", ev.Message)
	if ev.Err != nil {
		msg += fmt.Sprintf(" | error: %v", ev.Err)
	}
	_, _ = fmt.Fprintln(os.Stderr, msg)
}

// Helper methods to invoke logging
func (c *Config) logInfo(ev LogEvent) {
	if c.InfoLog == nil {
		defaultInfoLog(ev)
		return
	}
	c.InfoLog(ev)
}

func (c *Config) logError(ev LogEvent) {
	if c.ErrorLog == nil {
		defaultErrorLog(ev)
		return
	}
	c.ErrorLog(ev)
}
