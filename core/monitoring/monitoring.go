// Package monitoring provides process-wide error reporting. The coordinator
// runs unattended, so capture sites tag errors with their component to keep
// broker and ingestion failures triageable.
package monitoring

import "time"

// Monitor receives errors and panics from capture sites.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs the monitor implementation. Call during startup, before any
// goroutine that captures.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException forwards the error and tags to the installed monitor.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover reports a panic in the calling goroutine. Use in a defer.
func Recover() {
	current.Recover()
}

// Flush blocks until buffered events are delivered or the timeout elapses.
func Flush(d time.Duration) {
	current.Flush(d)
}
