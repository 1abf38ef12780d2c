package runner

import (
	"context"
	"sync"

	"github.com/gosom/gmaps-favorites/tlmt"
)

type Runner interface {
	Run(context.Context) error
	Close(context.Context) error
}

var (
	telemetryMu sync.RWMutex
	telemetry   tlmt.Telemetry
)

// SetTelemetry installs the process wide telemetry sink.
func SetTelemetry(t tlmt.Telemetry) {
	telemetryMu.Lock()
	defer telemetryMu.Unlock()

	telemetry = t
}

// Telemetry returns the installed sink, or a no-op one.
func Telemetry() tlmt.Telemetry {
	telemetryMu.RLock()
	defer telemetryMu.RUnlock()

	if telemetry == nil {
		t, _ := tlmt.New(context.Background(), "", "")
		return t
	}

	return telemetry
}
