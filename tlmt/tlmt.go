package tlmt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"runtime"

	"github.com/posthog/posthog-go"
	"github.com/shirou/gopsutil/v4/host"
)

// Event is an anonymous usage event. Params never carry place data.
type Event struct {
	Name   string
	Params map[string]any
}

func NewEvent(name string, params map[string]any) Event {
	return Event{Name: name, Params: params}
}

type Telemetry interface {
	Send(ctx context.Context, evt Event) error
	Close() error
}

type noop struct{}

func (noop) Send(context.Context, Event) error { return nil }
func (noop) Close() error                      { return nil }

// New returns a posthog backed Telemetry, or a no-op one when apiKey is empty.
func New(ctx context.Context, apiKey, endpoint string) (Telemetry, error) {
	if apiKey == "" {
		return noop{}, nil
	}

	cfg := posthog.Config{}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}

	client, err := posthog.NewWithConfig(apiKey, cfg)
	if err != nil {
		return nil, err
	}

	return &posthogTelemetry{
		client: client,
		id:     machineID(ctx),
		props:  hostProperties(ctx),
	}, nil
}

type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

type posthogTelemetry struct {
	client enqueuer
	id     string
	props  map[string]any
}

func (t *posthogTelemetry) Send(_ context.Context, evt Event) error {
	props := posthog.NewProperties()
	for k, v := range t.props {
		props.Set(k, v)
	}

	for k, v := range evt.Params {
		props.Set(k, v)
	}

	return t.client.Enqueue(posthog.Capture{
		DistinctId: t.id,
		Event:      evt.Name,
		Properties: props,
	})
}

func (t *posthogTelemetry) Close() error {
	return t.client.Close()
}

// machineID hashes the host id so the raw value never leaves the machine.
func machineID(ctx context.Context) string {
	info, err := host.InfoWithContext(ctx)
	if err != nil || info.HostID == "" {
		return "unknown"
	}

	sum := sha256.Sum256([]byte(info.HostID))

	return hex.EncodeToString(sum[:8])
}

func hostProperties(ctx context.Context) map[string]any {
	props := map[string]any{
		"arch": runtime.GOARCH,
		"os":   runtime.GOOS,
	}

	if info, err := host.InfoWithContext(ctx); err == nil {
		props["platform"] = info.Platform
		props["platform_version"] = info.PlatformVersion
	}

	return props
}
