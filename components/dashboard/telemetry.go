package dashboard

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// SlogTelemetry writes telemetry events as structured log lines.
type SlogTelemetry struct {
	Logger *slog.Logger
	Level  slog.Level
}

// NewSlogTelemetry tags every event with the dashboard module.
func NewSlogTelemetry(log *slog.Logger) SlogTelemetry {
	if log == nil {
		log = slog.Default()
	}
	return SlogTelemetry{Logger: log.With(sl.Module("dashboard")), Level: slog.LevelDebug}
}

// Record implements Telemetry.
func (t SlogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	attrs := make([]slog.Attr, 0, len(payload))
	for _, key := range slices.Sorted(maps.Keys(payload)) {
		attrs = append(attrs, slog.Any(key, payload[key]))
	}
	t.Logger.LogAttrs(ctx, t.Level, event, attrs...)
}

// TelemetryEvent is a recorded event kept by RecordingTelemetry.
type TelemetryEvent struct {
	Name    string
	Payload map[string]any
}

// RecordingTelemetry keeps events in memory; used by tests and the CLI.
type RecordingTelemetry struct {
	mu     sync.Mutex
	events []TelemetryEvent
}

// Record implements Telemetry.
func (t *RecordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, TelemetryEvent{Name: event, Payload: maps.Clone(payload)})
}

// Events returns a copy of the recorded events.
func (t *RecordingTelemetry) Events() []TelemetryEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.events)
}

// Names lists recorded event names in order.
func (t *RecordingTelemetry) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.events))
	for _, evt := range t.events {
		names = append(names, evt.Name)
	}
	return names
}
