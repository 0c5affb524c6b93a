// Package commands holds the go-command handlers behind every panel action.
// Each command calls the marketplace backend, then records telemetry, emits
// an activity event and notifies the refresh hook so open overviews and
// list screens update.
package commands

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// Telemetry allows commands to emit structured events.
type Telemetry = dashboard.Telemetry

// ActivitySink receives activity events. *activity.Emitter satisfies it.
type ActivitySink interface {
	Emit(ctx context.Context, evt activity.Event) error
}

// Deps are the collaborators shared by the commands.
type Deps struct {
	Client    marketplace.Client
	Telemetry Telemetry
	Activity  ActivitySink
	Refresh   dashboard.RefreshHook
	Clock     func() time.Time
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

type noopActivity struct{}

func (noopActivity) Emit(context.Context, activity.Event) error { return nil }

type noopRefresh struct{}

func (noopRefresh) WidgetUpdated(context.Context, dashboard.WidgetEvent) error { return nil }

func (d Deps) normalized() Deps {
	if d.Telemetry == nil {
		d.Telemetry = noopTelemetry{}
	}
	if d.Activity == nil {
		d.Activity = noopActivity{}
	}
	if d.Refresh == nil {
		d.Refresh = noopRefresh{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// outcome describes a completed mutation for telemetry, activity and refresh.
type outcome struct {
	viewer     panels.Viewer
	verb       string
	objectType string
	objectID   string
	screen     string
	metadata   map[string]any
}

// settle runs the side effects of a successful mutation. Activity and refresh
// failures are reported through telemetry and never undo the mutation.
func (d Deps) settle(ctx context.Context, out outcome) {
	payload := map[string]any{
		"object_type": out.objectType,
		"object_id":   out.objectID,
		"user_id":     out.viewer.UserID,
		"role":        out.viewer.Role.String(),
	}
	for k, v := range out.metadata {
		payload[k] = v
	}
	d.Telemetry.Record(ctx, out.verb, payload)

	meta := map[string]any{"role": out.viewer.Role.String()}
	for k, v := range out.metadata {
		meta[k] = v
	}
	evt := activity.NormalizeEvent(activity.Event{
		Verb:       out.verb,
		ActorID:    out.viewer.UserID,
		UserID:     out.viewer.UserID,
		ObjectType: out.objectType,
		ObjectID:   out.objectID,
		Metadata:   meta,
		OccurredAt: d.Clock().UTC(),
	})
	if err := d.Activity.Emit(ctx, evt); err != nil {
		d.Telemetry.Record(ctx, "panels.activity.error", map[string]any{"verb": out.verb, "error": err.Error()})
	}

	if out.screen == "" {
		return
	}
	err := d.Refresh.WidgetUpdated(dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID: out.viewer.UserID,
		UserID:  out.viewer.UserID,
		Role:    out.viewer.Role.String(),
	}), dashboard.WidgetEvent{
		Reason:   out.verb,
		Resource: out.screen,
	})
	if err != nil {
		d.Telemetry.Record(ctx, "panels.refresh.error", map[string]any{"verb": out.verb, "error": err.Error()})
	}
}

func missingDependency(msg string) error {
	return goerrors.New(msg, goerrors.CategoryInternal)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return goerrors.NewValidation("invalid input", goerrors.FieldError{Field: field, Message: "is required"})
	}
	return nil
}
