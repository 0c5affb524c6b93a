package dashboard

import (
	"context"
	"strings"
	"time"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
)

// ActivityItem represents a recent activity entry displayed by the widget.
type ActivityItem struct {
	User       string    `json:"user"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ActivityFeed fetches recent activity entries for the current viewer.
type ActivityFeed interface {
	Recent(ctx context.Context, viewer ViewerContext, limit int) ([]ActivityItem, error)
}

// StaticActivityFeed returns fixed entries, used when no sink is configured.
type StaticActivityFeed struct {
	Items []ActivityItem
}

// Recent returns up to limit items from the static list.
func (f StaticActivityFeed) Recent(_ context.Context, _ ViewerContext, limit int) ([]ActivityItem, error) {
	if limit <= 0 || limit >= len(f.Items) {
		return append([]ActivityItem{}, f.Items...), nil
	}
	return append([]ActivityItem{}, f.Items[:limit]...), nil
}

// SinkActivityFeed reads activity recorded by panel commands. Admins see every
// event, other viewers only their own.
type SinkActivityFeed struct {
	Sink *activity.MemorySink
}

// NewSinkActivityFeed wraps a memory sink.
func NewSinkActivityFeed(sink *activity.MemorySink) SinkActivityFeed {
	return SinkActivityFeed{Sink: sink}
}

// Recent implements ActivityFeed.
func (f SinkActivityFeed) Recent(_ context.Context, viewer ViewerContext, limit int) ([]ActivityItem, error) {
	if f.Sink == nil {
		return nil, nil
	}
	var filter func(activity.Event) bool
	if viewer.Role() != status.RoleAdmin {
		filter = func(evt activity.Event) bool {
			return viewer.UserID != "" && (evt.UserID == viewer.UserID || evt.ActorID == viewer.UserID)
		}
	}
	events := f.Sink.Recent(limit, filter)
	items := make([]ActivityItem, 0, len(events))
	for _, evt := range events {
		items = append(items, activityItem(evt))
	}
	return items, nil
}

func activityItem(evt activity.Event) ActivityItem {
	user := evt.ActorID
	if user == "" {
		user = "system"
	}
	details := evt.ObjectType
	if evt.ObjectID != "" {
		details = evt.ObjectType + " " + evt.ObjectID
	}
	return ActivityItem{
		User:       user,
		Action:     describeVerb(evt.Verb),
		Details:    details,
		OccurredAt: evt.OccurredAt,
	}
}

// describeVerb turns "seller.order.accept" into "Order Accept".
func describeVerb(verb string) string {
	parts := strings.Split(verb, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strcase.ToCase(strings.Join(parts, " "), strcase.TitleCase, ' ')
}
