package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	dashboard "github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/lib/validate"
)

// WidgetService is the slice of *dashboard.Service the widget commands drive.
type WidgetService interface {
	Widget(ctx context.Context, widgetID string) (dashboard.WidgetInstance, error)
	AddWidget(ctx context.Context, req dashboard.AddWidgetRequest) error
	UpdateWidget(ctx context.Context, widgetID string, req dashboard.UpdateWidgetRequest) error
	RemoveWidget(ctx context.Context, widgetID string) error
	ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error
	NotifyWidgetUpdated(ctx context.Context, event dashboard.WidgetEvent) error
	SavePreferences(ctx context.Context, viewer dashboard.ViewerContext, overrides dashboard.LayoutOverrides) error
}

// Actor is the signed-in user a command runs for. Transports set it from the
// authenticated viewer; request bodies cannot supply it.
type Actor struct {
	UserID string      `json:"-"`
	Role   status.Role `json:"-"`
}

// ActorFor builds the actor of an authenticated viewer.
func ActorFor(userID string, role status.Role) Actor {
	return Actor{UserID: strings.TrimSpace(userID), Role: role}
}

func (a Actor) activity(ctx context.Context) context.Context {
	return dashboard.ContextWithActivity(ctx, dashboard.ActivityContext{
		ActorID: a.UserID,
		UserID:  a.UserID,
		Role:    a.Role.String(),
	})
}

// authorize admits admins to every area and everyone else to the areas of
// their own panel. The placed widgets are shared by every user of a panel, so
// only admins may change them.
func (a Actor) authorize(areaCode string, change bool) error {
	if a.UserID == "" {
		return goerrors.New("sign in to change the overview", goerrors.CategoryAuth)
	}
	if a.Role == status.RoleAdmin {
		return nil
	}
	if change {
		return goerrors.New("only admins can change the shared overview layout", goerrors.CategoryAuthz).
			WithMetadata(map[string]any{"area_code": areaCode, "role": a.Role.String()})
	}
	if owner := dashboard.AreaRole(areaCode); owner != a.Role {
		return goerrors.New("this overview area belongs to another panel", goerrors.CategoryAuthz).
			WithMetadata(map[string]any{"area_code": areaCode, "role": a.Role.String()})
	}
	return nil
}

// AssignWidgetInput places a new widget from a registered definition.
type AssignWidgetInput struct {
	Actor         `json:"-"`
	DefinitionID  string         `json:"definition_id" validate:"required"`
	AreaCode      string         `json:"area_code" validate:"required"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty" validate:"omitempty,gte=0"`
}

// UpdateWidgetInput replaces the configuration of a placed widget.
type UpdateWidgetInput struct {
	Actor         `json:"-"`
	WidgetID      string         `json:"-"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RemoveWidgetInput deletes a placed widget.
type RemoveWidgetInput struct {
	Actor    `json:"-"`
	WidgetID string `json:"-"`
}

// ReorderWidgetsInput sets the order of every widget in an area.
type ReorderWidgetsInput struct {
	Actor     `json:"-"`
	AreaCode  string   `json:"area_code" validate:"required"`
	WidgetIDs []string `json:"widget_ids" validate:"required,min=1,dive,required"`
}

// RefreshWidgetInput asks subscribers to refetch an area or a single widget.
type RefreshWidgetInput struct {
	Actor    `json:"-"`
	AreaCode string `json:"area_code" validate:"required"`
	WidgetID string `json:"widget_id,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// SaveLayoutPreferencesInput stores the viewer's own ordering and hidden
// widgets. Only areas of the viewer's panel are accepted.
type SaveLayoutPreferencesInput struct {
	Viewer        dashboard.ViewerContext `json:"-"`
	AreaOrder     map[string][]string     `json:"area_order"`
	HiddenWidgets []string                `json:"hidden_widget_ids"`
}

// Widgets groups the widget commands the transports expose.
type Widgets struct {
	Assign      gocommand.Commander[AssignWidgetInput]
	Update      gocommand.Commander[UpdateWidgetInput]
	Remove      gocommand.Commander[RemoveWidgetInput]
	Reorder     gocommand.Commander[ReorderWidgetsInput]
	Refresh     gocommand.Commander[RefreshWidgetInput]
	Preferences gocommand.Commander[SaveLayoutPreferencesInput]
}

// NewWidgets builds every widget command over the dashboard service.
func NewWidgets(service WidgetService, telemetry Telemetry) *Widgets {
	return &Widgets{
		Assign:      NewAssignWidgetCommand(service, telemetry),
		Update:      NewUpdateWidgetCommand(service, telemetry),
		Remove:      NewRemoveWidgetCommand(service, telemetry),
		Reorder:     NewReorderWidgetsCommand(service, telemetry),
		Refresh:     NewRefreshWidgetCommand(service, telemetry),
		Preferences: NewSaveLayoutPreferencesCommand(service, telemetry),
	}
}

// widgetCommand checks the service is wired, runs step and records event with
// the payload step returns.
type widgetCommand[T any] struct {
	service   WidgetService
	telemetry Telemetry
	event     string
	step      func(context.Context, WidgetService, T) (map[string]any, error)
}

func newWidgetCommand[T any](service WidgetService, telemetry Telemetry, event string, step func(context.Context, WidgetService, T) (map[string]any, error)) gocommand.Commander[T] {
	return &widgetCommand[T]{
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
		event:     event,
		step:      step,
	}
}

func (c *widgetCommand[T]) Execute(ctx context.Context, msg T) error {
	if c.service == nil {
		return missingDependency(c.event + ": dashboard service not configured")
	}
	payload, err := c.step(ctx, c.service, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, c.event, payload)
	return nil
}

// NewAssignWidgetCommand places a widget in an area.
func NewAssignWidgetCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[AssignWidgetInput] {
	return newWidgetCommand(service, telemetry, "commands.widget.assign", assignWidget)
}

func assignWidget(ctx context.Context, service WidgetService, in AssignWidgetInput) (map[string]any, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := in.authorize(in.AreaCode, true); err != nil {
		return nil, err
	}
	req := dashboard.AddWidgetRequest{
		DefinitionID:  in.DefinitionID,
		AreaCode:      in.AreaCode,
		Configuration: in.Configuration,
		Position:      in.Position,
		ActorID:       in.UserID,
		UserID:        in.UserID,
	}
	if err := service.AddWidget(in.activity(ctx), req); err != nil {
		return nil, err
	}
	return map[string]any{"area_code": in.AreaCode, "definition_id": in.DefinitionID}, nil
}

// NewUpdateWidgetCommand reconfigures a placed widget.
func NewUpdateWidgetCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[UpdateWidgetInput] {
	return newWidgetCommand(service, telemetry, "commands.widget.update", updateWidget)
}

func updateWidget(ctx context.Context, service WidgetService, in UpdateWidgetInput) (map[string]any, error) {
	current, err := managedWidget(ctx, service, in.Actor, in.WidgetID)
	if err != nil {
		return nil, err
	}
	req := dashboard.UpdateWidgetRequest{
		Configuration: in.Configuration,
		Metadata:      in.Metadata,
		ActorID:       in.UserID,
		UserID:        in.UserID,
	}
	if err := service.UpdateWidget(in.activity(ctx), current.ID, req); err != nil {
		return nil, err
	}
	return map[string]any{"widget_id": current.ID, "area_code": current.AreaCode}, nil
}

// NewRemoveWidgetCommand deletes a placed widget.
func NewRemoveWidgetCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[RemoveWidgetInput] {
	return newWidgetCommand(service, telemetry, "commands.widget.remove", removeWidget)
}

func removeWidget(ctx context.Context, service WidgetService, in RemoveWidgetInput) (map[string]any, error) {
	current, err := managedWidget(ctx, service, in.Actor, in.WidgetID)
	if err != nil {
		return nil, err
	}
	if err := service.RemoveWidget(in.activity(ctx), current.ID); err != nil {
		return nil, err
	}
	return map[string]any{"widget_id": current.ID, "area_code": current.AreaCode}, nil
}

func managedWidget(ctx context.Context, service WidgetService, actor Actor, widgetID string) (dashboard.WidgetInstance, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return dashboard.WidgetInstance{}, goerrors.New("widget id is required", goerrors.CategoryBadInput)
	}
	current, err := service.Widget(ctx, widgetID)
	if err != nil {
		return dashboard.WidgetInstance{}, err
	}
	if err := actor.authorize(current.AreaCode, true); err != nil {
		return dashboard.WidgetInstance{}, err
	}
	return current, nil
}

// NewReorderWidgetsCommand reorders the shared widgets of an area.
func NewReorderWidgetsCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[ReorderWidgetsInput] {
	return newWidgetCommand(service, telemetry, "commands.widget.reorder", reorderWidgets)
}

func reorderWidgets(ctx context.Context, service WidgetService, in ReorderWidgetsInput) (map[string]any, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := in.authorize(in.AreaCode, true); err != nil {
		return nil, err
	}
	if err := service.ReorderWidgets(in.activity(ctx), in.AreaCode, in.WidgetIDs); err != nil {
		return nil, err
	}
	return map[string]any{"area_code": in.AreaCode, "count": len(in.WidgetIDs)}, nil
}

// NewRefreshWidgetCommand broadcasts a refresh for an area the actor can see.
func NewRefreshWidgetCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[RefreshWidgetInput] {
	return newWidgetCommand(service, telemetry, "commands.widget.refresh", refreshWidget)
}

func refreshWidget(ctx context.Context, service WidgetService, in RefreshWidgetInput) (map[string]any, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := in.authorize(in.AreaCode, false); err != nil {
		return nil, err
	}
	event := dashboard.WidgetEvent{
		AreaCode: in.AreaCode,
		Instance: dashboard.WidgetInstance{ID: in.WidgetID, AreaCode: in.AreaCode},
		Reason:   "refresh",
		Resource: in.Resource,
	}
	if err := service.NotifyWidgetUpdated(in.activity(ctx), event); err != nil {
		return nil, err
	}
	return map[string]any{"area_code": in.AreaCode, "widget_id": in.WidgetID}, nil
}

// NewSaveLayoutPreferencesCommand stores per-viewer layout overrides.
func NewSaveLayoutPreferencesCommand(service WidgetService, telemetry Telemetry) gocommand.Commander[SaveLayoutPreferencesInput] {
	return newWidgetCommand(service, telemetry, "commands.preferences.save", savePreferences)
}

func savePreferences(ctx context.Context, service WidgetService, in SaveLayoutPreferencesInput) (map[string]any, error) {
	actor := ActorFor(in.Viewer.UserID, in.Viewer.Role())
	if actor.UserID == "" {
		return nil, goerrors.New("sign in to save overview preferences", goerrors.CategoryAuth)
	}
	overrides := dashboard.LayoutOverrides{
		AreaOrder:     make(map[string][]string, len(in.AreaOrder)),
		HiddenWidgets: make(map[string]bool, len(in.HiddenWidgets)),
	}
	for area, ids := range in.AreaOrder {
		// Admins keep preferences for their own panel too.
		if dashboard.AreaRole(area) != actor.Role {
			return nil, goerrors.New("preferences can only order areas of your panel", goerrors.CategoryAuthz).
				WithMetadata(map[string]any{"area_code": area})
		}
		overrides.AreaOrder[area] = append([]string(nil), ids...)
	}
	for _, id := range in.HiddenWidgets {
		if id = strings.TrimSpace(id); id != "" {
			overrides.HiddenWidgets[id] = true
		}
	}
	if err := service.SavePreferences(ctx, in.Viewer, overrides); err != nil {
		return nil, err
	}
	return map[string]any{
		"user_id": actor.UserID,
		"areas":   len(overrides.AreaOrder),
		"hidden":  len(overrides.HiddenWidgets),
	}, nil
}

func missingDependency(msg string) error {
	return goerrors.New(msg, goerrors.CategoryInternal)
}

// Telemetry records command events.
type Telemetry = dashboard.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}
