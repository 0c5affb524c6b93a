package dashboard

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so hosts can swap implementations.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Areas           []string
	Clock           func() time.Time
}

// Service orchestrates overview widgets for the admin, seller and buyer panels.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.Authorizer == nil {
		opts.Authorizer = RoleAuthorizer{Registry: opts.Providers}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// Registry exposes the provider registry backing the service.
func (s *Service) Registry() ProviderRegistry {
	return s.opts.Providers
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string         `json:"definition_id"`
	AreaCode      string         `json:"area_code"`
	Configuration map[string]any `json:"configuration,omitempty"`
	Position      *int           `json:"position,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	StartAt       *time.Time     `json:"start_at,omitempty"`
	EndAt         *time.Time     `json:"end_at,omitempty"`
	ActorID       string         `json:"actor_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	TenantID      string         `json:"tenant_id,omitempty"`
}

// UpdateWidgetRequest replaces a widget's configuration and merges metadata.
type UpdateWidgetRequest struct {
	Configuration map[string]any `json:"configuration,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ActorID       string         `json:"actor_id,omitempty"`
	UserID        string         `json:"user_id,omitempty"`
	TenantID      string         `json:"tenant_id,omitempty"`
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	if def, ok := s.opts.Providers.Definition(req.DefinitionID); ok {
		if !def.AllowsRole(AreaRole(req.AreaCode)) {
			return errDefinitionNotAllowed(req.DefinitionID, req.AreaCode)
		}
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	instance.AreaCode = req.AreaCode
	return s.publish(ctx, "add", WidgetEvent{AreaCode: req.AreaCode, Instance: instance, Reason: "add"},
		activityFromRequest(ctx, req.ActorID, req.UserID, req.TenantID))
}

// UpdateWidget validates and stores a new configuration for an instance.
func (s *Service) UpdateWidget(ctx context.Context, widgetID string, req UpdateWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidget
	}
	current, err := store.GetInstance(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := s.validateConfiguration(current.DefinitionID, req.Configuration); err != nil {
		return err
	}
	updated, err := store.UpdateInstance(ctx, UpdateWidgetInstanceInput{
		InstanceID:    widgetID,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return err
	}
	return s.publish(ctx, "update", WidgetEvent{AreaCode: updated.AreaCode, Instance: updated, Reason: "update"},
		activityFromRequest(ctx, req.ActorID, req.UserID, req.TenantID))
}

// Widget returns a stored instance without provider data.
func (s *Service) Widget(ctx context.Context, widgetID string) (WidgetInstance, error) {
	store, err := s.widgetStore()
	if err != nil {
		return WidgetInstance{}, err
	}
	if widgetID == "" {
		return WidgetInstance{}, errInvalidWidget
	}
	return store.GetInstance(ctx, widgetID)
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidget
	}
	existing, lookupErr := store.GetInstance(ctx, widgetID)
	if lookupErr != nil && !goerrors.IsNotFound(lookupErr) {
		return lookupErr
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if existing.ID == "" {
		existing.ID = widgetID
	}
	return s.publish(ctx, "remove", WidgetEvent{AreaCode: existing.AreaCode, Instance: existing, Reason: "delete"},
		ActivityFromContext(ctx))
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	return s.publish(ctx, "reorder", WidgetEvent{AreaCode: areaCode, Reason: "reorder"}, ActivityFromContext(ctx),
		"count", len(widgetIDs))
}

// publish notifies the refresh hook about a layout change, then records it as
// telemetry and activity under "dashboard.widget.<action>". Extra key/value
// pairs are appended to both payloads.
func (s *Service) publish(ctx context.Context, action string, event WidgetEvent, actor ActivityContext, extra ...any) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	name := "dashboard.widget." + action
	payload := map[string]any{"area_code": event.AreaCode}
	evt := activity.Event{
		Verb:       name,
		ObjectType: "widget_area",
		ObjectID:   event.AreaCode,
	}
	if inst := event.Instance; inst.ID != "" {
		payload["widget_id"] = inst.ID
		payload["definition_id"] = inst.DefinitionID
		evt.ObjectType = "widget_instance"
		evt.ObjectID = inst.ID
		evt.DefinitionCode = inst.DefinitionID
	}
	for i := 0; i+1 < len(extra); i += 2 {
		if key, ok := extra[i].(string); ok {
			payload[key] = extra[i+1]
		}
	}
	s.recordTelemetry(ctx, name, payload)
	evt.Metadata = maps.Clone(payload)
	s.emitActivity(ctx, actor, evt)
	return nil
}

// ConfigureLayout returns every overview area of the viewer's panel with the
// viewer's ordering and hidden widgets applied.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	areas := s.areaList(viewer)
	layout := Layout{Areas: make(map[string][]WidgetInstance, len(areas))}
	for _, area := range areas {
		widgets, err := s.resolve(ctx, store, viewer, area, overrides)
		if err != nil {
			return Layout{}, err
		}
		layout.Areas[area] = widgets
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
		"role":   viewer.Role().String(),
		"areas":  len(areas),
	})
	return layout, nil
}

// ResolveArea returns one area without preferences applied. Viewers may only
// read areas of their own panel unless they are admins.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	if areaCode == "" {
		return ResolvedArea{}, errInvalidArea
	}
	owner, role := AreaRole(areaCode), viewer.Role()
	if owner != status.RoleUnknown && owner != role && role != status.RoleAdmin {
		return ResolvedArea{}, errAreaForbidden(areaCode)
	}
	widgets, err := s.resolve(ctx, store, viewer, areaCode, LayoutOverrides{})
	if err != nil {
		return ResolvedArea{}, err
	}
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":    viewer.UserID,
		"area_code": areaCode,
	})
	return ResolvedArea{AreaCode: areaCode, Widgets: widgets}, nil
}

// resolve loads an area from the store and keeps the widgets the viewer may
// see right now, each carrying its provider output.
func (s *Service) resolve(ctx context.Context, store WidgetStore, viewer ViewerContext, area string, overrides LayoutOverrides) ([]WidgetInstance, error) {
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: area,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return nil, err
	}
	now := s.opts.Clock()
	widgets := overrides.Apply(area, resolved.Widgets)
	widgets = slices.DeleteFunc(widgets, func(w WidgetInstance) bool {
		return !w.Visibility.Active(now) || !s.opts.Authorizer.CanViewWidget(ctx, viewer, w)
	})
	for i := range widgets {
		widgets[i].AreaCode = area
		widgets[i] = s.withData(ctx, viewer, widgets[i])
	}
	return widgets, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) areaList(viewer ViewerContext) []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return AreasForRole(viewer.Role())
}

// AreaRole infers the owning panel from the area code prefix.
func AreaRole(areaCode string) status.Role {
	prefix, _, ok := strings.Cut(areaCode, ".")
	if !ok {
		return status.RoleUnknown
	}
	return status.ParseRole(prefix)
}

// withData stores the provider output under Metadata["data"], or
// widgetErrorMessage under Metadata["error"] when the provider fails.
func (s *Service) withData(ctx context.Context, viewer ViewerContext, inst WidgetInstance) WidgetInstance {
	provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
	if !ok || provider == nil {
		return inst
	}
	meta := maps.Clone(inst.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	data, err := provider.Fetch(ctx, WidgetContext{Instance: inst, Viewer: viewer})
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
			"definition_id": inst.DefinitionID,
			"widget_id":     inst.ID,
			"error":         err.Error(),
		})
		meta["error"] = widgetErrorMessage
	} else {
		meta["data"] = data
	}
	inst.Metadata = meta
	return inst
}

// widgetErrorMessage replaces a widget body when its provider fails.
const widgetErrorMessage = "Could not load this widget."

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
		"resource":  event.Resource,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	overrides.normalize()
	if err := s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.preferences.save", map[string]any{
		"viewer": viewer.UserID,
		"hidden": len(overrides.HiddenWidgets),
	})
	return nil
}

// Preferences returns the stored overrides for a viewer.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	return s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func (s *Service) emitActivity(ctx context.Context, actor ActivityContext, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	evt.ActorID = actor.ActorID
	evt.UserID = actor.UserID
	evt.TenantID = actor.TenantID
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "dashboard.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}

func activityFromRequest(ctx context.Context, actorID, userID, tenantID string) ActivityContext {
	meta := ActivityFromContext(ctx)
	if actorID != "" {
		meta.ActorID = actorID
	}
	if userID != "" {
		meta.UserID = userID
	}
	if tenantID != "" {
		meta.TenantID = tenantID
	}
	return meta
}

// RoleAuthorizer lets viewers see widgets whose definitions belong to their
// panel and that list one of their roles, when the instance is restricted.
type RoleAuthorizer struct {
	Registry ProviderRegistry
}

// CanViewWidget implements Authorizer.
func (a RoleAuthorizer) CanViewWidget(_ context.Context, viewer ViewerContext, instance WidgetInstance) bool {
	if a.Registry != nil {
		if def, ok := a.Registry.Definition(instance.DefinitionID); ok && !def.AllowsRole(viewer.Role()) {
			return false
		}
	}
	if len(instance.Visibility.Roles) == 0 {
		return true
	}
	for _, want := range instance.Visibility.Roles {
		for _, have := range viewer.Roles {
			if strings.EqualFold(want, have) {
				return true
			}
		}
	}
	return false
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
