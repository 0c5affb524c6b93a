package dashboard

import (
	"context"
	"slices"
	"time"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// WidgetStore keeps the shared overview layout: which areas exist, which
// widget kinds are known and where each placed widget sits. EnsureArea and
// EnsureDefinition report whether they created anything, so seeding can run
// on every start.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	GetInstance(ctx context.Context, instanceID string) (WidgetInstance, error)
	UpdateInstance(ctx context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer decides per viewer whether a placed widget is shown.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore keeps the ordering and hidden widgets chosen by each user.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry maps widget codes to definitions and data providers.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook is told about every layout change and resource refresh.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition is the main or sidebar column of one panel overview.
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
	Role        status.Role
}

// WidgetDefinition is a kind of widget. Schema is a JSON Schema for its
// configuration and Roles lists the panels it may be placed on.
type WidgetDefinition struct {
	Code        string
	Name        string
	Description string
	Schema      map[string]any
	Category    string
	Roles       []status.Role
}

// AllowsRole reports whether the widget may be placed on a panel for role.
// Definitions without roles are shared by every panel.
func (d WidgetDefinition) AllowsRole(role status.Role) bool {
	return len(d.Roles) == 0 || slices.Contains(d.Roles, role)
}

// WidgetInstance is one placed widget. Providers put their output in
// Metadata["data"], or a message in Metadata["error"] when they fail.
type WidgetInstance struct {
	ID            string           `json:"id"`
	DefinitionID  string           `json:"definition_id"`
	AreaCode      string           `json:"area_code"`
	Configuration map[string]any   `json:"configuration,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	Visibility    WidgetVisibility `json:"-"`
}

// CreateWidgetInstanceInput creates an unplaced widget.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput replaces configuration and merges metadata.
type UpdateWidgetInstanceInput struct {
	InstanceID    string
	Configuration map[string]any
	Metadata      map[string]any
}

// WidgetVisibility limits a widget to some roles or to a time window.
type WidgetVisibility struct {
	Roles   []string
	StartAt *time.Time
	EndAt   *time.Time
}

// Active reports whether now falls inside the window. Open ends are unbounded.
func (v WidgetVisibility) Active(now time.Time) bool {
	if v.StartAt != nil && now.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && now.After(*v.EndAt) {
		return false
	}
	return true
}

// AssignWidgetInput places a widget. A nil Position appends it.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput lists widget ids in their new order. Ids missing from the
// list keep their relative order after the listed ones.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput asks for the widgets of one area.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

type ResolvedArea struct {
	AreaCode string           `json:"area_code"`
	Widgets  []WidgetInstance `json:"widgets"`
}

// LayoutOverrides is what one user changed about the shared layout. AreaOrder
// ranks widget ids per area; hidden ids are dropped everywhere.
type LayoutOverrides struct {
	AreaOrder     map[string][]string `json:"area_order"`
	HiddenWidgets map[string]bool     `json:"hidden_widgets"`
}

// ViewerContext captures the active user and panel needed to render an overview.
type ViewerContext struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	Locale string   `json:"locale"`
}

// Role returns the panel the viewer is looking at. The first recognised role wins.
func (v ViewerContext) Role() status.Role {
	for _, raw := range v.Roles {
		if role := status.ParseRole(raw); role != status.RoleUnknown {
			return role
		}
	}
	return status.RoleUnknown
}

// Layout holds the resolved widgets of each area the viewer can see.
type Layout struct {
	Areas map[string][]WidgetInstance `json:"areas"`
}

// WidgetEvent is published on layout changes and resource refreshes. Resource
// names a panel screen ("seller.orders") when data behind it changed.
type WidgetEvent struct {
	AreaCode string         `json:"area_code,omitempty"`
	Instance WidgetInstance `json:"instance"`
	Reason   string         `json:"reason"`
	Resource string         `json:"resource,omitempty"`
}
