package queries

import (
	"cmp"
	"context"
	"slices"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	dashboard "github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/status"
)

// OverviewService resolves widgets for a viewer.
type OverviewService interface {
	ConfigureLayout(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.Layout, error)
	ResolveArea(ctx context.Context, viewer dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error)
}

// OverviewInput asks for the overview of Viewer. AreaCode narrows it to one area.
type OverviewInput struct {
	Viewer   dashboard.ViewerContext
	AreaCode string
}

// OverviewArea is one resolved area with its display name.
type OverviewArea struct {
	Code    string                     `json:"code"`
	Name    string                     `json:"name"`
	Widgets []dashboard.WidgetInstance `json:"widgets"`
}

// Overview lists the areas of a panel in the order the panel declares them.
type Overview struct {
	Role  status.Role    `json:"role"`
	Areas []OverviewArea `json:"areas"`
}

// OverviewQuery reads a viewer's overview.
type OverviewQuery struct {
	service OverviewService
	areas   []dashboard.WidgetAreaDefinition
}

// NewOverviewQuery builds the query over the dashboard service.
func NewOverviewQuery(service OverviewService) *OverviewQuery {
	return &OverviewQuery{service: service, areas: dashboard.DefaultAreaDefinitions()}
}

var _ gocommand.Querier[OverviewInput, Overview] = (*OverviewQuery)(nil)

// Query resolves one area or the whole layout. Areas the panel does not
// declare sort last, by code.
func (q *OverviewQuery) Query(ctx context.Context, in OverviewInput) (Overview, error) {
	if strings.TrimSpace(in.Viewer.UserID) == "" {
		return Overview{}, goerrors.New("sign in to view the overview", goerrors.CategoryAuth)
	}
	out := Overview{Role: in.Viewer.Role()}
	if code := strings.TrimSpace(in.AreaCode); code != "" {
		area, err := q.service.ResolveArea(ctx, in.Viewer, code)
		if err != nil {
			return Overview{}, err
		}
		out.Areas = []OverviewArea{q.area(area.AreaCode, area.Widgets)}
		return out, nil
	}

	layout, err := q.service.ConfigureLayout(ctx, in.Viewer)
	if err != nil {
		return Overview{}, err
	}
	for code, widgets := range layout.Areas {
		out.Areas = append(out.Areas, q.area(code, widgets))
	}
	slices.SortFunc(out.Areas, func(a, b OverviewArea) int {
		if c := cmp.Compare(q.rank(a.Code), q.rank(b.Code)); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	return out, nil
}

func (q *OverviewQuery) area(code string, widgets []dashboard.WidgetInstance) OverviewArea {
	area := OverviewArea{Code: code, Name: code, Widgets: widgets}
	for _, def := range q.areas {
		if def.Code == code {
			area.Name = def.Name
			break
		}
	}
	return area
}

func (q *OverviewQuery) rank(code string) int {
	for i, def := range q.areas {
		if def.Code == code {
			return i
		}
	}
	return len(q.areas)
}

// DefinitionLister lists the widget definitions a panel may place.
type DefinitionLister interface {
	DefinitionsFor(role status.Role) []dashboard.WidgetDefinition
}

// AvailableWidgetsQuery lists the widgets an admin can add to a panel.
type AvailableWidgetsQuery struct {
	registry DefinitionLister
}

// NewAvailableWidgetsQuery builds the query over a registry.
func NewAvailableWidgetsQuery(registry DefinitionLister) *AvailableWidgetsQuery {
	return &AvailableWidgetsQuery{registry: registry}
}

var _ gocommand.Querier[status.Role, []dashboard.WidgetDefinition] = (*AvailableWidgetsQuery)(nil)

// Query implements gocommand.Querier.
func (q *AvailableWidgetsQuery) Query(_ context.Context, role status.Role) ([]dashboard.WidgetDefinition, error) {
	if role == status.RoleUnknown {
		return nil, goerrors.New("unknown panel", goerrors.CategoryBadInput)
	}
	return q.registry.DefinitionsFor(role), nil
}
