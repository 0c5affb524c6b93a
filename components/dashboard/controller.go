package dashboard

import (
	"context"
	"io"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/status"
)

const defaultOverviewTemplate = "overview.html"

// LayoutResolver is the slice of Service the controller depends on.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the overview controller.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
	Registry ProviderRegistry
}

// Controller renders the overview page of each panel.
type Controller struct {
	service  LayoutResolver
	renderer Renderer
	template string
	registry ProviderRegistry
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultOverviewTemplate
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		template: opts.Template,
		registry: opts.Registry,
	}
}

// OverviewPage is the view model handed to the overview template.
type OverviewPage struct {
	Title  string        `json:"title"`
	Role   string        `json:"role"`
	Viewer ViewerContext `json:"viewer"`
	Areas  []AreaView    `json:"areas"`
}

// AreaView is one rendered overview area.
type AreaView struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Widgets []WidgetView `json:"widgets"`
}

// WidgetView is one widget card.
type WidgetView struct {
	ID           string     `json:"id"`
	DefinitionID string     `json:"definition_id"`
	Name         string     `json:"name"`
	Template     string     `json:"template"`
	Data         WidgetData `json:"data,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Render resolves the layout for a viewer and returns it to the caller.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.service == nil {
		return Layout{}, nil
	}
	return c.service.ConfigureLayout(ctx, viewer)
}

// LayoutPayload builds the overview view model for JSON transports.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (OverviewPage, error) {
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return OverviewPage{}, err
	}
	role := viewer.Role()
	page := OverviewPage{
		Title:  overviewTitle(role),
		Role:   role.String(),
		Viewer: viewer,
	}
	for _, area := range DefaultAreaDefinitions() {
		widgets, ok := layout.Areas[area.Code]
		if !ok {
			continue
		}
		view := AreaView{Code: area.Code, Name: area.Name}
		for _, inst := range widgets {
			view.Widgets = append(view.Widgets, c.widgetView(inst))
		}
		page.Areas = append(page.Areas, view)
	}
	return page, nil
}

// RenderTemplate writes the overview page for the viewer.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.renderer == nil {
		return goerrors.New("dashboard: renderer not configured", goerrors.CategoryInternal)
	}
	page, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, map[string]any{"page": page}, out)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "dashboard: render overview")
	}
	return nil
}

func (c *Controller) widgetView(inst WidgetInstance) WidgetView {
	view := WidgetView{
		ID:           inst.ID,
		DefinitionID: inst.DefinitionID,
		Name:         inst.DefinitionID,
		Template:     "widgets/stats.html",
	}
	registry := c.registry
	if registry == nil {
		registry = defaultRegistry
	}
	if def, ok := registry.Definition(inst.DefinitionID); ok {
		view.Name = def.Name
		view.Template = widgetTemplate(def.Category)
	}
	if data, ok := inst.Metadata["data"].(WidgetData); ok {
		view.Data = data
	}
	if msg, ok := inst.Metadata["error"].(string); ok {
		view.Error = msg
	}
	return view
}

var defaultRegistry = NewRegistry()

func widgetTemplate(category string) string {
	switch category {
	case "charts":
		return "widgets/chart.html"
	case "queues":
		return "widgets/feed.html"
	case "activity":
		return "widgets/activity.html"
	default:
		return "widgets/stats.html"
	}
}

func overviewTitle(role status.Role) string {
	switch role {
	case status.RoleAdmin:
		return "Admin Overview"
	case status.RoleSeller:
		return "Seller Overview"
	case status.RoleBuyer:
		return "Buyer Overview"
	case status.RoleUnknown:
		return "Overview"
	}
	return "Overview"
}
