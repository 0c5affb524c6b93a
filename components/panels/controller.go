package panels

import (
	"context"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/listview"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

const (
	listTemplate      = "list.html"
	settingsTemplate  = "settings.html"
	documentsTemplate = "documents.html"
)

// Query parameters carrying the outcome of a redirected action.
const (
	NoticeParam     = "notice"
	NoticeToneParam = "tone"
)

// ControllerOptions wires the panel controller.
type ControllerOptions struct {
	Client    marketplace.Client
	Catalog   *Catalog
	Renderer  dashboard.Renderer
	Settings  *settings.Accessor
	Documents *supplier.Documents
}

// Controller builds and renders the list, settings and documents pages.
type Controller struct {
	client    marketplace.Client
	catalog   *Catalog
	renderer  dashboard.Renderer
	settings  *settings.Accessor
	documents *supplier.Documents
}

// NewController validates the wiring.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Client == nil {
		return nil, goerrors.New("panels: marketplace client required", goerrors.CategoryInternal)
	}
	if opts.Catalog == nil {
		opts.Catalog = NewCatalog(CatalogOptions{})
	}
	return &Controller{
		client:    opts.Client,
		catalog:   opts.Catalog,
		renderer:  opts.Renderer,
		settings:  opts.Settings,
		documents: opts.Documents,
	}, nil
}

// Catalog exposes the screens served by the controller.
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// List loads one screen for the viewer. get reads the request query.
// A backend failure is not returned as an error; it is part of the page.
func (c *Controller) List(ctx context.Context, viewer Viewer, key string, get func(string) string) (ListPage, error) {
	view, err := c.catalog.Lookup(key, viewer.Role)
	if err != nil {
		return ListPage{}, err
	}
	query := listview.ParseQuery(get, view.PageSize())
	page := view.Load(ctx, c.client, query)
	page.Navigation = c.catalog.Navigation(viewer.Role, key)
	page.Flash = flashFrom(get)
	return page, nil
}

// RenderList writes the list page through the template renderer.
func (c *Controller) RenderList(ctx context.Context, viewer Viewer, key string, get func(string) string, out io.Writer) error {
	page, err := c.List(ctx, viewer, key, get)
	if err != nil {
		return err
	}
	return c.render(listTemplate, page, out)
}

// SettingsPage is the render model of the settings screen.
type SettingsPage struct {
	Title      string            `json:"title"`
	Role       string            `json:"role"`
	Settings   settings.Settings `json:"settings"`
	Navigation []NavLink         `json:"navigation,omitempty"`
	Flash      *Flash            `json:"flash,omitempty"`
}

// Settings loads the viewer's settings with defaults applied.
func (c *Controller) Settings(ctx context.Context, viewer Viewer, get func(string) string) (SettingsPage, error) {
	if c.settings == nil {
		return SettingsPage{}, goerrors.New("panels: settings not configured", goerrors.CategoryInternal)
	}
	values, err := c.settings.Load(ctx, viewer.UserID)
	if err != nil {
		return SettingsPage{}, err
	}
	return SettingsPage{
		Title:      "Settings",
		Role:       viewer.Role.String(),
		Settings:   values,
		Navigation: c.catalog.Navigation(viewer.Role, ""),
		Flash:      flashFrom(get),
	}, nil
}

// RenderSettings writes the settings page.
func (c *Controller) RenderSettings(ctx context.Context, viewer Viewer, get func(string) string, out io.Writer) error {
	page, err := c.Settings(ctx, viewer, get)
	if err != nil {
		return err
	}
	return c.render(settingsTemplate, page, out)
}

// DocumentsPage is the render model of the seller profile documents screen.
type DocumentsPage struct {
	Title      string              `json:"title"`
	Role       string              `json:"role"`
	Documents  []supplier.Document `json:"documents"`
	Types      []Option            `json:"types"`
	Navigation []NavLink           `json:"navigation,omitempty"`
	Flash      *Flash              `json:"flash,omitempty"`
}

// Documents lists the seller's profile documents.
func (c *Controller) Documents(ctx context.Context, viewer Viewer, get func(string) string) (DocumentsPage, error) {
	if viewer.Role != status.RoleSeller {
		return DocumentsPage{}, goerrors.New("panels: documents are a seller screen", goerrors.CategoryAuthz)
	}
	if c.documents == nil {
		return DocumentsPage{}, goerrors.New("panels: documents not configured", goerrors.CategoryInternal)
	}
	docs, err := c.documents.List(ctx, viewer.UserID)
	if err != nil {
		return DocumentsPage{}, err
	}
	types := make([]Option, 0, len(supplier.DocumentTypes))
	for _, t := range supplier.DocumentTypes {
		types = append(types, Option{Value: t, Label: humanLabel(t)})
	}
	return DocumentsPage{
		Title:      "Business Documents",
		Role:       viewer.Role.String(),
		Documents:  docs,
		Types:      types,
		Navigation: c.catalog.Navigation(viewer.Role, ""),
		Flash:      flashFrom(get),
	}, nil
}

// RenderDocuments writes the documents page.
func (c *Controller) RenderDocuments(ctx context.Context, viewer Viewer, get func(string) string, out io.Writer) error {
	page, err := c.Documents(ctx, viewer, get)
	if err != nil {
		return err
	}
	return c.render(documentsTemplate, page, out)
}

func (c *Controller) render(name string, page any, out io.Writer) error {
	if c.renderer == nil {
		return goerrors.New("panels: renderer not configured", goerrors.CategoryInternal)
	}
	if _, err := c.renderer.Render(name, map[string]any{"page": page}, out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "panels: render "+name)
	}
	return nil
}

func flashFrom(get func(string) string) *Flash {
	if get == nil {
		return nil
	}
	msg := strings.TrimSpace(get(NoticeParam))
	if msg == "" {
		return nil
	}
	tone := status.Tone(strings.TrimSpace(get(NoticeToneParam)))
	switch tone {
	case status.ToneSuccess, status.ToneDanger, status.ToneWarning, status.ToneInfo:
	default:
		tone = status.ToneInfo
	}
	return &Flash{Tone: tone, Message: msg}
}

// StatusCode maps an error category to the HTTP status transports reply with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case goerrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case goerrors.IsNotFound(err):
		return http.StatusNotFound
	case goerrors.IsAuth(err):
		return http.StatusUnauthorized
	case goerrors.IsCategory(err, goerrors.CategoryAuthz):
		return http.StatusForbidden
	case goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return http.StatusBadRequest
	case goerrors.IsCategory(err, goerrors.CategoryOperation), goerrors.IsCategory(err, goerrors.CategoryConflict):
		return http.StatusConflict
	case marketplace.IsFetchFailed(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
