// Package gorouter mounts the marketplace panels (overview, list screens,
// actions, settings, documents) and the widget API on a go-router router.
package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	dashcmd "github.com/goliatone/go-market-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/commands"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
)

// RequestContext is the part of router.Context the handlers use.
type RequestContext interface {
	Context() context.Context
	Param(name string) string
	Query(name string) string
	Header(name string) string
	Body() []byte
	Local(key string) any
	SetHeader(key, value string)
	Send(body []byte) error
	JSON(code int, v any) error
}

// ViewerResolver identifies the signed-in user of a request.
type ViewerResolver func(RequestContext) panels.Viewer

// Config wires go-router with the panel controllers, commands and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Panels         *panels.Controller
	Overview       *dashboard.Controller
	Actions        *commands.Bus
	Widgets        *dashcmd.Widgets
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
}

type route struct {
	method  string
	path    string
	handler func(RequestContext) error
}

// Register mounts every panel route on cfg.Router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	table, err := cfg.table()
	if err != nil {
		return err
	}
	group := cfg.Router.Group(cfg.basePath())
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, "/dashboard/ws")
	}
	resolve := cfg.resolver()
	for _, r := range table {
		handler := wrap(r.handler, resolve)
		switch r.method {
		case http.MethodPost:
			group.Post(r.path, handler)
		case http.MethodDelete:
			group.Delete(r.path, handler)
		default:
			group.Get(r.path, handler)
		}
	}
	return nil
}

// wrap adapts h to go-router. The resolved viewer rides on the request
// context so backend calls can use its credentials.
func wrap(h func(RequestContext) error, resolve ViewerResolver) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		rc := routerContext{ctx: ctx}
		if viewer := resolve(rc); viewer.UserID != "" {
			rc.viewer = &viewer
		}
		return h(rc)
	})
}

func (cfg Config[T]) resolver() ViewerResolver {
	if cfg.ViewerResolver == nil {
		return defaultViewerResolver
	}
	return cfg.ViewerResolver
}

func (cfg Config[T]) basePath() string {
	if cfg.BasePath == "" {
		return "/market"
	}
	return strings.TrimRight(cfg.BasePath, "/")
}

// table lists the routes in match order: fixed segments before parameters.
func (cfg Config[T]) table() ([]route, error) {
	if cfg.Panels == nil {
		return nil, errors.New("gorouter: panels controller is required")
	}
	if cfg.Actions == nil {
		return nil, errors.New("gorouter: action bus is required")
	}
	resolve := cfg.resolver()
	h := &handlers{
		panels:   cfg.Panels,
		overview: cfg.Overview,
		actions:  cfg.Actions,
		resolve:  resolve,
		base:     cfg.basePath(),
	}

	var routes []route
	if cfg.Widgets != nil {
		w := &widgetHandlers{widgets: cfg.Widgets, handlers: h}
		routes = append(routes,
			route{http.MethodPost, "/dashboard/widgets/reorder", w.reorder},
			route{http.MethodPost, "/dashboard/widgets/refresh", w.refresh},
			route{http.MethodPost, "/dashboard/widgets", w.assign},
			route{http.MethodPut, "/dashboard/widgets/:id", w.update},
			route{http.MethodDelete, "/dashboard/widgets/:id", w.remove},
			route{http.MethodPost, "/dashboard/preferences", w.preferences},
		)
	}
	routes = append(routes,
		route{http.MethodGet, "/api/:role/settings", h.settingsJSON},
		route{http.MethodGet, "/api/:role/:screen", h.listJSON},
	)
	if cfg.Overview != nil {
		routes = append(routes,
			route{http.MethodGet, "/:role/_layout", h.layoutJSON},
			route{http.MethodGet, "/:role", h.overviewHTML},
		)
	}
	routes = append(routes,
		route{http.MethodGet, "/:role/settings", h.settingsHTML},
		route{http.MethodPost, "/:role/settings", h.saveSettings},
		route{http.MethodGet, "/:role/documents", h.documentsHTML},
		route{http.MethodPost, "/:role/documents", h.addDocument},
		route{http.MethodPost, "/:role/documents/:id/remove", h.removeDocument},
		route{http.MethodPost, "/:role/token", h.saveToken},
		route{http.MethodGet, "/:role/:screen", h.listHTML},
		route{http.MethodPost, "/:role/:screen/:action", h.formAction},
		route{http.MethodPost, "/:role/:screen/:id/:action", h.rowAction},
	)
	return routes, nil
}

type handlers struct {
	panels   *panels.Controller
	overview *dashboard.Controller
	actions  *commands.Bus
	resolve  ViewerResolver
	base     string
}

// viewer resolves the request viewer and checks it owns the :role segment.
func (h *handlers) viewer(c RequestContext) (panels.Viewer, error) {
	viewer := h.resolve(c)
	if viewer.Role == status.RoleUnknown || viewer.UserID == "" {
		return viewer, goerrors.New("sign in required", goerrors.CategoryAuth)
	}
	if raw := c.Param("role"); raw != "" && status.ParseRole(raw) != viewer.Role {
		return viewer, goerrors.New("panel not available to viewer", goerrors.CategoryAuthz).
			WithMetadata(map[string]any{"panel": raw})
	}
	return viewer, nil
}

func (h *handlers) overviewHTML(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := h.overview.RenderTemplate(c.Context(), dashboardViewer(c, viewer), &buf); err != nil {
		return respondError(c, err)
	}
	return sendHTML(c, buf.Bytes())
}

func (h *handlers) layoutJSON(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	payload, err := h.overview.LayoutPayload(c.Context(), dashboardViewer(c, viewer))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, payload)
}

func (h *handlers) listHTML(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := h.panels.RenderList(c.Context(), viewer, screenKey(c), c.Query, &buf); err != nil {
		return respondError(c, err)
	}
	return sendHTML(c, buf.Bytes())
}

func (h *handlers) listJSON(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.panels.List(c.Context(), viewer, screenKey(c), c.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handlers) settingsHTML(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := h.panels.RenderSettings(c.Context(), viewer, c.Query, &buf); err != nil {
		return respondError(c, err)
	}
	return sendHTML(c, buf.Bytes())
}

func (h *handlers) settingsJSON(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.panels.Settings(c.Context(), viewer, c.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *handlers) saveSettings(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	back := h.panelPath(viewer, "settings")
	values, err := formValues(c)
	if err != nil {
		return h.finish(c, back, panels.ActionResult{}, err)
	}
	next, err := panels.SettingsFromForm(values)
	if err != nil {
		return h.finish(c, back, panels.ActionResult{}, err)
	}
	saved, err := h.actions.SaveSettings.Save(c.Context(), commands.SaveSettings{Viewer: viewer, Settings: next})
	return h.finish(c, back, panels.ActionResult{Message: "Settings saved", Record: saved}, err)
}

func (h *handlers) documentsHTML(c RequestContext) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := h.panels.RenderDocuments(c.Context(), viewer, c.Query, &buf); err != nil {
		return respondError(c, err)
	}
	return sendHTML(c, buf.Bytes())
}

func (h *handlers) addDocument(c RequestContext) error {
	viewer, err := h.sellerViewer(c)
	if err != nil {
		return respondError(c, err)
	}
	back := h.panelPath(viewer, "documents")
	values, err := formValues(c)
	if err != nil {
		return h.finish(c, back, panels.ActionResult{}, err)
	}
	doc, err := h.actions.AddDocument.Add(c.Context(), commands.AddDocument{Viewer: viewer, Document: supplier.NewDocument{
		Name:      values.Get("name"),
		Type:      values.Get("type"),
		SizeBytes: commands.ParseDocumentSize(values.Get("size")),
	}})
	return h.finish(c, back, panels.ActionResult{Message: "Document " + doc.Name + " added", Record: doc}, err)
}

func (h *handlers) removeDocument(c RequestContext) error {
	viewer, err := h.sellerViewer(c)
	if err != nil {
		return respondError(c, err)
	}
	err = h.actions.RemoveDocument.Execute(c.Context(), commands.RemoveDocument{Viewer: viewer, DocumentID: c.Param("id")})
	return h.finish(c, h.panelPath(viewer, "documents"), panels.ActionResult{Message: "Document removed"}, err)
}

func (h *handlers) saveToken(c RequestContext) error {
	viewer, err := h.sellerViewer(c)
	if err != nil {
		return respondError(c, err)
	}
	back := h.panelPath(viewer, "documents")
	values, err := formValues(c)
	if err != nil {
		return h.finish(c, back, panels.ActionResult{}, err)
	}
	token := strings.TrimSpace(values.Get("token"))
	message := "Access token saved"
	if token == "" {
		message = "Access token cleared"
	}
	err = h.actions.SaveToken.Execute(c.Context(), commands.SaveToken{Viewer: viewer, Token: token})
	return h.finish(c, back, panels.ActionResult{Message: message}, err)
}

func (h *handlers) sellerViewer(c RequestContext) (panels.Viewer, error) {
	viewer, err := h.viewer(c)
	if err != nil {
		return viewer, err
	}
	if viewer.Role != status.RoleSeller {
		return viewer, goerrors.New("documents are a seller screen", goerrors.CategoryAuthz)
	}
	return viewer, nil
}

func (h *handlers) formAction(c RequestContext) error {
	return h.dispatch(c, "")
}

func (h *handlers) rowAction(c RequestContext) error {
	return h.dispatch(c, c.Param("id"))
}

func (h *handlers) dispatch(c RequestContext, recordID string) error {
	viewer, err := h.viewer(c)
	if err != nil {
		return respondError(c, err)
	}
	key := screenKey(c)
	back := h.panelPath(viewer, c.Param("screen"))
	if view, ok := h.panels.Catalog().View(key); ok {
		back = view.Path()
	}
	values, err := formValues(c)
	if err != nil {
		return h.finish(c, back, panels.ActionResult{}, err)
	}
	result, err := h.actions.Dispatch(c.Context(), panels.ActionRequest{
		Screen:   key,
		Action:   c.Param("action"),
		RecordID: recordID,
		Values:   panels.FormValues(values),
		Viewer:   viewer,
	})
	return h.finish(c, back, result, err)
}

// finish answers a mutation: JSON clients get the result or the error body,
// browsers are redirected back with the outcome as a notice.
func (h *handlers) finish(c RequestContext, back string, result panels.ActionResult, err error) error {
	if wantsJSON(c) {
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
	if err != nil {
		return redirect(c, panels.NoticeURL(back, panels.ErrorMessage(err), status.ToneDanger))
	}
	return redirect(c, panels.NoticeURL(back, result.Message, status.ToneSuccess))
}

func (h *handlers) panelPath(viewer panels.Viewer, page string) string {
	return h.base + "/" + viewer.Role.String() + "/" + page
}

type widgetHandlers struct {
	widgets *dashcmd.Widgets
	*handlers
}

// actor resolves the signed-in viewer as the actor of a widget command.
func (w *widgetHandlers) actor(c RequestContext) (dashcmd.Actor, panels.Viewer, error) {
	viewer, err := w.viewer(c)
	if err != nil {
		return dashcmd.Actor{}, viewer, err
	}
	return dashcmd.ActorFor(viewer.UserID, viewer.Role), viewer, nil
}

func (w *widgetHandlers) assign(c RequestContext) error {
	actor, _, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var payload dashcmd.AssignWidgetInput
	if err := decodeJSON(c, &payload); err != nil {
		return respondError(c, err)
	}
	payload.Actor = actor
	if err := w.widgets.Assign.Execute(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "created"})
}

func (w *widgetHandlers) update(c RequestContext) error {
	actor, _, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var payload dashcmd.UpdateWidgetInput
	if err := decodeJSON(c, &payload); err != nil {
		return respondError(c, err)
	}
	payload.Actor = actor
	payload.WidgetID = c.Param("id")
	if err := w.widgets.Update.Execute(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (w *widgetHandlers) remove(c RequestContext) error {
	actor, _, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	input := dashcmd.RemoveWidgetInput{Actor: actor, WidgetID: c.Param("id")}
	if err := w.widgets.Remove.Execute(c.Context(), input); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

func (w *widgetHandlers) reorder(c RequestContext) error {
	actor, _, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var payload dashcmd.ReorderWidgetsInput
	if err := decodeJSON(c, &payload); err != nil {
		return respondError(c, err)
	}
	payload.Actor = actor
	if err := w.widgets.Reorder.Execute(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reordered"})
}

func (w *widgetHandlers) refresh(c RequestContext) error {
	actor, _, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var payload dashcmd.RefreshWidgetInput
	if err := decodeJSON(c, &payload); err != nil {
		return respondError(c, err)
	}
	payload.Actor = actor
	if err := w.widgets.Refresh.Execute(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func (w *widgetHandlers) preferences(c RequestContext) error {
	_, viewer, err := w.actor(c)
	if err != nil {
		return respondError(c, err)
	}
	var payload dashcmd.SaveLayoutPreferencesInput
	if err := decodeJSON(c, &payload); err != nil {
		return respondError(c, err)
	}
	payload.Viewer = dashboardViewer(c, viewer)
	if err := w.widgets.Preferences.Execute(c.Context(), payload); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "saved"})
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		// Without a viewer on the connection only unscoped and shared events pass.
		viewer, _ := panels.ViewerFromContext(ws.Context())
		events, cancel := hook.SubscribeFiltered(dashboard.ForViewer(dashboard.ViewerContext{
			UserID: viewer.UserID,
			Roles:  []string{viewer.Role.String()},
		}))
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func screenKey(c RequestContext) string {
	return strings.ToLower(c.Param("role")) + "." + strings.ToLower(c.Param("screen"))
}

func dashboardViewer(c RequestContext, viewer panels.Viewer) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID: viewer.UserID,
		Roles:  []string{viewer.Role.String()},
		Locale: inferLocale(c),
	}
}

func defaultViewerResolver(c RequestContext) panels.Viewer {
	var viewer panels.Viewer
	if v, ok := c.Local("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := c.Local("role").(string); ok {
		viewer.Role = status.ParseRole(v)
	}
	return viewer
}

func inferLocale(c RequestContext) string {
	if locale, ok := c.Local("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := c.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return ""
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func wantsJSON(c RequestContext) bool {
	return strings.Contains(c.Header("Accept"), "application/json") ||
		strings.HasPrefix(c.Header("Content-Type"), "application/json")
}

// formValues reads an urlencoded form or a flat JSON object.
func formValues(c RequestContext) (url.Values, error) {
	body := c.Body()
	if !strings.HasPrefix(c.Header("Content-Type"), "application/json") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed form body")
		}
		return values, nil
	}
	values := url.Values{}
	if len(bytes.TrimSpace(body)) == 0 {
		return values, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body")
	}
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			if v {
				values.Set(key, "true")
			}
		}
	}
	return values, nil
}

func decodeJSON(c RequestContext, dst any) error {
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body")
	}
	return nil
}

func sendHTML(c RequestContext, body []byte) error {
	c.SetHeader("Content-Type", "text/html; charset=utf-8")
	return c.Send(body)
}

func redirect(c RequestContext, location string) error {
	c.SetHeader("Location", location)
	return c.JSON(http.StatusSeeOther, map[string]string{"location": location})
}

func respondError(c RequestContext, err error) error {
	return c.JSON(panels.StatusCode(err), panels.ErrorPayload(err))
}

// routerContext adapts router.Context to RequestContext.
type routerContext struct {
	ctx    router.Context
	viewer *panels.Viewer
}

func (r routerContext) Context() context.Context {
	if r.viewer == nil {
		return r.ctx.Context()
	}
	return panels.ContextWithViewer(r.ctx.Context(), *r.viewer)
}

func (r routerContext) Param(name string) string { return r.ctx.Param(name) }
func (r routerContext) Query(name string) string { return r.ctx.Query(name) }
func (r routerContext) Header(name string) string { return r.ctx.Header(name) }
func (r routerContext) Body() []byte { return r.ctx.Body() }
func (r routerContext) Local(key string) any { return r.ctx.Locals(key) }
func (r routerContext) SetHeader(key, value string) { r.ctx.SetHeader(key, value) }
func (r routerContext) Send(body []byte) error { return r.ctx.Send(body) }
func (r routerContext) JSON(code int, v any) error { return r.ctx.JSON(code, v) }
