package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	dashcmd "github.com/goliatone/go-market-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/panels/commands"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/internal/lib/sl"
)

type handlers struct {
	log       *slog.Logger
	panels    *panels.Controller
	overview  *dashboard.Controller
	actions   *commands.Bus
	widgets   *dashcmd.Widgets
	broadcast *dashboard.BroadcastHook
}

// DocumentRequest is the body of a document upload.
type DocumentRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	SizeBytes int64  `json:"size"`
}

// TokenRequest is the body of a token update. A blank token clears it.
type TokenRequest struct {
	Token string `json:"token"`
}

// MeResponse describes the authenticated viewer and their menu.
type MeResponse struct {
	UserID     string           `json:"userId"`
	Role       status.Role      `json:"role"`
	Navigation []panels.NavLink `json:"navigation"`
}

func (h *handlers) logger(r *http.Request, module string) *slog.Logger {
	return h.log.With(
		sl.Module(module),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	viewer, _ := panels.ViewerFromContext(r.Context())
	render.JSON(w, r, MeResponse{
		UserID:     viewer.UserID,
		Role:       viewer.Role,
		Navigation: h.panels.Catalog().Navigation(viewer.Role, ""),
	})
}

func (h *handlers) overviewLayout(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.overview")
	viewer, _ := panels.ViewerFromContext(r.Context())
	page, err := h.overview.LayoutPayload(r.Context(), dashboardViewer(viewer))
	if err != nil {
		logger.Error("overview layout", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.panels")
	viewer, _ := panels.ViewerFromContext(r.Context())
	key := screenKey(viewer, r)
	page, err := h.panels.List(r.Context(), viewer, key, r.URL.Query().Get)
	if err != nil {
		logger.Warn("list panel", slog.String("screen", key), sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *handlers) dispatch(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.actions")
	viewer, _ := panels.ViewerFromContext(r.Context())
	key := screenKey(viewer, r)
	values, err := actionValues(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	action := chi.URLParam(r, "action")
	logger = logger.With(
		slog.String("screen", key),
		slog.String("action", action),
		slog.String("record", chi.URLParam(r, "id")),
	)
	result, err := h.actions.Dispatch(r.Context(), panels.ActionRequest{
		Screen:   key,
		Action:   action,
		RecordID: chi.URLParam(r, "id"),
		Values:   values,
		Viewer:   viewer,
	})
	if err != nil {
		logger.Warn("panel action", sl.Err(err))
		respondError(w, r, err)
		return
	}
	logger.Debug("panel action")
	render.JSON(w, r, result)
}

func (h *handlers) settings(w http.ResponseWriter, r *http.Request) {
	viewer, _ := panels.ViewerFromContext(r.Context())
	page, err := h.panels.Settings(r.Context(), viewer, r.URL.Query().Get)
	if err != nil {
		h.logger(r, "http.handlers.settings").Error("load settings", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *handlers) saveSettings(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.settings")
	viewer, _ := panels.ViewerFromContext(r.Context())

	next := settings.Defaults()
	if err := decodeBody(r, &next); err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := h.actions.SaveSettings.Save(r.Context(), commands.SaveSettings{Viewer: viewer, Settings: next})
	if err != nil {
		logger.Warn("save settings", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, panels.ActionResult{Message: "Settings saved", Record: saved})
}

func (h *handlers) documents(w http.ResponseWriter, r *http.Request) {
	viewer, _ := panels.ViewerFromContext(r.Context())
	page, err := h.panels.Documents(r.Context(), viewer, r.URL.Query().Get)
	if err != nil {
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, page)
}

func (h *handlers) addDocument(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.documents")
	viewer, err := sellerViewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req DocumentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	doc, err := h.actions.AddDocument.Add(r.Context(), commands.AddDocument{Viewer: viewer, Document: supplier.NewDocument{
		Name:      req.Name,
		Type:      req.Type,
		SizeBytes: req.SizeBytes,
	}})
	if err != nil {
		logger.Warn("add document", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, panels.ActionResult{Message: "Document " + doc.Name + " added", Record: doc})
}

func (h *handlers) removeDocument(w http.ResponseWriter, r *http.Request) {
	viewer, err := sellerViewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	err = h.actions.RemoveDocument.Execute(r.Context(), commands.RemoveDocument{Viewer: viewer, DocumentID: chi.URLParam(r, "id")})
	if err != nil {
		h.logger(r, "http.handlers.documents").Warn("remove document", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, panels.ActionResult{Message: "Document removed"})
}

func (h *handlers) saveToken(w http.ResponseWriter, r *http.Request) {
	logger := h.logger(r, "http.handlers.token")
	viewer, err := sellerViewer(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req TokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	logger = logger.With(sl.Secret("token", req.Token))
	if err := h.actions.SaveToken.Execute(r.Context(), commands.SaveToken{Viewer: viewer, Token: req.Token}); err != nil {
		logger.Warn("save token", sl.Err(err))
		respondError(w, r, err)
		return
	}
	message := "Access token saved"
	if strings.TrimSpace(req.Token) == "" {
		message = "Access token cleared"
	}
	render.JSON(w, r, panels.ActionResult{Message: message})
}

func widgetActor(r *http.Request) dashcmd.Actor {
	viewer, _ := panels.ViewerFromContext(r.Context())
	return dashcmd.ActorFor(viewer.UserID, viewer.Role)
}

func (h *handlers) assignWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashcmd.AssignWidgetInput
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	payload.Actor = widgetActor(r)
	if err := h.widgets.Assign.Execute(r.Context(), payload); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("assign widget", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"status": "created"})
}

func (h *handlers) updateWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashcmd.UpdateWidgetInput
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	payload.Actor = widgetActor(r)
	payload.WidgetID = chi.URLParam(r, "id")
	if err := h.widgets.Update.Execute(r.Context(), payload); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("update widget", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "updated"})
}

func (h *handlers) removeWidget(w http.ResponseWriter, r *http.Request) {
	input := dashcmd.RemoveWidgetInput{Actor: widgetActor(r), WidgetID: chi.URLParam(r, "id")}
	if err := h.widgets.Remove.Execute(r.Context(), input); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("remove widget", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "removed"})
}

func (h *handlers) reorderWidgets(w http.ResponseWriter, r *http.Request) {
	var payload dashcmd.ReorderWidgetsInput
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	payload.Actor = widgetActor(r)
	if err := h.widgets.Reorder.Execute(r.Context(), payload); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("reorder widgets", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "reordered"})
}

func (h *handlers) refreshWidget(w http.ResponseWriter, r *http.Request) {
	var payload dashcmd.RefreshWidgetInput
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	payload.Actor = widgetActor(r)
	if err := h.widgets.Refresh.Execute(r.Context(), payload); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("refresh widget", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]string{"status": "queued"})
}

func (h *handlers) savePreferences(w http.ResponseWriter, r *http.Request) {
	viewer, _ := panels.ViewerFromContext(r.Context())
	var payload dashcmd.SaveLayoutPreferencesInput
	if err := decodeBody(r, &payload); err != nil {
		respondError(w, r, err)
		return
	}
	payload.Viewer = dashboardViewer(viewer)
	payload.Viewer.Locale = requestLocale(r)
	if err := h.widgets.Preferences.Execute(r.Context(), payload); err != nil {
		h.logger(r, "http.handlers.widgets").Warn("save preferences", sl.Err(err))
		respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "saved"})
}

// screenKey scopes the {screen} segment to the viewer's own panel.
func screenKey(viewer panels.Viewer, r *http.Request) string {
	return viewer.Role.String() + "." + strings.ToLower(chi.URLParam(r, "screen"))
}

func sellerViewer(r *http.Request) (panels.Viewer, error) {
	viewer, _ := panels.ViewerFromContext(r.Context())
	if viewer.Role != status.RoleSeller {
		return viewer, goerrors.New("documents are a seller screen", goerrors.CategoryAuthz)
	}
	return viewer, nil
}

func dashboardViewer(viewer panels.Viewer) dashboard.ViewerContext {
	return dashboard.ViewerContext{
		UserID: viewer.UserID,
		Roles:  []string{viewer.Role.String()},
	}
}

func requestLocale(r *http.Request) string {
	if locale := strings.TrimSpace(r.URL.Query().Get("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	header := r.Header.Get("Accept-Language")
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.ToLower(strings.TrimSpace(first))
}

func decodeBody(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body")
	}
	return nil
}

// actionValues reads a flat JSON object or an urlencoded form. An empty
// body yields no values.
func actionValues(r *http.Request) (map[string]string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed form body")
		}
		return panels.FormValues(r.PostForm), nil
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && err != io.EOF {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed JSON body")
	}
	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			values[key] = strings.TrimSpace(v)
		case float64:
			values[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			if v {
				values[key] = "true"
			}
		}
	}
	return values, nil
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, panels.StatusCode(err))
	render.JSON(w, r, panels.ErrorPayload(err))
}
