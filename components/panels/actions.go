package panels

import (
	"context"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// Action names used in action links.
const (
	ActionAccept        = "accept"
	ActionReject        = "reject"
	ActionClassify      = "classify"
	ActionProcess       = "process"
	ActionApprove       = "approve"
	ActionCreate        = "create"
	ActionApply         = "apply"
	ActionRequestReturn = "request"
)

// ActionRequest is a submitted row or screen action.
type ActionRequest struct {
	Screen   string
	Action   string
	RecordID string
	Values   map[string]string
	Viewer   Viewer
}

// Value returns the trimmed form value for name.
func (r ActionRequest) Value(name string) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[name]
}

// ActionResult reports the outcome of an action.
type ActionResult struct {
	Message string `json:"message"`
	Record  any    `json:"record,omitempty"`
}

// Dispatcher executes screen actions.
type Dispatcher interface {
	Dispatch(ctx context.Context, req ActionRequest) (ActionResult, error)
}

// Viewer is the signed-in user of a panel.
type Viewer struct {
	UserID string
	Role   status.Role
}

type viewerKey struct{}

// ContextWithViewer stores the signed-in viewer on ctx so backend calls made
// on its behalf can pick its credentials.
func ContextWithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFromContext returns the viewer stored by ContextWithViewer.
func ViewerFromContext(ctx context.Context) (Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey{}).(Viewer)
	return viewer, ok
}

func (f formatter) rowAction(name, label, screenPath, id string, tone status.Tone, inputs ...Input) Action {
	return Action{
		Name:   name,
		Label:  label,
		Href:   screenPath + "/" + id + "/" + name,
		Tone:   tone,
		Inputs: inputs,
	}
}

func (f formatter) formAction(name, label, screenPath string, inputs ...Input) Action {
	return Action{
		Name:   name,
		Label:  label,
		Href:   screenPath + "/" + name,
		Tone:   status.ToneInfo,
		Inputs: inputs,
	}
}
