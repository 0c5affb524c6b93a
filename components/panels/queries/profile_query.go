package queries

import (
	"context"
	"net/url"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-market-dashboard/components/panels"
)

type profileService interface {
	Settings(ctx context.Context, viewer panels.Viewer, get func(string) string) (panels.SettingsPage, error)
	Documents(ctx context.Context, viewer panels.Viewer, get func(string) string) (panels.DocumentsPage, error)
}

// ProfileInput identifies the viewer of a settings or documents page.
type ProfileInput struct {
	Viewer panels.Viewer
	Params url.Values
}

// SettingsQuery loads the settings page.
type SettingsQuery struct {
	service profileService
}

func NewSettingsQuery(service profileService) *SettingsQuery {
	return &SettingsQuery{service: service}
}

var _ gocommand.Querier[ProfileInput, panels.SettingsPage] = (*SettingsQuery)(nil)

func (q *SettingsQuery) Query(ctx context.Context, input ProfileInput) (panels.SettingsPage, error) {
	return q.service.Settings(ctx, input.Viewer, input.Params.Get)
}

// DocumentsQuery loads the seller documents page.
type DocumentsQuery struct {
	service profileService
}

func NewDocumentsQuery(service profileService) *DocumentsQuery {
	return &DocumentsQuery{service: service}
}

var _ gocommand.Querier[ProfileInput, panels.DocumentsPage] = (*DocumentsQuery)(nil)

func (q *DocumentsQuery) Query(ctx context.Context, input ProfileInput) (panels.DocumentsPage, error) {
	return q.service.Documents(ctx, input.Viewer, input.Params.Get)
}
