package queries

import (
	"context"
	"net/url"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-market-dashboard/components/panels"
)

type listService interface {
	List(ctx context.Context, viewer panels.Viewer, key string, get func(string) string) (panels.ListPage, error)
}

// ListInput selects a screen page. Params carries the raw query string
// values (page, search, selected, notice, tone).
type ListInput struct {
	Viewer panels.Viewer
	Screen string
	Params url.Values
}

// ListQuery loads one page of a list screen.
type ListQuery struct {
	service listService
}

// NewListQuery builds the query.
func NewListQuery(service listService) *ListQuery {
	return &ListQuery{service: service}
}

var _ gocommand.Querier[ListInput, panels.ListPage] = (*ListQuery)(nil)

// Query resolves the page for the viewer.
func (q *ListQuery) Query(ctx context.Context, input ListInput) (panels.ListPage, error) {
	return q.service.List(ctx, input.Viewer, input.Screen, input.Params.Get)
}
