package panels

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/listview"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// View is a list screen independent of its record type.
type View interface {
	Key() string
	Role() status.Role
	Title() string
	Path() string
	PageSize() int
	Load(ctx context.Context, client marketplace.Client, query listview.Query) ListPage
}

// Fetched is one page as returned by a resource fetch, plus optional header
// counters carried by the backend pagination block.
type Fetched[T any] struct {
	listview.Result[T]
	Stats []Stat
}

// Resource describes a list screen over records of type T.
type Resource[T any] struct {
	key      string
	role     status.Role
	title    string
	path     string
	pageSize int
	empty    string

	Columns []Column
	ID      func(T) string
	Search  func(T) []string
	Cells   func(T) []Cell
	Detail  func(T) []FieldGroup
	Label   func(T) string
	Actions func(T) []Action
	Forms   []Action
	Fetch   func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[T], error)
	Overlay func([]T) []T
	Pending func(T) bool
}

// NewResource starts a resource definition.
func NewResource[T any](key string, role status.Role, title, path string, pageSize int) *Resource[T] {
	return &Resource[T]{
		key:      key,
		role:     role,
		title:    title,
		path:     path,
		pageSize: pageSize,
		empty:    "No records found.",
	}
}

func (r *Resource[T]) Key() string       { return r.key }
func (r *Resource[T]) Role() status.Role { return r.role }
func (r *Resource[T]) Title() string     { return r.title }
func (r *Resource[T]) Path() string      { return r.path }
func (r *Resource[T]) PageSize() int     { return r.pageSize }

// WithEmptyMessage overrides the text shown for an empty page.
func (r *Resource[T]) WithEmptyMessage(msg string) *Resource[T] {
	if msg != "" {
		r.empty = msg
	}
	return r
}

// Load fetches the requested page, applies the search string to that page
// and opens the selected record when it is part of the page.
func (r *Resource[T]) Load(ctx context.Context, client marketplace.Client, query listview.Query) ListPage {
	page := ListPage{
		Key:          r.key,
		Title:        r.title,
		Role:         r.role.String(),
		Path:         r.path,
		Columns:      r.Columns,
		Forms:        r.Forms,
		Query:        query,
		Search:       query.Search,
		EmptyMessage: r.empty,
	}

	var stats []Stat
	fetch := func(ctx context.Context, p, limit int) (listview.Result[T], error) {
		if r.Fetch == nil || client == nil {
			return listview.Result[T]{}, goerrors.New("panels: "+r.key+" has no data source", goerrors.CategoryInternal)
		}
		fetched, err := r.Fetch(ctx, client, p, limit)
		stats = fetched.Stats
		return fetched.Result, err
	}

	loader := listview.NewLoader(fetch, listview.Options[T]{
		Limit:  r.pageSize,
		ID:     r.ID,
		Fields: r.Search,
	})
	loader.SetSearch(query.Search)
	state, err := loader.Load(ctx, query.Page)
	if err != nil && !errors.Is(err, listview.ErrStale) {
		page.Error = state.ErrorMessage
		page.ErrorDetail = marketplace.Detail(err)
		page.RetryHref = query.Href(r.path)
		page.Page = state.Page
		page.Pages = 1
		page.Pager = Pager{Controls: listview.NewControls(state.Page, 1, false)}
		page.Rows = []Row{}
		page.Items = []T{}
		return page
	}

	if r.Overlay != nil {
		for _, item := range r.Overlay(state.Items) {
			loader.Replace(item)
		}
	}
	visible := loader.Visible()

	page.Stats = stats
	page.Page = state.Page
	page.Pages = state.Pages
	page.Total = state.Total
	page.Items = visible
	page.Rows = make([]Row, 0, len(visible))
	for _, item := range visible {
		page.Rows = append(page.Rows, r.row(item, query))
	}

	controls := loader.Controls()
	page.Pager = Pager{Controls: controls}
	if controls.Visible {
		if !controls.PrevDisabled {
			page.Pager.PrevHref = query.WithPage(controls.PrevPage).Href(r.path)
		}
		if !controls.NextDisabled {
			page.Pager.NextHref = query.WithPage(controls.NextPage).Href(r.path)
		}
	}

	if query.Selected != "" {
		if selected, ok := loader.Select(query.Selected); ok {
			page.Detail = r.detail(selected, query)
		}
	}
	return page
}

func (r *Resource[T]) row(item T, query listview.Query) Row {
	row := Row{}
	if r.ID != nil {
		row.ID = r.ID(item)
		row.DetailHref = query.WithSelected(row.ID).Href(r.path)
	}
	if r.Cells != nil {
		row.Cells = r.Cells(item)
	}
	if r.Actions != nil {
		row.Actions = r.Actions(item)
	}
	if r.Pending != nil {
		row.Pending = r.Pending(item)
	}
	return row
}

func (r *Resource[T]) detail(item T, query listview.Query) *Detail {
	detail := &Detail{
		Title:     r.title,
		CloseHref: query.WithSelected("").Href(r.path),
	}
	if r.ID != nil {
		detail.ID = r.ID(item)
	}
	if r.Label != nil {
		detail.Title = r.Label(item)
	}
	if r.Detail != nil {
		detail.Groups = r.Detail(item)
	}
	if r.Actions != nil {
		detail.Actions = r.Actions(item)
	}
	return detail
}

// fromPage adapts a marketplace page to a listview result.
func fromPage[T any](page marketplace.Page[T], err error) (Fetched[T], error) {
	if err != nil {
		return Fetched[T]{}, err
	}
	return Fetched[T]{Result: listview.Result[T]{
		Items: page.Items,
		Page:  page.Pagination.Page,
		Limit: page.Pagination.Limit,
		Total: page.Pagination.Total,
		Pages: page.Pagination.Pages,
	}}, nil
}
