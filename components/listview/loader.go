package listview

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultErrorMessage is shown in place of the list when a fetch fails.
const DefaultErrorMessage = "Something went wrong while loading this list."

// ErrStale is returned when a response arrives after a newer request was
// issued. The state is left untouched.
var ErrStale = goerrors.New("stale list response discarded", goerrors.CategoryOperation)

// Result is one fetched page.
type Result[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
	Pages int
}

// FetchFunc loads a single page.
type FetchFunc[T any] func(ctx context.Context, page, limit int) (Result[T], error)

// Options configures a Loader.
type Options[T any] struct {
	Limit        int
	ID           func(T) string
	Fields       func(T) []string
	ErrorMessage string
}

// State is a snapshot of a list screen.
type State[T any] struct {
	Loading      bool
	Err          error
	ErrorMessage string
	Items        []T
	Page         int
	Limit        int
	Total        int
	Pages        int
	Search       string
	Selected     *T
}

// Visible is the current page filtered by the search string.
func (s State[T]) Visible(fields func(T) []string) []T {
	return Filter(s.Items, s.Search, fields)
}

// Failed reports whether the last fetch errored.
func (s State[T]) Failed() bool {
	return s.Err != nil
}

// Loader runs the fetch/filter/select cycle for one list.
type Loader[T any] struct {
	mu      sync.Mutex
	fetch   FetchFunc[T]
	opts    Options[T]
	seq     uint64
	last    int
	hasLast bool
	state   State[T]
}

// NewLoader builds a loader around fetch.
func NewLoader[T any](fetch FetchFunc[T], opts Options[T]) *Loader[T] {
	if opts.ErrorMessage == "" {
		opts.ErrorMessage = DefaultErrorMessage
	}
	return &Loader[T]{
		fetch: fetch,
		opts:  opts,
		state: State[T]{Page: 1, Limit: opts.Limit, Pages: 1},
	}
}

// Load fetches page. The search string survives page changes and is
// re-applied to the new page; the selection is cleared.
func (l *Loader[T]) Load(ctx context.Context, page int) (State[T], error) {
	if page < 1 {
		page = 1
	}
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.last = page
	l.hasLast = true
	l.state.Loading = true
	l.state.Page = page
	l.state.Selected = nil
	l.mu.Unlock()

	result, err := l.fetch(ctx, page, l.opts.Limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		return l.snapshot(), ErrStale
	}
	l.state.Loading = false
	if err != nil {
		l.state.Err = err
		l.state.ErrorMessage = l.opts.ErrorMessage
		l.state.Items = nil
		return l.snapshot(), err
	}
	l.state.Err = nil
	l.state.ErrorMessage = ""
	l.state.Items = result.Items
	l.state.Page = firstPositive(result.Page, page)
	l.state.Limit = firstPositive(result.Limit, l.opts.Limit)
	l.state.Total = result.Total
	l.state.Pages = firstPositive(result.Pages, 1)
	return l.snapshot(), nil
}

// Retry re-issues the last request once. Without a prior request it loads
// the first page.
func (l *Loader[T]) Retry(ctx context.Context) (State[T], error) {
	l.mu.Lock()
	page := 1
	if l.hasLast {
		page = l.last
	}
	l.mu.Unlock()
	return l.Load(ctx, page)
}

// SetSearch updates the search string. No request is made.
func (l *Loader[T]) SetSearch(search string) State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Search = search
	return l.snapshot()
}

// Select opens the detail overlay on a record of the loaded page. No
// request is made.
func (l *Loader[T]) Select(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.opts.ID == nil || id == "" {
		return zero, false
	}
	for i := range l.state.Items {
		if l.opts.ID(l.state.Items[i]) == id {
			selected := l.state.Items[i]
			l.state.Selected = &selected
			return selected, true
		}
	}
	return zero, false
}

// ClearSelection closes the detail overlay.
func (l *Loader[T]) ClearSelection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Selected = nil
}

// Replace swaps a record of the loaded page in place, matched by ID.
func (l *Loader[T]) Replace(item T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opts.ID == nil {
		return false
	}
	id := l.opts.ID(item)
	for i := range l.state.Items {
		if l.opts.ID(l.state.Items[i]) == id {
			l.state.Items[i] = item
			if l.state.Selected != nil && l.opts.ID(*l.state.Selected) == id {
				selected := item
				l.state.Selected = &selected
			}
			return true
		}
	}
	return false
}

// State returns the current snapshot.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Visible returns the loaded page filtered by the current search.
func (l *Loader[T]) Visible() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Filter(l.state.Items, l.state.Search, l.opts.Fields)
}

// Controls returns the pagination control state.
func (l *Loader[T]) Controls() Controls {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewControls(l.state.Page, l.state.Pages, l.state.Loading)
}

func (l *Loader[T]) snapshot() State[T] {
	out := l.state
	if l.state.Items != nil {
		out.Items = append([]T(nil), l.state.Items...)
	}
	if l.state.Selected != nil {
		selected := *l.state.Selected
		out.Selected = &selected
	}
	return out
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
