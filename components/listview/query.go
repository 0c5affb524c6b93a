// Package listview implements the paginated search-and-detail list used by
// every panel screen: fetch one page, filter it locally, page through with
// previous/next controls and open a record in a detail overlay.
package listview

import (
	"net/url"
	"strconv"
	"strings"
)

// Query is the normalised request of a list screen.
type Query struct {
	Page     int
	Limit    int
	Search   string
	Selected string
}

// ParseQuery reads page, search and selected from get. The page size is
// fixed per view and never taken from the request.
func ParseQuery(get func(string) string, limit int) Query {
	q := Query{Page: 1, Limit: limit}
	if get == nil {
		return q
	}
	if page, err := strconv.Atoi(strings.TrimSpace(get("page"))); err == nil && page > 0 {
		q.Page = page
	}
	q.Search = strings.TrimSpace(get("search"))
	q.Selected = strings.TrimSpace(get("selected"))
	return q
}

// WithPage returns a copy pointing at page, keeping the search string and
// dropping any selection.
func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	q.Selected = ""
	return q
}

// WithSelected returns a copy with the detail overlay opened on id.
func (q Query) WithSelected(id string) Query {
	q.Selected = id
	return q
}

// Values encodes the query for links. Defaults are omitted.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Selected != "" {
		values.Set("selected", q.Selected)
	}
	return values
}

// Href renders base plus the encoded query.
func (q Query) Href(base string) string {
	encoded := q.Values().Encode()
	if encoded == "" {
		return base
	}
	return base + "?" + encoded
}
