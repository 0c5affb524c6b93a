// Package panels defines the list screens of the admin, seller and buyer
// panels: which backend list each screen reads, its page size, the fields
// searched, the table columns, the detail overlay groups and the row actions.
//
// A screen is stateless between requests. Every render runs a fresh
// listview.Loader over the requested page, applies the search string to that
// page only and opens the selected record from the fetched data.
package panels

import (
	"github.com/goliatone/go-market-dashboard/components/listview"
	"github.com/goliatone/go-market-dashboard/components/status"
)

// Column is a table header.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Align string `json:"align,omitempty"`
}

// Cell is one rendered table cell. Badge is set for status columns.
type Cell struct {
	Text  string        `json:"text"`
	Badge *status.Badge `json:"badge,omitempty"`
}

// Row is a rendered record.
type Row struct {
	ID         string   `json:"id"`
	Cells      []Cell   `json:"cells"`
	Actions    []Action `json:"actions,omitempty"`
	DetailHref string   `json:"detail_href"`
	Pending    bool     `json:"pending,omitempty"`
}

// Input is a form field of an action.
type Input struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []Option `json:"options,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// Option is a select choice.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Action is a mutation offered on a row or on the whole screen.
type Action struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Href    string      `json:"href"`
	Tone    status.Tone `json:"tone"`
	Inputs  []Input     `json:"inputs,omitempty"`
	Confirm string      `json:"confirm,omitempty"`
}

// Field is a label/value pair of the detail overlay.
type Field struct {
	Label string        `json:"label"`
	Value string        `json:"value"`
	Badge *status.Badge `json:"badge,omitempty"`
}

// FieldGroup is a titled section of the detail overlay. Table groups render
// nested lists such as order items.
type FieldGroup struct {
	Title   string     `json:"title"`
	Fields  []Field    `json:"fields,omitempty"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Detail is the overlay opened on a selected record.
type Detail struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Groups    []FieldGroup `json:"groups"`
	Actions   []Action     `json:"actions,omitempty"`
	CloseHref string       `json:"close_href"`
}

// Stat is a header counter shown above a table.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Flash reports the outcome of the last action.
type Flash struct {
	Tone    status.Tone `json:"tone"`
	Message string      `json:"message"`
}

// Pager carries the pagination controls and their links.
type Pager struct {
	listview.Controls
	PrevHref string `json:"prev_href,omitempty"`
	NextHref string `json:"next_href,omitempty"`
}

// ListPage is the render model of a list screen.
type ListPage struct {
	Key          string         `json:"key"`
	Title        string         `json:"title"`
	Role         string         `json:"role"`
	Path         string         `json:"path"`
	Columns      []Column       `json:"columns"`
	Rows         []Row          `json:"rows"`
	Items        any            `json:"items"`
	Stats        []Stat         `json:"stats,omitempty"`
	Pager        Pager          `json:"pager"`
	Query        listview.Query `json:"-"`
	Search       string         `json:"search"`
	Page         int            `json:"page"`
	Pages        int            `json:"pages"`
	Total        int            `json:"total"`
	Error        string         `json:"error,omitempty"`
	ErrorDetail  string         `json:"error_detail,omitempty"`
	RetryHref    string         `json:"retry_href,omitempty"`
	Detail       *Detail        `json:"detail,omitempty"`
	Forms        []Action       `json:"forms,omitempty"`
	Flash        *Flash         `json:"flash,omitempty"`
	Navigation   []NavLink      `json:"navigation,omitempty"`
	EmptyMessage string         `json:"empty_message"`
}

// Failed reports whether the page is showing the fetch error state.
func (p ListPage) Failed() bool {
	return p.Error != ""
}

// NavLink is an entry of the panel navigation.
type NavLink struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Active bool   `json:"active,omitempty"`
}
