package listview

import "strings"

// Filter returns the items of the current page whose searchable fields
// contain search, ignoring case. It never sees records outside items.
// Surrounding whitespace in search is ignored, so a blank search keeps every
// item whether it came from ParseQuery or straight from Loader.SetSearch.
func Filter[T any](items []T, search string, fields func(T) []string) []T {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" || fields == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields(item) {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
