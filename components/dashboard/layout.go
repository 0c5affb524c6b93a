package dashboard

import "slices"

// Apply returns the widgets of area as the viewer arranged them: hidden
// widgets dropped, listed ids first in their saved order, and anything placed
// since the preference was saved after them in store order.
func (o LayoutOverrides) Apply(area string, widgets []WidgetInstance) []WidgetInstance {
	out := slices.DeleteFunc(slices.Clone(widgets), func(w WidgetInstance) bool {
		return o.HiddenWidgets[w.ID]
	})
	order := o.AreaOrder[area]
	if len(order) == 0 {
		return out
	}
	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}
	slices.SortStableFunc(out, func(a, b WidgetInstance) int {
		ra, okA := rank[a.ID]
		rb, okB := rank[b.ID]
		switch {
		case okA && okB:
			return ra - rb
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return out
}

func (o *LayoutOverrides) normalize() {
	if o.AreaOrder == nil {
		o.AreaOrder = map[string][]string{}
	}
	if o.HiddenWidgets == nil {
		o.HiddenWidgets = map[string]bool{}
	}
}
