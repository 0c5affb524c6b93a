package dashboard

import (
	"context"
	"errors"
)

// RefreshHooks fans a widget event out to several hooks.
type RefreshHooks []RefreshHook

// WidgetUpdated implements RefreshHook. Every hook runs; errors are joined.
func (h RefreshHooks) WidgetUpdated(ctx context.Context, event WidgetEvent) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.WidgetUpdated(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
