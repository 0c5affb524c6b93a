// Package dashboard re-exports the overview service for host applications
// that embed the marketplace dashboards.
package dashboard

import (
	core "github.com/goliatone/go-market-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies who the overview is rendered for.
type ViewerContext = core.ViewerContext

// Sources bundles the report repositories behind the built-in widgets.
type Sources = core.Sources

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
