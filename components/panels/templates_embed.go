package panels

import (
	"embed"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
)

//go:embed templates/*.html templates/partials/*.html
var screenTemplates embed.FS

// NewTemplateRenderer renders the list, settings and documents screens.
func NewTemplateRenderer() (dashboard.Renderer, error) {
	return dashboard.NewFSRenderer(screenTemplates)
}
