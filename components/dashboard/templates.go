package dashboard

import (
	"embed"
	"io"
	"io/fs"

	goerrors "github.com/goliatone/go-errors"
	template "github.com/goliatone/go-template"
)

// Renderer turns a named template and its data into markup.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html templates/**/*.html
var overviewTemplates embed.FS

// NewTemplateRenderer renders the overview page and its widget partials.
func NewTemplateRenderer() (Renderer, error) {
	return NewFSRenderer(overviewTemplates)
}

// NewFSRenderer builds a go-template renderer over the "templates" directory
// of fsys. Templates load from fsys only, never from the working directory.
func NewFSRenderer(fsys fs.FS) (Renderer, error) {
	root, err := fs.Sub(fsys, "templates")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "dashboard: open embedded templates")
	}
	return template.NewRenderer(
		template.WithFS(root),
		template.WithExtension(".html"),
	)
}
