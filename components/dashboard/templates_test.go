package dashboard

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRendererIgnoresWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	controller := NewController(ControllerOptions{
		Service:  &stubLayoutResolver{layout: sellerLayout()},
		Renderer: renderer,
	})

	var out bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), sellerViewer, &out))
	html := out.String()
	assert.Contains(t, html, "<title>Seller Overview</title>")
	assert.Contains(t, html, `data-area="`+SellerMainArea+`"`)
	assert.Contains(t, html, `data-widget="w1"`)
	assert.Contains(t, html, widgetErrorMessage)
}
