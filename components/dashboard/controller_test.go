package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLayoutResolver struct {
	layout Layout
	err    error
}

func (s *stubLayoutResolver) ConfigureLayout(context.Context, ViewerContext) (Layout, error) {
	return s.layout, s.err
}

type stubRenderer struct {
	lastTemplate string
	lastPayload  map[string]any
	err          error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.lastTemplate = name
	if payload, ok := data.(map[string]any); ok {
		r.lastPayload = payload
	}
	if len(out) > 0 && out[0] != nil {
		_, _ = out[0].Write([]byte("<html></html>"))
	}
	return "<html></html>", r.err
}

func sellerLayout() Layout {
	return Layout{Areas: map[string][]WidgetInstance{
		SellerMainArea: {
			{ID: "w1", DefinitionID: WidgetAwaitingOrders, Metadata: map[string]any{"data": WidgetData{"items": []map[string]any{}}}},
			{ID: "w2", DefinitionID: WidgetPayoutSummary, Metadata: map[string]any{"error": widgetErrorMessage}},
		},
		SellerSidebarArea: {
			{ID: "w3", DefinitionID: WidgetRecentActivity},
		},
	}}
}

func TestControllerLayoutPayload(t *testing.T) {
	controller := NewController(ControllerOptions{Service: &stubLayoutResolver{layout: sellerLayout()}})

	page, err := controller.LayoutPayload(context.Background(), sellerViewer)
	require.NoError(t, err)
	assert.Equal(t, "Seller Overview", page.Title)
	assert.Equal(t, "seller", page.Role)
	require.Len(t, page.Areas, 2)
	assert.Equal(t, SellerMainArea, page.Areas[0].Code)

	main := page.Areas[0].Widgets
	require.Len(t, main, 2)
	assert.Equal(t, "Orders Awaiting Acceptance", main[0].Name)
	assert.Equal(t, "widgets/feed.html", main[0].Template)
	assert.NotNil(t, main[0].Data)
	assert.Equal(t, "widgets/chart.html", main[1].Template)
	assert.Equal(t, widgetErrorMessage, main[1].Error)
	assert.Equal(t, "widgets/activity.html", page.Areas[1].Widgets[0].Template)
}

func TestControllerRenderTemplate(t *testing.T) {
	renderer := &stubRenderer{}
	controller := NewController(ControllerOptions{
		Service:  &stubLayoutResolver{layout: sellerLayout()},
		Renderer: renderer,
	})

	var buf bytes.Buffer
	require.NoError(t, controller.RenderTemplate(context.Background(), sellerViewer, &buf))
	assert.Equal(t, defaultOverviewTemplate, renderer.lastTemplate)
	assert.IsType(t, OverviewPage{}, renderer.lastPayload["page"])
	assert.NotZero(t, buf.Len())
}

func TestControllerPropagatesErrors(t *testing.T) {
	controller := NewController(ControllerOptions{
		Service:  &stubLayoutResolver{err: errors.New("store down")},
		Renderer: &stubRenderer{},
	})
	assert.Error(t, controller.RenderTemplate(context.Background(), adminViewer, io.Discard))

	controller = NewController(ControllerOptions{Service: &stubLayoutResolver{}})
	assert.Error(t, controller.RenderTemplate(context.Background(), adminViewer, io.Discard))

	controller = NewController(ControllerOptions{
		Service:  &stubLayoutResolver{},
		Renderer: &stubRenderer{err: errors.New("template missing")},
	})
	assert.Error(t, controller.RenderTemplate(context.Background(), adminViewer, io.Discard))
}
