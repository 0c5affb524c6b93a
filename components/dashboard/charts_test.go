package dashboard

import (
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revenueChart(kind ChartKind) Chart {
	return Chart{
		Kind:   kind,
		Title:  "Revenue",
		Labels: []string{"Jan", "Feb"},
		Series: []ChartSeries{{Name: "Revenue", Values: []float64{10, 20}}},
	}
}

func TestChartRendererDrawsEachKind(t *testing.T) {
	renderer := NewChartRenderer()
	for _, kind := range []ChartKind{ChartLine, ChartBar, ChartPie} {
		t.Run(string(kind), func(t *testing.T) {
			data, err := renderer.Render(WidgetInstance{ID: "c1"}, adminViewer, revenueChart(kind))
			require.NoError(t, err)
			assert.Equal(t, string(kind), data["chart_type"])
			assert.Equal(t, "Revenue", data["title"])
			assert.Contains(t, data["chart_html"], "echarts")
			assert.Equal(t, types.ThemeWesteros, data["theme"])
		})
	}
}

func TestChartRendererRejectsEmptyAndUnknownCharts(t *testing.T) {
	renderer := NewChartRenderer()
	_, err := renderer.Render(WidgetInstance{}, adminViewer, Chart{Kind: ChartLine, Title: "Empty"})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))

	chart := revenueChart("radar")
	_, err = renderer.Render(WidgetInstance{}, adminViewer, chart)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestChartRendererThemeResolution(t *testing.T) {
	renderer := NewChartRenderer(
		WithChartTheme(types.ThemeChalk),
		WithChartThemeResolver(func(v ViewerContext) string {
			if v.Role().String() == "seller" {
				return types.ThemeWalden
			}
			return ""
		}),
	)
	theme := func(viewer ViewerContext, chart Chart) any {
		data, err := renderer.Render(WidgetInstance{}, viewer, chart)
		require.NoError(t, err)
		return data["theme"]
	}

	assert.Equal(t, types.ThemeChalk, theme(adminViewer, revenueChart(ChartBar)))
	assert.Equal(t, types.ThemeWalden, theme(sellerViewer, revenueChart(ChartBar)))

	pinned := revenueChart(ChartBar)
	pinned.Theme = types.ThemeWonderland
	assert.Equal(t, types.ThemeWonderland, theme(sellerViewer, pinned))
}

func TestChartRendererCachesPerInstance(t *testing.T) {
	cache := NewChartCache(time.Minute)
	renderer := NewChartRenderer(WithChartCache(cache))

	first, err := renderer.Render(WidgetInstance{ID: "c1"}, adminViewer, revenueChart(ChartLine))
	require.NoError(t, err)
	second, err := renderer.Render(WidgetInstance{ID: "c1"}, adminViewer, revenueChart(ChartLine))
	require.NoError(t, err)
	assert.Equal(t, first["chart_html"], second["chart_html"])
	assert.Equal(t, 1, cache.Len())

	_, err = renderer.Render(WidgetInstance{}, adminViewer, revenueChart(ChartLine))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestLabelAtNumbersMissingLabels(t *testing.T) {
	assert.Equal(t, "Jan", labelAt([]string{"Jan"}, 0))
	assert.Equal(t, "#2", labelAt([]string{"Jan"}, 1))
	assert.Equal(t, "#1", labelAt([]string{""}, 0))
}
