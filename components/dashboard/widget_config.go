package dashboard

import (
	"encoding/json"
	"strconv"
	"strings"
)

// widgetConfig reads instance configuration, which arrives as decoded JSON
// (float64 numbers) from transports and as Go literals from seeds.
type widgetConfig map[string]any

func (c widgetConfig) text(key, fallback string) string {
	if s, ok := c[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func (c widgetConfig) number(key string, fallback int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func (c widgetConfig) flag(key string) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// chartData adds the refresh hints of a dynamic chart to its payload.
func (c widgetConfig) chartData(data WidgetData) WidgetData {
	if c.flag("dynamic") {
		data["dynamic"] = true
		if endpoint := c.text("refresh_endpoint", ""); endpoint != "" {
			data["refresh_endpoint"] = endpoint
		}
	}
	return data
}
