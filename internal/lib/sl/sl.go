package sl

import (
	"log/slog"
	"strings"
)

// Err wraps an error as a structured attribute.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Module tags log lines with the emitting component.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

// Secret logs a masked version of a credential.
func Secret(key, value string) slog.Attr {
	return slog.String(key, mask(value))
}

func mask(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ""
	case len(value) <= 6:
		return "***"
	default:
		return value[:3] + "***" + value[len(value)-2:]
	}
}
