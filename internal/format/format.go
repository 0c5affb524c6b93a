// Package format renders money, counts, sizes and timestamps for templates.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when a caller passes an empty or unknown ISO code.
const DefaultCurrency = "NGN"

// Printer returns a message printer for the locale, falling back to English.
func Printer(locale string) *message.Printer {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || locale == "" {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// Money formats an amount with the currency symbol and locale grouping.
func Money(amount float64, code, locale string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.MustParseISO(DefaultCurrency)
	}
	return Printer(locale).Sprint(currency.Symbol(unit.Amount(amount)))
}

// Count formats an integer with locale grouping.
func Count(n int, locale string) string {
	return Printer(locale).Sprintf("%d", n)
}

// Percent formats a ratio in [0,1] as a percentage.
func Percent(ratio float64, locale string) string {
	return Printer(locale).Sprintf("%.1f%%", ratio*100)
}

// Ago renders a timestamp relative to now. Zero times render empty.
func Ago(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.Time(t)
}

// AgoFrom renders a timestamp relative to a fixed reference.
func AgoFrom(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Date formats a timestamp for table cells.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Bytes renders a byte size such as "1.2 MB".
func Bytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}
