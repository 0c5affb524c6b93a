// Package status defines the closed set of lifecycle states the marketplace
// backend reports for orders, payouts, returns, reviews, drivers, loans and
// coupons, together with the badge styling used when rendering them.
//
// Every enum reserves its zero value for Unknown. Parse maps anything it does
// not recognise to that value. Decoding a wire value the dashboard does not
// recognise still yields an Unknown status, but one that keeps the value the
// backend sent so it can be shown and written back unchanged.
package status

import (
	"math"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// Tone is the visual weight of a badge.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneUnknown Tone = "unknown"
)

// Badge is the render model for a status pill.
type Badge struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Tone  Tone   `json:"tone"`
}

// Class returns the CSS class used by the templates.
func (b Badge) Class() string {
	return "badge badge-" + string(b.Tone)
}

const unknownLabel = "Unknown"

func labelFor(wire string) string {
	if wire == "" {
		return unknownLabel
	}
	return strcase.ToCase(wire, strcase.TitleCase, ' ')
}

func normalize(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	raw = strings.ReplaceAll(raw, "-", "_")
	return strings.ReplaceAll(raw, " ", "_")
}

// lookup resolves raw against names (index 0 is Unknown) plus aliases.
func lookup(raw string, names []string, aliases map[string]int) int {
	key := normalize(raw)
	if key == "" {
		return 0
	}
	for i := 1; i < len(names); i++ {
		if names[i] == key {
			return i
		}
	}
	if idx, ok := aliases[key]; ok {
		return idx
	}
	return 0
}

// Unrecognised wire values are interned from unrecognisedBase upwards. Once
// the table is full further values collapse to the plain Unknown.
const unrecognisedBase = 128

var unrecognised struct {
	sync.RWMutex
	codes map[string]int
	raws  []string
}

// decode is lookup for wire values: unrecognised input keeps its raw text.
func decode(raw string, names []string, aliases map[string]int) int {
	if idx := lookup(raw, names, aliases); idx != 0 {
		return idx
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	return intern(raw)
}

func intern(raw string) int {
	unrecognised.RLock()
	code, ok := unrecognised.codes[raw]
	unrecognised.RUnlock()
	if ok {
		return code
	}

	unrecognised.Lock()
	defer unrecognised.Unlock()
	if code, ok := unrecognised.codes[raw]; ok {
		return code
	}
	if unrecognisedBase+len(unrecognised.raws) > math.MaxUint8 {
		return 0
	}
	if unrecognised.codes == nil {
		unrecognised.codes = make(map[string]int)
	}
	code = unrecognisedBase + len(unrecognised.raws)
	unrecognised.raws = append(unrecognised.raws, raw)
	unrecognised.codes[raw] = code
	return code
}

func rawAt(idx int) (string, bool) {
	if idx < unrecognisedBase {
		return "", false
	}
	unrecognised.RLock()
	defer unrecognised.RUnlock()
	if i := idx - unrecognisedBase; i < len(unrecognised.raws) {
		return unrecognised.raws[i], true
	}
	return "", false
}

func nameAt(names []string, idx int) string {
	if raw, ok := rawAt(idx); ok {
		return raw
	}
	if idx <= 0 || idx >= len(names) {
		return ""
	}
	return names[idx]
}

func labelAt(names []string, idx int) string {
	if raw, ok := rawAt(idx); ok {
		return unknownLabel + " (" + raw + ")"
	}
	return labelFor(nameAt(names, idx))
}

func unknownAt(names []string, idx int) bool {
	return idx <= 0 || idx >= len(names)
}
