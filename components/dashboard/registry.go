package dashboard

import (
	"cmp"
	"slices"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/status"
)

type registryEntry struct {
	def      WidgetDefinition
	provider Provider
}

// Registry implements ProviderRegistry. It starts with the marketplace
// definitions; providers are attached later, see RegisterSources.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry builds a registry holding DefaultWidgetDefinitions.
func NewRegistry() *Registry {
	r := &Registry{entries: map[string]registryEntry{}}
	for _, def := range DefaultWidgetDefinitions() {
		r.entries[def.Code] = registryEntry{def: def}
	}
	return r
}

// RegisterDefinition adds or replaces a definition, keeping any provider
// already attached to its code.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return goerrors.New("widget definition code is required", goerrors.CategoryBadInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.entries[def.Code]
	entry.def = def
	r.entries[def.Code] = entry
	return nil
}

// RegisterProvider attaches the provider that feeds a registered definition.
func (r *Registry) RegisterProvider(code string, provider Provider) error {
	if provider == nil {
		return goerrors.New("widget provider is required", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"definition_id": code})
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[code]
	if !ok {
		return goerrors.New("widget definition not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"definition_id": code})
	}
	entry.provider = provider
	r.entries[code] = entry
	return nil
}

// Definition looks up a definition by code.
func (r *Registry) Definition(code string) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[code]
	return entry.def, ok
}

// Provider looks up the provider of a definition, if one is attached.
func (r *Registry) Provider(code string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry := r.entries[code]
	return entry.provider, entry.provider != nil
}

// Definitions lists every definition ordered by code.
func (r *Registry) Definitions() []WidgetDefinition {
	return r.collect(func(WidgetDefinition) bool { return true })
}

// DefinitionsFor lists the definitions that may be placed on role's panel.
func (r *Registry) DefinitionsFor(role status.Role) []WidgetDefinition {
	return r.collect(func(def WidgetDefinition) bool { return def.AllowsRole(role) })
}

func (r *Registry) collect(keep func(WidgetDefinition) bool) []WidgetDefinition {
	r.mu.RLock()
	defs := make([]WidgetDefinition, 0, len(r.entries))
	for _, entry := range r.entries {
		if keep(entry.def) {
			defs = append(defs, entry.def)
		}
	}
	r.mu.RUnlock()
	slices.SortFunc(defs, func(a, b WidgetDefinition) int { return cmp.Compare(a.Code, b.Code) })
	return defs
}
