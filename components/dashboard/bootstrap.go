package dashboard

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterAreas ensures the overview areas of every panel exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "register area "+area.Code)
		}
	}
	return nil
}

// RegisterDefinitions registers the marketplace widget definitions.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range DefaultWidgetDefinitions() {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "register definition "+def.Code)
		}
		if registry == nil {
			continue
		}
		if _, ok := registry.Definition(def.Code); ok {
			continue
		}
		if err := registry.RegisterDefinition(def); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "register definition in registry "+def.Code)
		}
	}
	return nil
}

// SeedLayout places the starter widgets of DefaultSeedWidgets in areas that
// hold no widgets yet, so restarts against a kept store add nothing. It
// returns how many widgets were placed.
func SeedLayout(ctx context.Context, service *Service) (int, error) {
	if service == nil {
		return 0, goerrors.New("dashboard: service is required to seed layout", goerrors.CategoryInternal)
	}
	store, err := service.widgetStore()
	if err != nil {
		return 0, err
	}
	empty := map[string]bool{}
	placed := 0
	var errs []error
	for _, req := range DefaultSeedWidgets() {
		isEmpty, known := empty[req.AreaCode]
		if !known {
			resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: req.AreaCode})
			if err != nil {
				errs = append(errs, err)
				empty[req.AreaCode] = false
				continue
			}
			isEmpty = len(resolved.Widgets) == 0
			empty[req.AreaCode] = isEmpty
		}
		if !isEmpty {
			continue
		}
		if err := service.AddWidget(ctx, req); err != nil {
			errs = append(errs, err)
			continue
		}
		placed++
	}
	return placed, errors.Join(errs...)
}
