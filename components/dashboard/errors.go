package dashboard

import (
	goerrors "github.com/goliatone/go-errors"
)

var (
	errMissingWidgetStore = goerrors.New("dashboard: widget store not configured", goerrors.CategoryInternal)
	errInvalidArea        = goerrors.New("dashboard: area code is required", goerrors.CategoryBadInput)
	errInvalidDefinition  = goerrors.New("dashboard: definition id is required", goerrors.CategoryBadInput)
	errInvalidWidget      = goerrors.New("dashboard: widget id is required", goerrors.CategoryBadInput)
	errMissingViewer      = goerrors.New("dashboard: viewer context missing user id", goerrors.CategoryAuth)
)

// ErrWidgetNotFound is returned by stores when an instance does not exist.
var ErrWidgetNotFound = goerrors.New("dashboard: widget instance not found", goerrors.CategoryNotFound)

func errAreaForbidden(area string) error {
	return goerrors.New("dashboard: area not available to viewer", goerrors.CategoryAuthz).
		WithMetadata(map[string]any{"area_code": area})
}

func errDefinitionNotAllowed(definition, area string) error {
	return goerrors.New("dashboard: widget cannot be placed in area", goerrors.CategoryBadInput).
		WithMetadata(map[string]any{"definition_id": definition, "area_code": area})
}
