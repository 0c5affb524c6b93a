package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator checks a widget configuration against its definition.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator checks configurations against the JSON Schema carried by
// each definition. Schemas compile once per definition code.
type JSONSchemaValidator struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: map[string]*jsonschema.Schema{}}
}

// Validate returns a validation error listing every failing field, keyed by
// JSON pointer ("/months").
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.compile(def)
	if err != nil {
		return err
	}
	doc, err := asJSONDocument(config)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "dashboard: configuration for "+def.Code+" is not JSON")
	}
	if err := schema.Validate(doc); err != nil {
		return configError(def.Code, err)
	}
	return nil
}

func (v *JSONSchemaValidator) compile(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if schema, ok := v.compiled[def.Code]; ok {
		return schema, nil
	}
	raw, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "dashboard: encode schema "+def.Code)
	}
	url := "widgets/" + def.Code + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "dashboard: add schema "+def.Code)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "dashboard: compile schema "+def.Code)
	}
	v.compiled[def.Code] = schema
	return schema, nil
}

// asJSONDocument round-trips config through encoding/json so numbers and
// nested values have the shapes jsonschema expects.
func asJSONDocument(config map[string]any) (any, error) {
	if config == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, err
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func configError(code string, err error) error {
	msg := "dashboard: configuration for " + code + " failed validation"
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, msg)
	}
	var fields []goerrors.FieldError
	stack := []*jsonschema.ValidationError{verr}
	for len(stack) > 0 {
		e := stack[0]
		stack = stack[1:]
		if len(e.Causes) > 0 {
			stack = append(stack, e.Causes...)
			continue
		}
		field := e.InstanceLocation
		if field == "" {
			field = "/"
		}
		fields = append(fields, goerrors.FieldError{Field: field, Message: e.Message})
	}
	return goerrors.NewValidation(msg, fields...)
}
