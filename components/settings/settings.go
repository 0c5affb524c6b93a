// Package settings owns the per-user dashboard preferences that used to be
// an unvalidated browser blob. Values are versioned, defaulted on load and
// validated against a JSON schema on save.
package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
)

// CurrentVersion is written with every save.
const CurrentVersion = 2

// Settings are the managed preference fields.
type Settings struct {
	Version               int    `json:"version"`
	EmailNotifications    bool   `json:"emailNotifications"`
	SMSNotifications      bool   `json:"smsNotifications"`
	OrderAlerts           bool   `json:"orderAlerts"`
	LowStockAlerts        bool   `json:"lowStockAlerts"`
	MarketingEmails       bool   `json:"marketingEmails"`
	TwoFactorAuth         bool   `json:"twoFactorAuth"`
	MaintenanceMode       bool   `json:"maintenanceMode"`
	SessionTimeoutMinutes int    `json:"sessionTimeoutMinutes"`
	Currency              string `json:"currency"`
	Language              string `json:"language"`
}

// Defaults returns the values used for missing fields.
func Defaults() Settings {
	return Settings{
		Version:               CurrentVersion,
		EmailNotifications:    true,
		SMSNotifications:      false,
		OrderAlerts:           true,
		LowStockAlerts:        true,
		MarketingEmails:       false,
		TwoFactorAuth:         false,
		MaintenanceMode:       false,
		SessionTimeoutMinutes: 30,
		Currency:              "NGN",
		Language:              "en",
	}
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "sessionTimeoutMinutes", "currency", "language"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "emailNotifications": {"type": "boolean"},
    "smsNotifications": {"type": "boolean"},
    "orderAlerts": {"type": "boolean"},
    "lowStockAlerts": {"type": "boolean"},
    "marketingEmails": {"type": "boolean"},
    "twoFactorAuth": {"type": "boolean"},
    "maintenanceMode": {"type": "boolean"},
    "sessionTimeoutMinutes": {"type": "integer", "minimum": 5, "maximum": 480},
    "currency": {"type": "string", "enum": ["NGN", "USD", "GHS", "KES", "ZAR"]},
    "language": {"type": "string", "pattern": "^[a-z]{2}(-[A-Z]{2})?$"}
  },
  "additionalProperties": false
}`

// Accessor loads and saves Settings through a kvstore.Store.
type Accessor struct {
	store  kvstore.Store
	schema *jsonschema.Schema
}

// NewAccessor compiles the settings schema.
func NewAccessor(store kvstore.Store) (*Accessor, error) {
	if store == nil {
		return nil, goerrors.New("settings: store is required", goerrors.CategoryInternal)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("settings.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "settings: load schema")
	}
	schema, err := compiler.Compile("settings.json")
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "settings: compile schema")
	}
	return &Accessor{store: store, schema: schema}, nil
}

// Load returns the owner's settings. Missing fields take defaults, unknown
// fields are ignored and older versions are upgraded.
func (a *Accessor) Load(ctx context.Context, owner string) (Settings, error) {
	raw, ok, err := a.store.Get(ctx, owner, kvstore.KeySettings)
	if err != nil {
		return Settings{}, goerrors.Wrap(err, goerrors.CategoryInternal, "load settings")
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return Defaults(), nil
	}
	return Decode(raw)
}

// Decode parses a stored blob. Corrupt blobs fall back to defaults.
func Decode(raw []byte) (Settings, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Defaults(), nil
	}
	version := 0
	if v, ok := fields["version"]; ok {
		_ = json.Unmarshal(v, &version)
	}
	if version < CurrentVersion {
		fields = upgradeLegacy(fields)
	}

	out := Defaults()
	for name, value := range fields {
		applyField(&out, name, value)
	}
	out.Version = CurrentVersion
	return out, nil
}

// Save validates s and writes exactly the managed fields.
func (a *Accessor) Save(ctx context.Context, owner string, s Settings) (Settings, error) {
	s.Version = CurrentVersion
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	s.Language = strings.TrimSpace(s.Language)
	if err := a.Validate(s); err != nil {
		return Settings{}, err
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return Settings{}, goerrors.Wrap(err, goerrors.CategoryInternal, "encode settings")
	}
	if err := a.store.Put(ctx, owner, kvstore.KeySettings, payload); err != nil {
		return Settings{}, goerrors.Wrap(err, goerrors.CategoryInternal, "save settings")
	}
	return s, nil
}

// Validate checks s against the settings schema.
func (a *Accessor) Validate(s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode settings")
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "normalize settings")
	}
	if err := a.schema.Validate(doc); err != nil {
		return validationError(err)
	}
	return nil
}

// upgradeLegacy maps version 0/1 blobs: "orderUpdates" became "orderAlerts"
// and "sessionTimeout" was a string of minutes.
func upgradeLegacy(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if v, ok := fields["orderUpdates"]; ok {
		if _, exists := fields["orderAlerts"]; !exists {
			fields["orderAlerts"] = v
		}
	}
	if v, ok := fields["sessionTimeout"]; ok {
		if _, exists := fields["sessionTimeoutMinutes"]; !exists {
			var text string
			if json.Unmarshal(v, &text) == nil {
				if minutes, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
					fields["sessionTimeoutMinutes"] = json.RawMessage(strconv.Itoa(minutes))
				}
			} else {
				fields["sessionTimeoutMinutes"] = v
			}
		}
	}
	return fields
}

// applyField sets a single known field. Values with the wrong type are
// ignored so the default stays in place.
func applyField(s *Settings, name string, value json.RawMessage) {
	switch name {
	case "emailNotifications":
		_ = json.Unmarshal(value, &s.EmailNotifications)
	case "smsNotifications":
		_ = json.Unmarshal(value, &s.SMSNotifications)
	case "orderAlerts":
		_ = json.Unmarshal(value, &s.OrderAlerts)
	case "lowStockAlerts":
		_ = json.Unmarshal(value, &s.LowStockAlerts)
	case "marketingEmails":
		_ = json.Unmarshal(value, &s.MarketingEmails)
	case "twoFactorAuth":
		_ = json.Unmarshal(value, &s.TwoFactorAuth)
	case "maintenanceMode":
		_ = json.Unmarshal(value, &s.MaintenanceMode)
	case "sessionTimeoutMinutes":
		var minutes int
		if json.Unmarshal(value, &minutes) == nil && minutes > 0 {
			s.SessionTimeoutMinutes = minutes
		}
	case "currency":
		var currency string
		if json.Unmarshal(value, &currency) == nil && currency != "" {
			s.Currency = currency
		}
	case "language":
		var language string
		if json.Unmarshal(value, &language) == nil && language != "" {
			s.Language = language
		}
	}
}

func validationError(err error) error {
	fields := []goerrors.FieldError{}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		collectLeaves(ve, &fields)
	}
	if len(fields) == 0 {
		fields = append(fields, goerrors.FieldError{Field: "settings", Message: err.Error()})
	}
	return goerrors.NewValidation("settings failed validation", fields...)
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]goerrors.FieldError) {
	if len(ve.Causes) == 0 {
		field := strings.TrimPrefix(ve.InstanceLocation, "/")
		if field == "" {
			field = "settings"
		}
		*out = append(*out, goerrors.FieldError{Field: field, Message: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}
