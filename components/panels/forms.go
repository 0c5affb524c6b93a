package panels

import (
	"net/url"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// ErrorMessage is the user-facing text of an action failure. Validation
// failures list their fields; fetch failures show the backend detail.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if marketplace.IsFetchFailed(err) {
		return marketplace.FetchFailedMessage + ": " + marketplace.Detail(err)
	}
	var gerr *goerrors.Error
	if !goerrors.As(err, &gerr) {
		return err.Error()
	}
	if len(gerr.ValidationErrors) == 0 {
		return gerr.Message
	}
	parts := make([]string, 0, len(gerr.ValidationErrors))
	for _, fe := range gerr.ValidationErrors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return gerr.Message + ": " + strings.Join(parts, "; ")
}

// NoticeURL appends the action outcome to path so the next page load shows it.
func NoticeURL(path, message string, tone status.Tone) string {
	values := url.Values{}
	values.Set(NoticeParam, message)
	values.Set(NoticeToneParam, string(tone))
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + values.Encode()
}

// SettingsFromForm decodes the settings form. Unchecked checkboxes are
// absent from the submission and read as false.
func SettingsFromForm(values url.Values) (settings.Settings, error) {
	out := settings.Defaults()
	out.EmailNotifications = checked(values, "emailNotifications")
	out.SMSNotifications = checked(values, "smsNotifications")
	out.OrderAlerts = checked(values, "orderAlerts")
	out.LowStockAlerts = checked(values, "lowStockAlerts")
	out.MarketingEmails = checked(values, "marketingEmails")
	out.TwoFactorAuth = checked(values, "twoFactorAuth")
	out.MaintenanceMode = checked(values, "maintenanceMode")
	if raw := strings.TrimSpace(values.Get("sessionTimeoutMinutes")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return settings.Settings{}, goerrors.NewValidation("invalid settings",
				goerrors.FieldError{Field: "sessionTimeoutMinutes", Message: "must be a whole number", Value: raw})
		}
		out.SessionTimeoutMinutes = minutes
	}
	if raw := strings.TrimSpace(values.Get("currency")); raw != "" {
		out.Currency = strings.ToUpper(raw)
	}
	if raw := strings.TrimSpace(values.Get("language")); raw != "" {
		out.Language = raw
	}
	return out, nil
}

func checked(values url.Values, name string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(name))) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// FormValues flattens a submission to the first value per field, trimmed.
func FormValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = strings.TrimSpace(vals[0])
		}
	}
	return out
}

// ErrorPayload is the JSON body transports send for a failed request.
func ErrorPayload(err error) map[string]any {
	payload := map[string]any{"error": ErrorMessage(err)}
	var gerr *goerrors.Error
	if goerrors.As(err, &gerr) {
		payload["category"] = string(gerr.Category)
		if len(gerr.ValidationErrors) > 0 {
			payload["fields"] = gerr.ValidationErrors
		}
	}
	return payload
}
