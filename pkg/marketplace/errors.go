package marketplace

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// FetchFailedMessage is the generic message shown in place of a list when a
// call to the backend fails.
const FetchFailedMessage = "fetch failed"

const (
	textCodeFetchFailed   = "FETCH_FAILED"
	textCodeWriteRejected = "WRITE_REJECTED"
	metaStatus            = "status"
	metaDetail            = "detail"
	metaPath              = "path"
)

func fetchFailed(source error, path string) error {
	return goerrors.WrapRetryable(source, goerrors.CategoryExternal, FetchFailedMessage).
		WithTextCode(textCodeFetchFailed).
		WithMetadata(map[string]any{metaPath: path})
}

// remoteFailed keeps the backend message as detail. Callers do not tell 4xx
// apart from 5xx.
func remoteFailed(code int, path, detail string) error {
	if detail == "" {
		detail = http.StatusText(code)
	}
	return goerrors.NewRetryable(FetchFailedMessage, goerrors.CategoryExternal).
		WithCode(code).
		WithTextCode(textCodeFetchFailed).
		WithMetadata(map[string]any{metaStatus: code, metaDetail: detail, metaPath: path})
}

func writeRejected(path, message string) error {
	if message == "" {
		message = "request was not accepted"
	}
	return goerrors.New(message, goerrors.CategoryOperation).
		WithTextCode(textCodeWriteRejected).
		WithMetadata(map[string]any{metaPath: path})
}

// IsFetchFailed reports whether err came from a failed backend round trip.
func IsFetchFailed(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryExternal)
}

// Detail returns the backend supplied message for display, falling back to
// the error message itself.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var retryable *goerrors.RetryableError
	if goerrors.As(err, &retryable) && retryable.BaseError != nil {
		if detail, ok := retryable.BaseError.Metadata[metaDetail].(string); ok && detail != "" {
			return detail
		}
		return retryable.BaseError.Message
	}
	var base *goerrors.Error
	if goerrors.As(err, &base) {
		if detail, ok := base.Metadata[metaDetail].(string); ok && detail != "" {
			return detail
		}
		return base.Message
	}
	return err.Error()
}
