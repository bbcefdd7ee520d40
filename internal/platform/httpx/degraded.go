package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// DegradedRecorder counts reads that fell back to an empty result.
type DegradedRecorder interface {
	DegradedRead(resource string)
}

// ReadFailed answers a failed read. Caller mistakes and a missing store
// configuration are reported as errors; store failures are logged and
// answered with the degraded envelope so the dashboard stays usable.
func ReadFailed(w http.ResponseWriter, logger *slog.Logger, metrics DegradedRecorder, resource string, err error) {
	ReadFailedWith(w, logger, metrics, resource, err, []any{})
}

// ReadFailedWith is ReadFailed with a caller-chosen empty payload.
func ReadFailedWith(w http.ResponseWriter, logger *slog.Logger, metrics DegradedRecorder, resource string, err error, empty any) {
	if errors.Is(err, shared.ErrValidation) || errors.Is(err, shared.ErrNotConfigured) || errors.Is(err, shared.ErrNotFound) {
		RespondError(w, err)
		return
	}
	if logger != nil {
		logger.Warn("read degraded", slog.String("resource", resource), slog.Any("error", err))
	}
	if metrics != nil {
		metrics.DegradedRead(resource)
	}
	DegradedWith(w, err, empty)
}
