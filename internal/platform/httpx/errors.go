package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var (
		partial       *shared.PartialWriteError
		notConfigured *shared.NotConfiguredError
		fieldErrs     validator.ValidationErrors
	)
	switch {
	case errors.As(err, &fieldErrs):
		problem := ProblemDetail{Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Detail: err.Error()}
		problem.Errors = make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			problem.Errors[fe.Field()] = fe.Tag()
		}
		JSON(w, problem.Status, problem)
	case errors.As(err, &partial):
		JSON(w, http.StatusConflict, ProblemDetail{
			Type:             "partial-write",
			Title:            "Partial Write",
			Status:           http.StatusConflict,
			Detail:           err.Error(),
			ParentID:         partial.ParentID,
			ReconciliationID: partial.ReconciliationID.String(),
		})
	case errors.As(err, &notConfigured):
		JSON(w, http.StatusServiceUnavailable, ProblemDetail{
			Type:    "setup-required",
			Title:   "Setup Required",
			Status:  http.StatusServiceUnavailable,
			Detail:  err.Error(),
			Missing: notConfigured.Missing,
		})
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrPersistence):
		Problem(w, http.StatusBadGateway, "Store Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
