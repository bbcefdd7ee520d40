package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/panaderiapro/panaderiapro/internal/shared"
)

// DateLayout is the calendar-date format used in paths and query strings.
const DateLayout = "2006-01-02"

// Bind decodes the JSON body into dst and validates its struct tags.
func Bind(r *http.Request, validate *validator.Validate, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return shared.Validation("body", "invalid JSON: "+err.Error())
	}
	if validate == nil {
		return nil
	}
	return validate.Struct(dst)
}

// PathID parses a positive int64 URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, shared.Validation(name, "must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// QueryInt parses an optional integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.Validation(name, "must be an integer")
	}
	return v, nil
}

// QueryID parses an optional positive int64 query parameter.
func QueryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, shared.Validation(name, "must be a positive integer")
	}
	return &id, nil
}
