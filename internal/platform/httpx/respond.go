// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type             string            `json:"type,omitempty"`
	Title            string            `json:"title"`
	Status           int               `json:"status"`
	Detail           string            `json:"detail,omitempty"`
	Errors           map[string]string `json:"errors,omitempty"`
	ParentID         int64             `json:"parent_id,omitempty"`
	ReconciliationID string            `json:"reconciliation_id,omitempty"`
	Missing          []string          `json:"missing,omitempty"`
}

// Envelope wraps every successful API payload.
type Envelope struct {
	Data     any    `json:"data"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Data sends payload wrapped in an Envelope.
func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, Envelope{Data: payload})
}

// Degraded answers a failed read with 200, an empty list and the error text so
// the dashboard keeps rendering.
func Degraded(w http.ResponseWriter, err error) {
	DegradedWith(w, err, []any{})
}

// DegradedWith is Degraded for reads whose payload is not a list.
func DegradedWith(w http.ResponseWriter, err error, empty any) {
	JSON(w, http.StatusOK, Envelope{Data: empty, Degraded: true, Error: err.Error()})
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
