package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"pankti/internal/auth"
	applog "pankti/internal/log"
	"pankti/internal/ports"
	"pankti/internal/records"
	"pankti/internal/services"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var errBadQuery = errors.New("invalid query parameter")

type errorBody struct {
	Error  string               `json:"error"`
	Fields []records.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Unexpected errors are logged and
// reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *records.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "invalid request", Fields: verr.Fields})
	case errors.Is(err, records.ErrMalformed), errors.Is(err, errBadQuery):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, services.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	case errors.Is(err, ports.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, auth.ErrInvalidPIN):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid pin"})
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decode reads a size-limited JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return records.Decode(r.Body, dst)
}

func handleUnauthorized(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
}

func handleRateLimited(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
}
