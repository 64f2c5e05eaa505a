package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"builder-platform/internal/domaintheme"
	"builder-platform/internal/store"
	"builder-platform/internal/theme"
)

// FriendlyError carries a stable error code and a message safe to show to
// clients while keeping the underlying cause for logs.
type FriendlyError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *FriendlyError) Error() string {
	return e.Message
}

func (e *FriendlyError) Unwrap() error { return e.Cause }

// persistenceError wraps unexpected repository failures.
func persistenceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrRecordNotFound) || errors.Is(err, store.ErrInvalidRecord) {
		return err
	}
	return &FriendlyError{Code: "PERSISTENCE_FAILED", Message: "record storage is unavailable", Cause: err}
}

func writeMappedErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, theme.ErrUnknownDomain):
		writeErr(w, http.StatusBadRequest, "UNKNOWN_DOMAIN", "domain must be one of automotive, culinary, woodworking, custom")
		return
	case errors.Is(err, theme.ErrUnknownColorScheme):
		writeErr(w, http.StatusBadRequest, "UNKNOWN_SCHEME", "scheme must be one of dark, light, system")
		return
	case errors.Is(err, store.ErrRecordNotFound):
		writeErr(w, http.StatusNotFound, "RECORD_NOT_FOUND", "record could not be found")
		return
	case errors.Is(err, store.ErrInvalidRecord):
		writeErr(w, http.StatusBadRequest, "INVALID_RECORD", err.Error())
		return
	case errors.Is(err, domaintheme.ErrUsedOutsideScope):
		writeErr(w, http.StatusInternalServerError, "SCOPE_MISSING", "theme scope was not initialized for this request")
		return
	}

	var friendly *FriendlyError
	if errors.As(err, &friendly) {
		writeErr(w, http.StatusServiceUnavailable, friendly.Code, friendly.Message)
		return
	}
	writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "builder internal error")
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message, "status": strconv.Itoa(status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
