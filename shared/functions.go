package shared

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dracory/api"

	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/store"
)

// RespondError writes an error envelope with an explicit status code.
func RespondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	api.RespondWithStatusCode(w, r, api.Error(msg), status)
}

// RespondErr maps err to a status code and writes it as an error envelope.
func RespondErr(w http.ResponseWriter, r *http.Request, err error) {
	RespondError(w, r, ErrorStatus(err), err.Error())
}

// ErrorStatus maps package sentinels to HTTP status codes.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalid), errors.Is(err, driver.ErrUnsupportedBackend):
		return http.StatusBadRequest
	case errors.Is(err, driver.ErrConnect), errors.Is(err, driver.ErrQuery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RequireMethod writes 405 and returns false unless r uses method.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	RespondError(w, r, http.StatusMethodNotAllowed, "method not allowed, use "+method)
	return false
}

// FormUint parses a required positive id.
func FormUint(r *http.Request, key string) (uint, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return uint(n), nil
}

// FormUintOptional parses an optional id; blank means zero.
func FormUintOptional(r *http.Request, key string) (uint, error) {
	if strings.TrimSpace(r.FormValue(key)) == "" {
		return 0, nil
	}
	return FormUint(r, key)
}

// FormInt parses an integer, falling back to def when blank or malformed.
func FormInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil {
		return def
	}
	return n
}

// FormUints parses a comma separated list of ids.
func FormUints(r *http.Request, key string) ([]uint, error) {
	var out []uint
	for _, part := range SplitCSV(r.FormValue(key)) {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%s: invalid id %q", key, part)
		}
		out = append(out, uint(n))
	}
	return out, nil
}

// SplitCSV splits by comma and trims spaces; ignores empty items.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
