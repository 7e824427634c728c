package querybase

import (
	"net/http"

	"github.com/dracory/api"
)

// WriteSuccessWithData writes a success envelope with message and data.
func WriteSuccessWithData(w http.ResponseWriter, r *http.Request, msg string, data map[string]any) {
	api.Respond(w, r, api.SuccessWithData(msg, data))
}

// WriteError writes an error envelope with an explicit status code.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	api.RespondWithStatusCode(w, r, api.Error(msg), status)
}
