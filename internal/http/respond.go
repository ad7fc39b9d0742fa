package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/VitaminP8/forum/internal/apperr"
	"github.com/go-chi/chi/v5"
)

const invalidPassword = "Invalid password."

type message struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type dataBody struct {
	Data interface{} `json:"data"`
}

var errMalformedJSON = errors.New("malformed JSON")

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError turns a service error into its HTTP status and JSON body.
// Unexpected errors are logged and answered with a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody{Message: ve.Error(), Errors: ve.Fields})
		return
	}

	switch {
	case errors.Is(err, errMalformedJSON):
		writeJSON(w, http.StatusBadRequest, message{"Malformed JSON."})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody{
			Message: invalidPassword,
			Errors:  map[string][]string{"credentials": {invalidPassword}},
		})
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, message{"Unauthenticated."})
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, message{"Forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, message{"Not Found"})
	default:
		h.log.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, message{"Server Error"})
	}
}

// decodeJSON reads the request body into dst. An empty body leaves dst zero so
// that missing fields surface as validation errors.
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errMalformedJSON
}

// idParam parses a positive numeric route id; anything else names no resource.
func idParam(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return uint(id), nil
}

// intQuery returns the integer query value, def when absent, and 0 when not a number.
func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
