package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/pebbling/spaarpot/internal/imaging"
	"github.com/pebbling/spaarpot/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// errorStatus maps a core error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrAlreadyResolved),
		errors.Is(err, model.ErrDuplicateTransactionID):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientInventory),
		errors.Is(err, model.ErrInsufficientCredit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, imaging.ErrUnsupportedFormat):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error. Rejected operations report their
// own message; anything else is logged and reported as msg.
func writeError(w http.ResponseWriter, err error, msg string) {
	if !model.IsClientError(err) && !errors.Is(err, imaging.ErrUnsupportedFormat) {
		slog.Error(msg, "error", err)
		jsonError(w, http.StatusInternalServerError, msg)
		return
	}
	jsonError(w, errorStatus(err), err.Error())
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
