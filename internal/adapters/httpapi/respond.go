package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/domain/shared"
)

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	Error apiErrorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Error: apiErrorBody{Code: codeForStatus(status), Message: message}})
}

// writeError maps domain errors onto HTTP statuses; anything unexpected is
// logged and reported as a bare 500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeProblem(w, http.StatusBadRequest, err.Error())
	case shared.IsNotFound(err):
		writeProblem(w, http.StatusNotFound, err.Error())
	case shared.IsConflict(err):
		writeProblem(w, http.StatusConflict, err.Error())
	default:
		common.LoggerFromContext(r.Context()).Log("ERROR", "Request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		writeProblem(w, http.StatusInternalServerError, "internal error")
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusTooManyRequests:
		return "too_many_requests"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func playerID(r *http.Request) (shared.PlayerID, error) {
	return shared.ParsePlayerID(r.Header.Get(PlayerHeader))
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError(name, fmt.Sprintf("invalid value %q", raw))
	}
	return id, nil
}

// decode reads a JSON body into dst and validates its struct tags
func (a *api) decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return shared.NewValidationError("body", err.Error())
	}
	if err := a.validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return shared.NewValidationError(f.Field(), fmt.Sprintf("failed %s validation", f.Tag()))
		}
		return shared.NewValidationError("body", err.Error())
	}
	return nil
}
