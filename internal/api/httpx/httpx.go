package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tasknest/tasknest-backend/internal/api/validate"
	"github.com/tasknest/tasknest-backend/internal/services"
)

// M is the free-form part of a response envelope.
type M map[string]any

// Success writes {"status":"success","message":...,<data>}.
func Success(w http.ResponseWriter, status int, message string, data M) {
	body := M{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// Error writes {"status":"error","message":...,"errors":...}.
func Error(w http.ResponseWriter, status int, message string, errs any) {
	body := M{"status": "error", "message": message}
	if errs != nil {
		body["errors"] = errs
	}
	writeJSON(w, status, body)
}

// ServiceError maps a service-layer failure onto the wire taxonomy:
// validation 400, authentication 401, permission 403, not found 404.
// failMsg is the operation-specific envelope message.
func ServiceError(w http.ResponseWriter, err error, failMsg string) {
	var (
		fieldErrs validate.Errs
		authErr   *services.AuthenticationError
		lockedErr *services.UsernameLockedError
	)
	switch {
	case errors.As(err, &fieldErrs):
		Error(w, http.StatusBadRequest, failMsg, fieldErrs)
	case errors.As(err, &authErr):
		Error(w, http.StatusUnauthorized, failMsg, authErr.Fields)
	case errors.As(err, &lockedErr):
		Error(w, http.StatusForbidden, failMsg, validate.Errs{{Field: "username", Msg: lockedErr.Error()}})
	case errors.Is(err, services.ErrNotFound):
		Error(w, http.StatusNotFound, failMsg, nil)
	case errors.Is(err, services.ErrInvalidSession):
		Error(w, http.StatusUnauthorized, failMsg, nil)
	default:
		Error(w, http.StatusInternalServerError, "Internal error.", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
