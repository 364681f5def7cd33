package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/verte-zerg/typechallenge/internal/apperr"
	"github.com/verte-zerg/typechallenge/internal/auth"
	"github.com/verte-zerg/typechallenge/internal/levels"
	"github.com/verte-zerg/typechallenge/internal/logger"
	"github.com/verte-zerg/typechallenge/internal/store"
)

const maxBodyBytes = 1 << 20

// toAppError maps domain errors onto the HTTP taxonomy.
func toAppError(err error) *apperr.AppError {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		e := apperr.BadRequest(err.Error())
		e.Err = err
		return e
	case errors.Is(err, auth.ErrEmailTaken):
		return apperr.Conflict("Email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperr.Unauthorized("Invalid credentials")
	case errors.Is(err, store.ErrUserNotFound):
		return &apperr.AppError{Code: apperr.CodeNotFound, Message: "User not found", Status: http.StatusNotFound}
	case errors.Is(err, levels.ErrUnknownLevel):
		e := apperr.Validation("level", err.Error())
		e.Err = err
		return e
	default:
		return apperr.Internal(err)
	}
}

// handleError writes err as {"error":{"code","message"}}.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := toAppError(err)

	switch {
	case appErr.Status >= 500:
		log.Error("server error", slog.Any("error", appErr))
	case appErr.Status >= 400:
		log.Warn("client error", slog.Any("error", appErr))
	default:
		log.Debug("error", slog.Any("error", appErr))
	}

	writeJSON(w, appErr.Status, map[string]any{
		"error": map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort body write after the header is committed.
		_ = err
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is empty")
		}
		return apperr.BadRequest("invalid JSON body")
	}
	return nil
}
