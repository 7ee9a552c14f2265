// Package service implements the Foodgram use cases on top of the store.
//
// Every exported method takes the acting user as a domain.Actor resolved by
// the API layer. Services return coded errors from internal/errors; store
// sentinels never escape untranslated.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/foodgramapp/foodgram-server/internal/domain"
	domainerrors "github.com/foodgramapp/foodgram-server/internal/errors"
	"github.com/foodgramapp/foodgram-server/internal/store"
	"github.com/foodgramapp/foodgram-server/internal/validation"
)

// validate is the shared request validator.
var validate = validation.New()

// orDiscard returns logger, or a logger that drops everything if nil.
func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// requireAuthenticated rejects anonymous actors.
func requireAuthenticated(actor domain.Actor) error {
	if !actor.Authenticated {
		return domainerrors.Unauthorized("authentication required")
	}
	return nil
}

// requireAdmin rejects actors without administrative rights.
func requireAdmin(actor domain.Actor) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.Admin {
		return domainerrors.Forbidden("admin access required")
	}
	return nil
}

// translateStoreErr maps store sentinels onto domain errors. what names the
// resource in the message ("recipe", "tag"). Other errors are wrapped as-is
// and surface as INTERNAL.
func translateStoreErr(err error, what string) error {
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		return fmt.Errorf("%s: %w", what, err)
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Conflictf("%s already exists", what).WithCause(err)
	case errors.Is(err, store.ErrInvalidReference):
		return domainerrors.NotFound("referenced object not found").WithCause(err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

// validationDetails returns the field map of a validation error, or a fresh
// map when err is nil. Any other error is returned unchanged.
func validationDetails(err error) (map[string]string, error) {
	if err == nil {
		return map[string]string{}, nil
	}
	var domErr *domainerrors.Error
	if errors.As(err, &domErr) && domErr.Code == domainerrors.CodeValidation {
		if fields, ok := domErr.Details.(map[string]string); ok {
			return fields, nil
		}
	}
	return nil, err
}
