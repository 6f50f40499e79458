package api

import (
	"context"
	"errors"
	"net/http"

	"go_ngxmgr/internal/cert"
	"go_ngxmgr/internal/composer"
	"go_ngxmgr/internal/httpx"
	"go_ngxmgr/internal/nginx"
	"go_ngxmgr/internal/service"
	"go_ngxmgr/internal/store"
	"go_ngxmgr/internal/validator"
)

// toAppError maps package errors onto the API taxonomy
func toAppError(err error) *httpx.AppError {
	var (
		appErr     *httpx.AppError
		compErr    *composer.CompositionError
		rejected   *nginx.RejectedError
		reloadErr  *service.ReloadError
		certErr    *cert.ValidationError
		valueErr   *validator.Error
		persistErr *cert.PersistError
	)

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &compErr):
		return httpx.ErrCompositionError(compErr.Error(), err)
	case errors.As(err, &rejected):
		return httpx.ErrConfigRejected(rejected.Diagnostics, err)
	case errors.As(err, &reloadErr):
		return httpx.ErrExternalError("configuration activated but nginx reload failed", err)
	case errors.As(err, &certErr):
		return httpx.ErrParamInvalid(certErr.Error())
	case errors.As(err, &valueErr):
		return httpx.ErrParamInvalid(valueErr.Error())
	case errors.As(err, &persistErr):
		return httpx.ErrFilesystemError("failed to write certificate files", err)
	case errors.Is(err, store.ErrNotFound):
		return httpx.ErrNotFound("")
	case errors.Is(err, service.ErrStore):
		return httpx.ErrDatabaseError("", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nginx.ErrLaneClosed):
		return httpx.NewAppError(http.StatusServiceUnavailable, httpx.CodeUnavailable, "service unavailable", err)
	default:
		return httpx.ErrInternalError("", err)
	}
}
