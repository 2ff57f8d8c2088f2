package handlers

import (
	"errors"

	"invoicedesk/internal/common"
	"invoicedesk/internal/services"
	"invoicedesk/internal/session"
	"invoicedesk/internal/snapshot"
	"invoicedesk/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// respondError maps service and store errors onto the standard error bodies
func respondError(c echo.Context, err error, operation string) error {
	if v, ok := services.AsValidationError(err); ok {
		return common.SendValidationError(c, v.Field, v.Message)
	}

	switch {
	case errors.Is(err, services.ErrInvoiceNotFound):
		return common.SendNotFoundError(c, "invoice")
	case errors.Is(err, services.ErrAdminRequired):
		return common.SendForbiddenError(c, "Only administrators can provision a business for another user")
	case errors.Is(err, snapshot.ErrUnknownTemplate):
		return common.SendValidationError(c, "template", err.Error())
	case errors.Is(err, store.ErrStaleInvoice):
		return common.SendConflictError(c, "Invoice was changed by another request, reload and retry")
	case store.IsRetryable(err):
		zerolog.Ctx(c.Request().Context()).Warn().Err(err).Str("operation", operation).Msg("retryable failure")
		return common.SendRetryableError(c, "Failed to "+operation+", no changes were saved")
	}

	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("operation", operation).Msg("request failed")
	return common.SendServerError(c, common.SecureErrorMessage(operation, err).Error())
}

func requireSession(c echo.Context) (*session.State, bool) {
	return session.FromContext(c.Request().Context())
}
