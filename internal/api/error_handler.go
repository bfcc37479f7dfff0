package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrTaskGroupNotFound),
		errors.Is(err, domain.ErrDriverNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"

	case errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrUnknownPriority),
		errors.Is(err, domain.ErrNoPackages),
		errors.Is(err, domain.ErrPackageTooLarge):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidConfirmationCode),
		errors.Is(err, domain.ErrMissingDeliveryEvidence),
		errors.Is(err, domain.ErrDriverIneligible),
		errors.Is(err, domain.ErrNoZoneCoverage),
		errors.Is(err, domain.ErrNoPriceBandForDistance),
		errors.Is(err, domain.ErrDistanceTooLong):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrAlreadyGrouped),
		errors.Is(err, domain.ErrGroupAlreadyAssigned),
		errors.Is(err, domain.ErrGroupUnassigned),
		errors.Is(err, domain.ErrCannotUnassignInProgress),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrDriverExists):
		return http.StatusConflict, err.Error()

	case errors.Is(err, domain.ErrRoutingUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
