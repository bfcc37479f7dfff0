package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/swiftdrop/dispatch/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - driver role requires a non-empty driver_id; a driver token
//     without one cannot act on any task, so reject with 401.
func ctxClaims(c echo.Context) (role, userID, driverID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ = c.Get("user_id").(string)
	driverID, _ = c.Get("driver_id").(string)
	if role == domain.RoleDriver && driverID == "" {
		return "", "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing driver identity")
	}

	return role, userID, driverID, nil
}
