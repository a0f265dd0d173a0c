package handler // handler contains the HTTP handlers for the API

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jmwangi/casetrack/internal/database"
	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

// getUserID extracts the authenticated user id stored in the context by
// the JWT middleware. The raw claim arrives as float64 (json number) or
// string depending on how the token was minted.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	case uint64:
		return v, nil
	default:
		return 0, fmt.Errorf("no user id in context")
	}
}

// isAdmin reports whether the authenticated request carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == model.RoleAdmin
}

// storageCtx bounds one storage call with a per-call deadline so a
// wedged connection surfaces as a transient failure instead of hanging
// the request.
func storageCtx(c echo.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), timeout)
}

// fail maps repository errors onto HTTP responses. Validation and
// not-found failures carry their message; transient storage failures
// get a generic retry hint so internals never leak.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrFieldNotFound),
		errors.Is(err, repository.ErrRecordNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrForecastNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case database.IsTransient(err):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary storage problem, try again"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
