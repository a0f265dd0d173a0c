// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: a
// validation failure is the caller's fault and never retried, a
// not-found means the target id is unknown or already deleted, and
// ErrForbidden means the row exists but belongs to someone else.
// Transient storage failures are not modelled here; handlers classify
// those with database.IsTransient.
package repository

import "errors"

// ErrValidation is returned when input is malformed: an empty field
// name, an unrecognized category or field type. Handlers should
// translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrFieldNotFound is returned when a custom field lookup yields no rows.
var ErrFieldNotFound = errors.New("field not found")

// ErrRecordNotFound is returned when a record lookup yields no rows.
var ErrRecordNotFound = errors.New("record not found")

// ErrUserNotFound is returned when a user lookup yields no rows.
var ErrUserNotFound = errors.New("user not found")

// ErrForecastNotFound is returned when a forecast lookup yields no rows.
var ErrForecastNotFound = errors.New("forecast not found")

// ErrEmailExists is returned when registering with an email that is
// already taken.
var ErrEmailExists = errors.New("email already exists")
