// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrNotFound is returned when a row scoped to the caller does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is already
// taken. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
