package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, amount out of range).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness rule:
// a recipe already in favorites, a duplicate subscription, a taken email.
// Handlers should map this to HTTP 400.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when credentials or a token are missing or wrong.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated user acts on a resource
// they do not own (e.g. editing another author's recipe).
var ErrForbidden = errors.New("forbidden")
