package domain

import "github.com/google/uuid"

// Tag is a label operators attach to recipes (breakfast, dinner, ...).
// Tags are created out of band; the API only reads them.
// Color is a "#RRGGBB" hex string.
type Tag struct {
	ID    uuid.UUID
	Name  string
	Color string
	Slug  string
}
