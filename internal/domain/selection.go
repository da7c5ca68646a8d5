package domain

import "fmt"

// SelectionKind names a per-user recipe collection.
type SelectionKind string

const (
	// SelectionFavorite is the user's favorites list.
	SelectionFavorite SelectionKind = "favorite"
	// SelectionCart is the user's shopping cart.
	SelectionCart SelectionKind = "cart"
)

// Valid reports whether k is one of the known kinds.
func (k SelectionKind) Valid() bool {
	return k == SelectionFavorite || k == SelectionCart
}

// ParseSelectionKind converts a stored value into a SelectionKind.
func ParseSelectionKind(s string) (SelectionKind, error) {
	k := SelectionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown selection kind %q", ErrValidation, s)
	}
	return k, nil
}
