// Package domain contains the core data types for the Foodgram API.
// This package depends only on uuid and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the service layer.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is a User as seen by a particular viewer.
// IsSubscribed is false for anonymous viewers.
type Profile struct {
	User
	IsSubscribed bool
}

// Subscription is an author the viewer follows, together with a preview of
// the author's newest recipes and the total number of recipes they own.
type Subscription struct {
	Profile
	Recipes      []RecipeShort
	RecipesCount int
}

// Registration is the input of a sign-up request. Password is plain text
// and is hashed by the service before anything is stored.
type Registration struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}
