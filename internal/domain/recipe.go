package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bounds enforced on recipe input.
const (
	MinCookingTime = 1
	MaxCookingTime = 1000
	MinAmount      = 1
	MaxAmount      = 300
)

// Recipe is the persisted recipe row plus its associations.
// Ingredients keep insertion order; Tags are ordered by slug.
type Recipe struct {
	ID          uuid.UUID
	AuthorID    uuid.UUID
	Name        string
	Text        string
	CookingTime int
	Image       string // media-relative path, empty when unset
	Ingredients []IngredientAmount
	Tags        []Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeDetail is a Recipe as seen by a particular viewer.
type RecipeDetail struct {
	Recipe
	Author           Profile
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeShort is the compact form returned by selection and subscription
// endpoints.
type RecipeShort struct {
	ID          uuid.UUID
	Name        string
	Image       string
	CookingTime int
}

// RecipeInput carries a create or update request from the handler to the
// service. Image is a base64 data URI; on update an empty Image keeps the
// stored one. Ingredients and Tags are nil on update when not supplied.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	Image       string
	Ingredients []IngredientInput
	Tags        []uuid.UUID
}

// IngredientInput is one {id, amount} pair of a RecipeInput.
type IngredientInput struct {
	ID     uuid.UUID
	Amount int
}

// RecipeFilter narrows a recipe listing. ViewerID is required for the
// IsFavorited and IsInShoppingCart flags; they are ignored when it is nil.
type RecipeFilter struct {
	TagSlugs         []string
	AuthorID         *uuid.UUID
	ViewerID         *uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
}
