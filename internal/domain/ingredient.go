package domain

import "github.com/google/uuid"

// Ingredient is an immutable catalog entry.
type Ingredient struct {
	ID              uuid.UUID
	Name            string
	MeasurementUnit string
}

// IngredientAmount is one association of a recipe with an ingredient.
// Name and MeasurementUnit are denormalized from the catalog on read.
type IngredientAmount struct {
	IngredientID    uuid.UUID
	Name            string
	MeasurementUnit string
	Amount          int
}

// RecipeIngredients is the ordered association list of a single recipe,
// the unit of input to shopping-list aggregation.
type RecipeIngredients struct {
	RecipeID    uuid.UUID
	Ingredients []IngredientAmount
}
