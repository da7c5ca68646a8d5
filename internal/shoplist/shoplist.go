// Package shoplist merges the ingredient lists of several recipes into one
// shopping list and renders it for download.
//
// Aggregation is pure: callers resolve recipes and their associations from
// storage first, then hand the result to Aggregate.
package shoplist

import (
	"sort"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// Item is one line of a shopping list: an ingredient and the total amount
// needed across every recipe that referenced it.
type Item struct {
	IngredientID    uuid.UUID
	Name            string
	MeasurementUnit string
	Amount          int
}

// UnitConflict records an ingredient seen with a unit different from the
// one already stored for it. The first-seen unit is kept; Amount was still
// added to the total.
type UnitConflict struct {
	IngredientID uuid.UUID
	RecipeID     uuid.UUID
	Kept         string
	Seen         string
	Amount       int
}

// List is the result of Aggregate. The zero value is an empty list.
type List struct {
	items         map[uuid.UUID]*Item
	order         []uuid.UUID
	UnitConflicts []UnitConflict
}

// Aggregate sums ingredient amounts across recipes, keyed by ingredient id.
// Recipes are processed in order; within a recipe, associations are
// processed in order. The unit of measure is taken from the first
// occurrence of each ingredient.
func Aggregate(recipes []domain.RecipeIngredients) List {
	l := List{items: make(map[uuid.UUID]*Item)}
	for _, r := range recipes {
		for _, ia := range r.Ingredients {
			l.add(r.RecipeID, ia)
		}
	}
	return l
}

func (l *List) add(recipeID uuid.UUID, ia domain.IngredientAmount) {
	if it, ok := l.items[ia.IngredientID]; ok {
		it.Amount += ia.Amount
		if ia.MeasurementUnit != it.MeasurementUnit {
			l.UnitConflicts = append(l.UnitConflicts, UnitConflict{
				IngredientID: ia.IngredientID,
				RecipeID:     recipeID,
				Kept:         it.MeasurementUnit,
				Seen:         ia.MeasurementUnit,
				Amount:       ia.Amount,
			})
		}
		return
	}
	l.items[ia.IngredientID] = &Item{
		IngredientID:    ia.IngredientID,
		Name:            ia.Name,
		MeasurementUnit: ia.MeasurementUnit,
		Amount:          ia.Amount,
	}
	l.order = append(l.order, ia.IngredientID)
}

// Len returns the number of distinct ingredients in the list.
func (l List) Len() int {
	return len(l.order)
}

// Get returns the aggregated item for an ingredient id.
func (l List) Get(id uuid.UUID) (Item, bool) {
	it, ok := l.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// Items returns the list sorted by name, then unit, then ingredient id.
// The returned slice is a copy and never nil.
func (l List) Items() []Item {
	out := make([]Item, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.items[id])
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.MeasurementUnit != b.MeasurementUnit {
			return a.MeasurementUnit < b.MeasurementUnit
		}
		return a.IngredientID.String() < b.IngredientID.String()
	})
	return out
}
