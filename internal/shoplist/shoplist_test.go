package shoplist_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/shoplist"
)

// ---- fixtures --------------------------------------------------------------

var (
	salt  = domain.Ingredient{ID: uuid.New(), Name: "salt", MeasurementUnit: "g"}
	flour = domain.Ingredient{ID: uuid.New(), Name: "flour", MeasurementUnit: "g"}
	sugar = domain.Ingredient{ID: uuid.New(), Name: "sugar", MeasurementUnit: "g"}
)

func use(i domain.Ingredient, amount int) domain.IngredientAmount {
	return domain.IngredientAmount{
		IngredientID:    i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
		Amount:          amount,
	}
}

func recipe(items ...domain.IngredientAmount) domain.RecipeIngredients {
	return domain.RecipeIngredients{RecipeID: uuid.New(), Ingredients: items}
}

// recipeA and recipeB are the salt/flour/sugar pair used throughout.
func recipeA() domain.RecipeIngredients { return recipe(use(salt, 5), use(flour, 200)) }
func recipeB() domain.RecipeIngredients { return recipe(use(salt, 3), use(sugar, 50)) }

func amounts(l shoplist.List) map[uuid.UUID]int {
	out := map[uuid.UUID]int{}
	for _, it := range l.Items() {
		out[it.IngredientID] = it.Amount
	}
	return out
}

// ---- Aggregate -------------------------------------------------------------

func TestAggregate_Empty(t *testing.T) {
	got := shoplist.Aggregate(nil)

	assert.Equal(t, 0, got.Len())
	assert.NotNil(t, got.Items())
	assert.Empty(t, got.Items())
	assert.Empty(t, got.UnitConflicts)
}

func TestAggregate_SumsSharedIngredient(t *testing.T) {
	got := shoplist.Aggregate([]domain.RecipeIngredients{recipeA(), recipeB()})

	require.Equal(t, 3, got.Len())
	assert.Equal(t, map[uuid.UUID]int{salt.ID: 8, flour.ID: 200, sugar.ID: 50}, amounts(got))

	it, ok := got.Get(salt.ID)
	require.True(t, ok)
	assert.Equal(t, "salt", it.Name)
	assert.Equal(t, "g", it.MeasurementUnit)
	assert.Equal(t, 8, it.Amount)
}

func TestAggregate_DistinctIngredientsExactlyOnce(t *testing.T) {
	recipes := []domain.RecipeIngredients{recipeA(), recipeB(), recipeA()}

	got := shoplist.Aggregate(recipes)

	seen := map[uuid.UUID]bool{}
	for _, r := range recipes {
		for _, ia := range r.Ingredients {
			seen[ia.IngredientID] = true
		}
	}
	assert.Equal(t, len(seen), got.Len())
	for id := range seen {
		_, ok := got.Get(id)
		assert.True(t, ok, "ingredient %s missing", id)
	}
	// Same recipe selected twice still contributes twice.
	assert.Equal(t, 13, amounts(got)[salt.ID])
	assert.Equal(t, 400, amounts(got)[flour.ID])
}

func TestAggregate_OrderIndependentTotals(t *testing.T) {
	a, b := recipeA(), recipeB()

	ab := shoplist.Aggregate([]domain.RecipeIngredients{a, b})
	ba := shoplist.Aggregate([]domain.RecipeIngredients{b, a})

	assert.Equal(t, amounts(ab), amounts(ba))
	assert.Equal(t, ab.Items(), ba.Items())
}

func TestAggregate_RecipeWithoutIngredients(t *testing.T) {
	got := shoplist.Aggregate([]domain.RecipeIngredients{recipe(), recipeA(), recipe()})

	assert.Equal(t, 2, got.Len())
	assert.Equal(t, map[uuid.UUID]int{salt.ID: 5, flour.ID: 200}, amounts(got))
}

func TestAggregate_UnitConflictKeepsFirstSeen(t *testing.T) {
	inKg := use(flour, 1)
	inKg.MeasurementUnit = "kg"
	first := recipe(use(flour, 200))
	second := recipe(inKg)

	got := shoplist.Aggregate([]domain.RecipeIngredients{first, second})

	it, ok := got.Get(flour.ID)
	require.True(t, ok)
	assert.Equal(t, "g", it.MeasurementUnit)
	assert.Equal(t, 201, it.Amount)

	require.Len(t, got.UnitConflicts, 1)
	c := got.UnitConflicts[0]
	assert.Equal(t, flour.ID, c.IngredientID)
	assert.Equal(t, second.RecipeID, c.RecipeID)
	assert.Equal(t, "g", c.Kept)
	assert.Equal(t, "kg", c.Seen)
	assert.Equal(t, 1, c.Amount)
}

func TestAggregate_SameNameDifferentIngredients(t *testing.T) {
	// Two catalog entries share a name but not a unit; they stay separate.
	milkL := domain.Ingredient{ID: uuid.New(), Name: "milk", MeasurementUnit: "l"}
	milkMl := domain.Ingredient{ID: uuid.New(), Name: "milk", MeasurementUnit: "ml"}

	got := shoplist.Aggregate([]domain.RecipeIngredients{recipe(use(milkMl, 250), use(milkL, 1))})

	require.Equal(t, 2, got.Len())
	items := got.Items()
	assert.Equal(t, "l", items[0].MeasurementUnit)
	assert.Equal(t, "ml", items[1].MeasurementUnit)
	assert.Empty(t, got.UnitConflicts)
}

func TestList_ZeroValue(t *testing.T) {
	var l shoplist.List

	_, ok := l.Get(uuid.New())
	assert.False(t, ok)
	assert.Equal(t, shoplist.Header+"\n", shoplist.Render(l))
}
