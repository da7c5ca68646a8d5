package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
	"github.com/pkordes/foodgram/backend/internal/shoplist"
)

// ShoppingListService builds the aggregated shopping list of a user's
// favorites or cart. Each call owns its accumulator; nothing is cached.
type ShoppingListService struct {
	users      repo.UserRepo
	selections repo.SelectionRepo
	recipes    repo.RecipeRepo
	log        *slog.Logger
}

// NewShoppingListService constructs a ShoppingListService.
func NewShoppingListService(users repo.UserRepo, selections repo.SelectionRepo, recipes repo.RecipeRepo, log *slog.Logger) *ShoppingListService {
	return &ShoppingListService{users: users, selections: selections, recipes: recipes, log: log}
}

// Build resolves the recipes userID selected under kind and aggregates their
// ingredients. An empty selection yields an empty list, not an error.
// Returns domain.ErrNotFound if the user does not exist.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) (shoplist.List, error) {
	recipeIDs, err := s.resolve(ctx, userID, kind)
	if err != nil {
		return shoplist.List{}, fmt.Errorf("service.ShoppingListService.Build: %w", err)
	}

	batches := make([]domain.RecipeIngredients, 0, len(recipeIDs))
	for _, id := range recipeIDs {
		items, err := s.recipes.ListIngredients(ctx, id)
		if err != nil {
			// Deleted after the selection was read; its selection rows are gone too.
			if errIsNotFound(err) {
				s.log.DebugContext(ctx, "selected recipe vanished", "recipe_id", id)
				continue
			}
			return shoplist.List{}, fmt.Errorf("service.ShoppingListService.Build: %w", err)
		}
		batches = append(batches, domain.RecipeIngredients{RecipeID: id, Ingredients: items})
	}

	list := shoplist.Aggregate(batches)
	for _, c := range list.UnitConflicts {
		s.log.WarnContext(ctx, "shopping list unit conflict",
			"user_id", userID,
			"kind", string(kind),
			"ingredient_id", c.IngredientID,
			"recipe_id", c.RecipeID,
			"kept_unit", c.Kept,
			"seen_unit", c.Seen,
			"amount", c.Amount,
		)
	}
	return list, nil
}

// resolve returns the recipes of the (user, kind) selection set in
// selection order.
func (s *ShoppingListService) resolve(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) ([]uuid.UUID, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown selection kind %q", domain.ErrValidation, kind)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.selections.ListRecipeIDs(ctx, userID, kind)
}
