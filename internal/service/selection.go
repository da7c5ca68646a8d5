package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// SelectionService adds recipes to and removes them from a user's favorites
// or shopping cart.
type SelectionService struct {
	recipes    repo.RecipeRepo
	selections repo.SelectionRepo
}

// NewSelectionService constructs a SelectionService.
func NewSelectionService(recipes repo.RecipeRepo, selections repo.SelectionRepo) *SelectionService {
	return &SelectionService{recipes: recipes, selections: selections}
}

// Add selects recipeID for userID under kind and returns the recipe's short form.
// Returns domain.ErrNotFound if the recipe does not exist and
// domain.ErrConflict if it is already selected.
func (s *SelectionService) Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) (domain.RecipeShort, error) {
	if !kind.Valid() {
		return domain.RecipeShort{}, fmt.Errorf("%w: unknown selection kind %q", domain.ErrValidation, kind)
	}
	r, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return domain.RecipeShort{}, fmt.Errorf("service.SelectionService.Add: %w", err)
	}
	if err := s.selections.Add(ctx, userID, recipeID, kind); err != nil {
		return domain.RecipeShort{}, fmt.Errorf("service.SelectionService.Add: %w", err)
	}
	return recipeShort(r), nil
}

// Remove deselects recipeID. Returns domain.ErrNotFound if the recipe does
// not exist and domain.ErrValidation if it was not selected.
func (s *SelectionService) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown selection kind %q", domain.ErrValidation, kind)
	}
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return fmt.Errorf("service.SelectionService.Remove: %w", err)
	}
	if err := s.selections.Remove(ctx, userID, recipeID, kind); err != nil {
		if errIsNotFound(err) {
			return fmt.Errorf("%w: recipe is not in the %s list", domain.ErrValidation, kind)
		}
		return fmt.Errorf("service.SelectionService.Remove: %w", err)
	}
	return nil
}
