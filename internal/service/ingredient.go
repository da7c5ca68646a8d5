package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// IngredientService exposes the read-only ingredient catalog.
type IngredientService struct {
	ingredients repo.IngredientRepo
}

// NewIngredientService constructs an IngredientService.
func NewIngredientService(ingredients repo.IngredientRepo) *IngredientService {
	return &IngredientService{ingredients: ingredients}
}

// List returns ingredients whose name starts with prefix, case-insensitively.
// Surrounding whitespace in prefix is ignored; an empty prefix lists all.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	out, err := s.ingredients.List(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.IngredientService.List: %w", err)
	}
	if out == nil {
		return []domain.Ingredient{}, nil
	}
	return out, nil
}

// GetByID returns domain.ErrNotFound if the ingredient does not exist.
func (s *IngredientService) GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error) {
	ing, err := s.ingredients.GetByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("service.IngredientService.GetByID: %w", err)
	}
	return ing, nil
}
