package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

const maxRecipeNameLen = 200

// ImageStore persists uploaded recipe images. *media.Store satisfies it.
type ImageStore interface {
	SaveBase64(ctx context.Context, dataURI string) (string, error)
	Remove(ctx context.Context, rel string) error
}

// RecipeDeps groups the collaborators of a RecipeService.
type RecipeDeps struct {
	Recipes     repo.RecipeRepo
	Ingredients repo.IngredientRepo
	Tags        repo.TagRepo
	Users       repo.UserRepo
	Follows     repo.FollowRepo
	Selections  repo.SelectionRepo
	Images      ImageStore
	Log         *slog.Logger
}

// RecipeService implements recipe CRUD and assembles the viewer-specific
// detail (author profile, favorite and cart flags) of every recipe it returns.
type RecipeService struct {
	recipes     repo.RecipeRepo
	ingredients repo.IngredientRepo
	tags        repo.TagRepo
	users       repo.UserRepo
	follows     repo.FollowRepo
	selections  repo.SelectionRepo
	images      ImageStore
	log         *slog.Logger
}

// NewRecipeService constructs a RecipeService.
func NewRecipeService(d RecipeDeps) *RecipeService {
	return &RecipeService{
		recipes:     d.Recipes,
		ingredients: d.Ingredients,
		tags:        d.Tags,
		users:       d.Users,
		follows:     d.Follows,
		selections:  d.Selections,
		images:      d.Images,
		log:         d.Log,
	}
}

// Create validates in, stores its image and persists the recipe for authorID.
// Returns domain.ErrValidation for invalid input or unknown ingredient/tag
// ids and domain.ErrConflict if the author already has a recipe with that name.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error) {
	in = normalizeRecipeInput(in)
	if err := validateRecipeInput(in, true); err != nil {
		return domain.RecipeDetail{}, err
	}
	tags, err := s.resolveCatalog(ctx, in)
	if err != nil {
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Create: %w", err)
	}

	image, err := s.images.SaveBase64(ctx, in.Image)
	if err != nil {
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Create: %w", err)
	}

	created, err := s.recipes.Create(ctx, domain.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       image,
		Ingredients: ingredientAmounts(in.Ingredients),
		Tags:        tags,
	})
	if err != nil {
		s.discardImage(ctx, image)
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Create: %w", err)
	}
	return s.detail(ctx, &authorID, created)
}

// Update applies in to recipe id on behalf of userID.
// Nil Ingredients or Tags keep the stored set; an empty Image keeps the
// stored picture. Returns domain.ErrForbidden if userID is not the author.
func (s *RecipeService) Update(ctx context.Context, userID, id uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error) {
	current, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Update: %w", err)
	}
	if current.AuthorID != userID {
		return domain.RecipeDetail{}, fmt.Errorf("%w: only the author can change a recipe", domain.ErrForbidden)
	}

	in = normalizeRecipeInput(in)
	if err := validateRecipeInput(in, false); err != nil {
		return domain.RecipeDetail{}, err
	}
	tags, err := s.resolveCatalog(ctx, in)
	if err != nil {
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Update: %w", err)
	}

	next := current
	next.Name = in.Name
	next.Text = in.Text
	next.CookingTime = in.CookingTime
	next.Ingredients = nil
	next.Tags = tags
	if in.Ingredients != nil {
		next.Ingredients = ingredientAmounts(in.Ingredients)
	}
	if in.Image != "" {
		next.Image, err = s.images.SaveBase64(ctx, in.Image)
		if err != nil {
			return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Update: %w", err)
		}
	}

	updated, err := s.recipes.Update(ctx, next)
	if err != nil {
		if next.Image != current.Image {
			s.discardImage(ctx, next.Image)
		}
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Update: %w", err)
	}
	if next.Image != current.Image {
		s.discardImage(ctx, current.Image)
	}
	return s.detail(ctx, &userID, updated)
}

// Delete removes recipe id on behalf of userID together with its image.
// Returns domain.ErrForbidden if userID is not the author.
func (s *RecipeService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	current, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.RecipeService.Delete: %w", err)
	}
	if current.AuthorID != userID {
		return fmt.Errorf("%w: only the author can delete a recipe", domain.ErrForbidden)
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.RecipeService.Delete: %w", err)
	}
	s.discardImage(ctx, current.Image)
	return nil
}

// Get returns recipe id as seen by viewer (nil for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.RecipeDetail, error) {
	r, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return domain.RecipeDetail{}, fmt.Errorf("service.RecipeService.Get: %w", err)
	}
	return s.detail(ctx, viewer, r)
}

// List returns one page of recipes matching f and the total count.
// The selection flags of f only apply when viewer is set.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.RecipeDetail, int64, error) {
	f.ViewerID = viewer
	recipes, total, err := s.recipes.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RecipeService.List: %w", err)
	}
	details, err := s.details(ctx, viewer, recipes)
	if err != nil {
		return nil, 0, fmt.Errorf("service.RecipeService.List: %w", err)
	}
	return details, total, nil
}

func (s *RecipeService) detail(ctx context.Context, viewer *uuid.UUID, r domain.Recipe) (domain.RecipeDetail, error) {
	out, err := s.details(ctx, viewer, []domain.Recipe{r})
	if err != nil {
		return domain.RecipeDetail{}, err
	}
	return out[0], nil
}

// details decorates recipes for viewer with a constant number of lookups:
// authors, their subscription state, favorites and cart.
func (s *RecipeService) details(ctx context.Context, viewer *uuid.UUID, recipes []domain.Recipe) ([]domain.RecipeDetail, error) {
	out := make([]domain.RecipeDetail, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seen := make(map[uuid.UUID]bool, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	profiles, err := buildProfiles(ctx, s.follows, viewer, authors)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	var favorited, inCart map[uuid.UUID]bool
	if viewer != nil {
		if favorited, err = s.selections.Selected(ctx, *viewer, domain.SelectionFavorite, recipeIDs); err != nil {
			return nil, err
		}
		if inCart, err = s.selections.Selected(ctx, *viewer, domain.SelectionCart, recipeIDs); err != nil {
			return nil, err
		}
	}

	for i, r := range recipes {
		out[i] = domain.RecipeDetail{
			Recipe:           r,
			Author:           byID[r.AuthorID],
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
		}
	}
	return out, nil
}

// resolveCatalog checks that every referenced ingredient and tag exists and
// returns the tags to attach. It returns nil tags when in.Tags is nil.
func (s *RecipeService) resolveCatalog(ctx context.Context, in domain.RecipeInput) ([]domain.Tag, error) {
	if in.Ingredients != nil {
		ids := make([]uuid.UUID, len(in.Ingredients))
		for i, it := range in.Ingredients {
			ids[i] = it.ID
		}
		found, err := s.ingredients.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if len(found) != len(ids) {
			return nil, fmt.Errorf("%w: ingredients: unknown ingredient id", domain.ErrValidation)
		}
	}
	if in.Tags == nil {
		return nil, nil
	}
	tags, err := s.tags.GetByIDs(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(in.Tags) {
		return nil, fmt.Errorf("%w: tags: unknown tag id", domain.ErrValidation)
	}
	return tags, nil
}

// discardImage removes an image that is no longer referenced. Failures
// leave an orphan file behind and are only logged.
func (s *RecipeService) discardImage(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	if err := s.images.Remove(ctx, rel); err != nil {
		s.log.WarnContext(ctx, "remove recipe image failed", "image", rel, "error", err)
	}
}

func normalizeRecipeInput(in domain.RecipeInput) domain.RecipeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Text = strings.TrimSpace(in.Text)
	in.Image = strings.TrimSpace(in.Image)
	return in
}

// validateRecipeInput enforces the recipe rules. On create every field is
// required; on update Ingredients, Tags and Image may be omitted (nil / "").
func validateRecipeInput(in domain.RecipeInput, create bool) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case utf8.RuneCountInString(in.Name) > maxRecipeNameLen:
		return fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxRecipeNameLen)
	case in.Text == "":
		return fmt.Errorf("%w: text is required", domain.ErrValidation)
	case in.CookingTime < domain.MinCookingTime || in.CookingTime > domain.MaxCookingTime:
		return fmt.Errorf("%w: cooking_time must be between %d and %d",
			domain.ErrValidation, domain.MinCookingTime, domain.MaxCookingTime)
	case create && in.Image == "":
		return fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	if create || in.Ingredients != nil {
		if err := validateIngredients(in.Ingredients); err != nil {
			return err
		}
	}
	if create || in.Tags != nil {
		if err := validateTags(in.Tags); err != nil {
			return err
		}
	}
	return nil
}

func validateIngredients(items []domain.IngredientInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: ingredients: at least one ingredient is required", domain.ErrValidation)
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if it.Amount < domain.MinAmount || it.Amount > domain.MaxAmount {
			return fmt.Errorf("%w: ingredients: amount must be between %d and %d",
				domain.ErrValidation, domain.MinAmount, domain.MaxAmount)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: ingredients: ingredient %s is listed twice", domain.ErrValidation, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

func validateTags(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: tags: at least one tag is required", domain.ErrValidation)
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: tags: tag %s is listed twice", domain.ErrValidation, id)
		}
		seen[id] = true
	}
	return nil
}

func ingredientAmounts(items []domain.IngredientInput) []domain.IngredientAmount {
	out := make([]domain.IngredientAmount, len(items))
	for i, it := range items {
		out[i] = domain.IngredientAmount{IngredientID: it.ID, Amount: it.Amount}
	}
	return out
}

// recipeShort projects a recipe onto its compact form.
func recipeShort(r domain.Recipe) domain.RecipeShort {
	return domain.RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}
