package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// FollowService manages subscriptions between users and authors.
type FollowService struct {
	users   repo.UserRepo
	follows repo.FollowRepo
	recipes repo.RecipeRepo
}

// NewFollowService constructs a FollowService.
func NewFollowService(users repo.UserRepo, follows repo.FollowRepo, recipes repo.RecipeRepo) *FollowService {
	return &FollowService{users: users, follows: follows, recipes: recipes}
}

// Subscribe makes userID follow authorID and returns the new subscription
// with up to recipesLimit of the author's newest recipes (<= 0 means all).
// Returns domain.ErrValidation for self-subscription, domain.ErrNotFound if
// the author does not exist and domain.ErrConflict if already subscribed.
func (s *FollowService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (domain.Subscription, error) {
	if userID == authorID {
		return domain.Subscription{}, fmt.Errorf("%w: cannot subscribe to yourself", domain.ErrValidation)
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("service.FollowService.Subscribe: %w", err)
	}
	if err := s.follows.Add(ctx, userID, authorID); err != nil {
		return domain.Subscription{}, fmt.Errorf("service.FollowService.Subscribe: %w", err)
	}
	sub, err := s.subscription(ctx, author, recipesLimit)
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("service.FollowService.Subscribe: %w", err)
	}
	return sub, nil
}

// Unsubscribe removes the subscription of userID to authorID.
// Returns domain.ErrNotFound if the author does not exist and
// domain.ErrValidation if userID was not subscribed.
func (s *FollowService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return fmt.Errorf("service.FollowService.Unsubscribe: %w", err)
	}
	if err := s.follows.Remove(ctx, userID, authorID); err != nil {
		if errIsNotFound(err) {
			return fmt.Errorf("%w: not subscribed to this author", domain.ErrValidation)
		}
		return fmt.Errorf("service.FollowService.Unsubscribe: %w", err)
	}
	return nil
}

// List returns one page of the authors userID follows and the total count.
func (s *FollowService) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams, recipesLimit int) ([]domain.Subscription, int64, error) {
	authors, total, err := s.follows.ListAuthorsPaged(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.FollowService.List: %w", err)
	}
	out := make([]domain.Subscription, 0, len(authors))
	for _, a := range authors {
		sub, err := s.subscription(ctx, a, recipesLimit)
		if err != nil {
			return nil, 0, fmt.Errorf("service.FollowService.List: %w", err)
		}
		out = append(out, sub)
	}
	return out, total, nil
}

// subscription builds the view of a followed author. IsSubscribed is true
// by construction.
func (s *FollowService) subscription(ctx context.Context, author domain.User, recipesLimit int) (domain.Subscription, error) {
	recipes, err := s.recipes.ListShortByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return domain.Subscription{}, err
	}
	count, err := s.recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return domain.Subscription{}, err
	}
	return domain.Subscription{
		Profile:      domain.Profile{User: author, IsSubscribed: true},
		Recipes:      recipes,
		RecipesCount: count,
	}, nil
}
