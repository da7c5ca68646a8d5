package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
)

// TagService exposes the read-only tag catalog.
// Tags are created by operators through the catalog loader, never via the API.
type TagService struct {
	tags repo.TagRepo
}

// NewTagService constructs a TagService backed by the provided TagRepo.
func NewTagService(tags repo.TagRepo) *TagService {
	return &TagService{tags: tags}
}

// List returns every tag ordered by slug.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	if tags == nil {
		return []domain.Tag{}, nil
	}
	return tags, nil
}

// GetByID returns domain.ErrNotFound if the tag does not exist.
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetByID: %w", err)
	}
	return tag, nil
}
