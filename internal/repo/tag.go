package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// TagRepo defines the persistence operations for Tags.
type TagRepo interface {
	// Upsert inserts a tag by slug, or updates name and color of the existing
	// tag with that slug. Used by the catalog loader.
	Upsert(ctx context.Context, tag domain.Tag) (domain.Tag, error)

	// List returns all tags ordered by slug.
	List(ctx context.Context) ([]domain.Tag, error)

	// GetByID returns domain.ErrNotFound if no tag with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// GetByIDs returns the tags among ids that exist, ordered by slug.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Upsert inserts a tag or refreshes the existing row on slug conflict.
// DO UPDATE (rather than DO NOTHING) makes RETURNING fire on conflict too.
func (r *pgTagRepo) Upsert(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, color, slug)
		VALUES (@name, @color, @slug)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
		RETURNING id, name, color, slug`

	args := pgx.NamedArgs{"name": tag.Name, "color": tag.Color, "slug": tag.Slug}
	result, err := scanTag(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w: name or color already used", domain.ErrConflict)
		}
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	const q = `SELECT id, name, color, slug FROM tags ORDER BY slug`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	const q = `SELECT id, name, color, slug FROM tags WHERE id = @id`

	result, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTagRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return []domain.Tag{}, nil
	}
	const q = `SELECT id, name, color, slug FROM tags WHERE id = ANY(@ids) ORDER BY slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.GetByIDs: %w", err)
	}
	tags, err := collectTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.GetByIDs: %w", err)
	}
	return tags, nil
}

// collectTags drains rows into a non-nil slice and closes them.
func collectTags(rows pgx.Rows) ([]domain.Tag, error) {
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
