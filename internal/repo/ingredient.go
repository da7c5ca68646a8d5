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

// IngredientRepo defines the persistence operations for the ingredient catalog.
type IngredientRepo interface {
	// Upsert inserts an ingredient or returns the existing one with the same
	// name and unit. Used by the catalog loader.
	Upsert(ctx context.Context, name, unit string) (domain.Ingredient, error)

	// List returns ingredients whose name starts with prefix
	// (case-insensitive), ordered by name. Pass prefix="" for all.
	List(ctx context.Context, prefix string) ([]domain.Ingredient, error)

	// GetByID returns domain.ErrNotFound if no ingredient with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error)

	// GetByIDs returns the ingredients among ids that exist.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ingredient, error)
}

// pgIngredientRepo is the Postgres implementation of IngredientRepo.
type pgIngredientRepo struct {
	db db
}

// NewIngredientRepo constructs an IngredientRepo backed by the provided db connection.
func NewIngredientRepo(db db) IngredientRepo {
	return &pgIngredientRepo{db: db}
}

func (r *pgIngredientRepo) Upsert(ctx context.Context, name, unit string) (domain.Ingredient, error) {
	const q = `
		INSERT INTO ingredients (name, measurement_unit)
		VALUES (@name, @unit)
		ON CONFLICT (name, measurement_unit) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, measurement_unit`

	result, err := scanIngredient(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "unit": unit}))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("repo.IngredientRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgIngredientRepo) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	const q = `
		SELECT id, name, measurement_unit
		FROM ingredients
		WHERE lower(name) LIKE lower(@prefix) || '%'
		ORDER BY name, measurement_unit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": escapeLike(prefix)})
	if err != nil {
		return nil, fmt.Errorf("repo.IngredientRepo.List: %w", err)
	}
	out, err := collectIngredients(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.IngredientRepo.List: %w", err)
	}
	return out, nil
}

func (r *pgIngredientRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error) {
	const q = `SELECT id, name, measurement_unit FROM ingredients WHERE id = @id`

	result, err := scanIngredient(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("repo.IngredientRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgIngredientRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ingredient, error) {
	if len(ids) == 0 {
		return []domain.Ingredient{}, nil
	}
	const q = `SELECT id, name, measurement_unit FROM ingredients WHERE id = ANY(@ids)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.IngredientRepo.GetByIDs: %w", err)
	}
	out, err := collectIngredients(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.IngredientRepo.GetByIDs: %w", err)
	}
	return out, nil
}

func collectIngredients(rows pgx.Rows) ([]domain.Ingredient, error) {
	defer rows.Close()

	out := []domain.Ingredient{}
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func scanIngredient(s scanner) (domain.Ingredient, error) {
	var (
		ing domain.Ingredient
		id  pgtype.UUID
	)
	if err := s.Scan(&id, &ing.Name, &ing.MeasurementUnit); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ingredient{}, domain.ErrNotFound
		}
		return domain.Ingredient{}, err
	}
	ing.ID = uuid.UUID(id.Bytes)
	return ing, nil
}
