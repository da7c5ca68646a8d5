package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// SelectionRepo defines the persistence operations for per-user recipe
// selections: favorites and the shopping cart share one table keyed by kind.
type SelectionRepo interface {
	// Add selects recipeID for userID under kind.
	// Returns domain.ErrConflict if already selected and domain.ErrNotFound
	// if the user or recipe does not exist.
	Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error

	// Remove deselects a recipe. Returns domain.ErrNotFound if it was not selected.
	Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error

	// ListRecipeIDs returns the recipes userID selected under kind, in the
	// order they were selected.
	ListRecipeIDs(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) ([]uuid.UUID, error)

	// Selected reports which of recipeIDs userID selected under kind.
	// Unselected recipes are absent from the map.
	Selected(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// pgSelectionRepo is the Postgres implementation of SelectionRepo.
type pgSelectionRepo struct {
	db db
}

// NewSelectionRepo constructs a SelectionRepo backed by the provided db connection.
func NewSelectionRepo(db db) SelectionRepo {
	return &pgSelectionRepo{db: db}
}

func (r *pgSelectionRepo) Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	const q = `
		INSERT INTO selections (user_id, recipe_id, kind)
		VALUES (@user_id, @recipe_id, @kind)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID, "recipe_id": recipeID, "kind": string(kind)})
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return fmt.Errorf("repo.SelectionRepo.Add: %w: recipe already selected", domain.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("repo.SelectionRepo.Add: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.SelectionRepo.Add: %w", err)
	}
	return nil
}

func (r *pgSelectionRepo) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	const q = `
		DELETE FROM selections
		WHERE user_id = @user_id AND recipe_id = @recipe_id AND kind = @kind`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID, "recipe_id": recipeID, "kind": string(kind)})
	if err != nil {
		return fmt.Errorf("repo.SelectionRepo.Remove: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SelectionRepo.Remove: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgSelectionRepo) ListRecipeIDs(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) ([]uuid.UUID, error) {
	const q = `
		SELECT recipe_id
		FROM selections
		WHERE user_id = @user_id AND kind = @kind
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID, "kind": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.ListRecipeIDs: %w", err)
	}
	ids, err := collectUUIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.ListRecipeIDs: %w", err)
	}
	return ids, nil
}

func (r *pgSelectionRepo) Selected(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT recipe_id
		FROM selections
		WHERE user_id = @user_id AND kind = @kind AND recipe_id = ANY(@recipe_ids)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID, "kind": string(kind), "recipe_ids": recipeIDs})
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.Selected: %w", err)
	}
	ids, err := collectUUIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.SelectionRepo.Selected: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// collectUUIDs drains a single-column uuid result set.
func collectUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}
