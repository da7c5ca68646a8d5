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

// RecipeRepo defines the persistence operations for Recipes and their
// ingredient and tag associations.
type RecipeRepo interface {
	// Create inserts the recipe row, its ingredient associations (in slice
	// order) and its tags in one transaction, and returns the stored recipe.
	// Returns domain.ErrConflict if the author already has a recipe with that name.
	Create(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error)

	// Update overwrites the scalar fields of a recipe. A nil Ingredients or
	// Tags slice leaves that association set untouched; a non-nil one
	// replaces it wholesale. Returns domain.ErrNotFound if the recipe is gone.
	Update(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error)

	// Delete removes a recipe and, by cascade, its associations and selections.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetByID returns the recipe with ingredients and tags populated.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Recipe, error)

	// ListPaged returns one page of recipes matching f, newest first, with
	// associations populated, and the total number of matches.
	ListPaged(ctx context.Context, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.Recipe, int64, error)

	// ListIngredients returns the (ingredient, amount) associations of one
	// recipe in insertion order. Returns domain.ErrNotFound if the recipe
	// does not exist.
	ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]domain.IngredientAmount, error)

	// ListShortByAuthor returns up to limit of the author's newest recipes.
	// limit <= 0 means no limit.
	ListShortByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.RecipeShort, error)

	// CountByAuthor returns the number of recipes the author owns.
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error)
}

// pgRecipeRepo is the Postgres implementation of RecipeRepo.
type pgRecipeRepo struct {
	db db
}

// NewRecipeRepo constructs a RecipeRepo backed by the provided db connection.
func NewRecipeRepo(db db) RecipeRepo {
	return &pgRecipeRepo{db: db}
}

const recipeColumns = `r.id, r.author_id, r.name, r.text, r.cooking_time, r.image, r.created_at, r.updated_at`

func (r *pgRecipeRepo) Create(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	const q = `
		INSERT INTO recipes AS r (author_id, name, text, cooking_time, image)
		VALUES (@author_id, @name, @text, @cooking_time, @image)
		RETURNING ` + recipeColumns

	args := pgx.NamedArgs{
		"author_id":    recipe.AuthorID,
		"name":         recipe.Name,
		"text":         recipe.Text,
		"cooking_time": recipe.CookingTime,
		"image":        recipe.Image,
	}

	var created domain.Recipe
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		created, err = scanRecipe(tx.QueryRow(ctx, q, args))
		if err != nil {
			return err
		}
		if err := replaceIngredients(ctx, tx, created.ID, recipe.Ingredients); err != nil {
			return err
		}
		return replaceTags(ctx, tx, created.ID, recipe.Tags)
	})
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("repo.RecipeRepo.Create: %w", mapWriteError(err))
	}
	return r.GetByID(ctx, created.ID)
}

func (r *pgRecipeRepo) Update(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	const q = `
		UPDATE recipes AS r
		SET name         = @name,
		    text         = @text,
		    cooking_time = @cooking_time,
		    image        = @image,
		    updated_at   = now()
		WHERE r.id = @id
		RETURNING ` + recipeColumns

	args := pgx.NamedArgs{
		"id":           recipe.ID,
		"name":         recipe.Name,
		"text":         recipe.Text,
		"cooking_time": recipe.CookingTime,
		"image":        recipe.Image,
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := scanRecipe(tx.QueryRow(ctx, q, args)); err != nil {
			return err
		}
		if recipe.Ingredients != nil {
			if err := replaceIngredients(ctx, tx, recipe.ID, recipe.Ingredients); err != nil {
				return err
			}
		}
		if recipe.Tags != nil {
			if err := replaceTags(ctx, tx, recipe.ID, recipe.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("repo.RecipeRepo.Update: %w", mapWriteError(err))
	}
	return r.GetByID(ctx, recipe.ID)
}

func (r *pgRecipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RecipeRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecipeRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgRecipeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Recipe, error) {
	const q = `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.id = @id`

	recipe, err := scanRecipe(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("repo.RecipeRepo.GetByID: %w", err)
	}
	recipes := []domain.Recipe{recipe}
	if err := r.loadAssociations(ctx, recipes); err != nil {
		return domain.Recipe{}, fmt.Errorf("repo.RecipeRepo.GetByID: %w", err)
	}
	return recipes[0], nil
}

// recipeFilterWhere is shared by the page and count queries of ListPaged.
// Tag slugs match if the recipe carries any of them.
const recipeFilterWhere = `
		WHERE (@author_id::uuid IS NULL OR r.author_id = @author_id)
		  AND (coalesce(cardinality(@tags::text[]), 0) = 0 OR EXISTS (
		        SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		        WHERE rt.recipe_id = r.id AND t.slug = ANY(@tags)))
		  AND (NOT @favorited OR EXISTS (
		        SELECT 1 FROM selections s
		        WHERE s.recipe_id = r.id AND s.user_id = @viewer_id AND s.kind = 'favorite'))
		  AND (NOT @in_cart OR EXISTS (
		        SELECT 1 FROM selections s
		        WHERE s.recipe_id = r.id AND s.user_id = @viewer_id AND s.kind = 'cart'))`

func (r *pgRecipeRepo) ListPaged(ctx context.Context, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.Recipe, int64, error) {
	tags := f.TagSlugs
	if tags == nil {
		tags = []string{}
	}
	args := pgx.NamedArgs{
		"author_id": f.AuthorID,
		"tags":      tags,
		"viewer_id": f.ViewerID,
		"favorited": f.IsFavorited && f.ViewerID != nil,
		"in_cart":   f.IsInShoppingCart && f.ViewerID != nil,
		"limit":     p.Limit,
		"offset":    p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM recipes r`+recipeFilterWhere, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.RecipeRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + recipeColumns + ` FROM recipes r` + recipeFilterWhere + `
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RecipeRepo.ListPaged: %w", err)
	}
	recipes, err := collectRecipes(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RecipeRepo.ListPaged: %w", err)
	}
	if err := r.loadAssociations(ctx, recipes); err != nil {
		return nil, 0, fmt.Errorf("repo.RecipeRepo.ListPaged: %w", err)
	}
	return recipes, total, nil
}

func (r *pgRecipeRepo) ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]domain.IngredientAmount, error) {
	const q = `
		SELECT i.id, i.name, i.measurement_unit, ri.amount
		FROM recipes r
		LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		LEFT JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE r.id = @recipe_id
		ORDER BY ri.position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"recipe_id": recipeID})
	if err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.ListIngredients: %w", err)
	}
	defer rows.Close()

	// The recipe row anchors the LEFT JOIN: no rows at all means no recipe,
	// a single row with NULL ingredient means a recipe without ingredients.
	var (
		found bool
		out   = []domain.IngredientAmount{}
	)
	for rows.Next() {
		found = true
		var (
			id     pgtype.UUID
			name   pgtype.Text
			unit   pgtype.Text
			amount pgtype.Int4
		)
		if err := rows.Scan(&id, &name, &unit, &amount); err != nil {
			return nil, fmt.Errorf("repo.RecipeRepo.ListIngredients: scan: %w", err)
		}
		if !id.Valid {
			continue
		}
		out = append(out, domain.IngredientAmount{
			IngredientID:    uuid.UUID(id.Bytes),
			Name:            name.String,
			MeasurementUnit: unit.String,
			Amount:          int(amount.Int32),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.ListIngredients: rows: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("repo.RecipeRepo.ListIngredients: %w", domain.ErrNotFound)
	}
	return out, nil
}

func (r *pgRecipeRepo) ListShortByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.RecipeShort, error) {
	const q = `
		SELECT id, name, image, cooking_time
		FROM recipes
		WHERE author_id = @author_id
		ORDER BY created_at DESC, id DESC
		LIMIT @limit`

	// LIMIT NULL means no limit in Postgres.
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"author_id": authorID, "limit": lim})
	if err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.ListShortByAuthor: %w", err)
	}
	defer rows.Close()

	out := []domain.RecipeShort{}
	for rows.Next() {
		var (
			s  domain.RecipeShort
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &s.Name, &s.Image, &s.CookingTime); err != nil {
			return nil, fmt.Errorf("repo.RecipeRepo.ListShortByAuthor: scan: %w", err)
		}
		s.ID = uuid.UUID(id.Bytes)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecipeRepo.ListShortByAuthor: rows: %w", err)
	}
	return out, nil
}

func (r *pgRecipeRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM recipes WHERE author_id = @author_id`,
		pgx.NamedArgs{"author_id": authorID}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.RecipeRepo.CountByAuthor: %w", err)
	}
	return n, nil
}

// loadAssociations fills Ingredients and Tags of every recipe with two
// batched queries. Recipes are modified in place.
func (r *pgRecipeRepo) loadAssociations(ctx context.Context, recipes []domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(recipes))
	index := make(map[uuid.UUID]int, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		index[recipes[i].ID] = i
		recipes[i].Ingredients = []domain.IngredientAmount{}
		recipes[i].Tags = []domain.Tag{}
	}

	const qIngredients = `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY(@ids)
		ORDER BY ri.recipe_id, ri.position`

	rows, err := r.db.Query(ctx, qIngredients, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("ingredients: %w", err)
	}
	for rows.Next() {
		var (
			recipeID, ingID pgtype.UUID
			ia              domain.IngredientAmount
		)
		if err := rows.Scan(&recipeID, &ingID, &ia.Name, &ia.MeasurementUnit, &ia.Amount); err != nil {
			rows.Close()
			return fmt.Errorf("ingredients: scan: %w", err)
		}
		ia.IngredientID = uuid.UUID(ingID.Bytes)
		i := index[uuid.UUID(recipeID.Bytes)]
		recipes[i].Ingredients = append(recipes[i].Ingredients, ia)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ingredients: rows: %w", err)
	}

	const qTags = `
		SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		FROM recipe_tags rt
		JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY(@ids)
		ORDER BY rt.recipe_id, t.slug`

	rows, err = r.db.Query(ctx, qTags, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			recipeID, tagID pgtype.UUID
			t               domain.Tag
		)
		if err := rows.Scan(&recipeID, &tagID, &t.Name, &t.Color, &t.Slug); err != nil {
			return fmt.Errorf("tags: scan: %w", err)
		}
		t.ID = uuid.UUID(tagID.Bytes)
		i := index[uuid.UUID(recipeID.Bytes)]
		recipes[i].Tags = append(recipes[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("tags: rows: %w", err)
	}
	return nil
}

// replaceIngredients deletes the recipe's associations and inserts items
// with their slice index as position.
func replaceIngredients(ctx context.Context, tx pgx.Tx, recipeID uuid.UUID, items []domain.IngredientAmount) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = @id`, pgx.NamedArgs{"id": recipeID}); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{recipeID, it.IngredientID, it.Amount, i}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"recipe_ingredients"},
		[]string{"recipe_id", "ingredient_id", "amount", "position"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// replaceTags deletes the recipe's tag links and inserts the given ones.
func replaceTags(ctx context.Context, tx pgx.Tx, recipeID uuid.UUID, tags []domain.Tag) error {
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = @id`, pgx.NamedArgs{"id": recipeID}); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	const q = `
		INSERT INTO recipe_tags (recipe_id, tag_id)
		SELECT @recipe_id, unnest(@tag_ids::uuid[])
		ON CONFLICT DO NOTHING`
	_, err := tx.Exec(ctx, q, pgx.NamedArgs{"recipe_id": recipeID, "tag_ids": ids})
	return err
}

// mapWriteError translates constraint violations raised while writing a
// recipe into domain errors.
func mapWriteError(err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: recipe with this name already exists for the author", domain.ErrConflict)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: unknown ingredient or tag", domain.ErrValidation)
	case pgCheckViolation:
		return fmt.Errorf("%w: value out of range", domain.ErrValidation)
	}
	return err
}

func collectRecipes(rows pgx.Rows) ([]domain.Recipe, error) {
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return recipes, nil
}

// scanRecipe maps the recipeColumns of a single row into a domain.Recipe.
// Associations are left nil.
func scanRecipe(s scanner) (domain.Recipe, error) {
	var (
		rec      domain.Recipe
		id       pgtype.UUID
		authorID pgtype.UUID
	)
	err := s.Scan(&id, &authorID, &rec.Name, &rec.Text, &rec.CookingTime, &rec.Image, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Recipe{}, domain.ErrNotFound
		}
		return domain.Recipe{}, err
	}
	rec.ID = uuid.UUID(id.Bytes)
	rec.AuthorID = uuid.UUID(authorID.Bytes)
	return rec, nil
}
