// Command loaddata seeds the ingredient and tag catalogs from JSON files.
//
//	loaddata -ingredients data/ingredients.json -tags data/tags.json
//
// Ingredients are [{"name","measurement_unit"}]; tags are
// [{"name","color","slug"}]. Loading is idempotent: existing rows are kept
// (ingredients) or refreshed (tags).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
	"github.com/pkordes/foodgram/backend/migrations"
)

type ingredientUpserter interface {
	Upsert(ctx context.Context, name, unit string) (domain.Ingredient, error)
}

type tagUpserter interface {
	Upsert(ctx context.Context, tag domain.Tag) (domain.Tag, error)
}

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to the ingredients JSON file")
	tagsPath := flag.String("tags", "", "path to the tags JSON file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, *ingredientsPath, *tagsPath); err != nil {
		slog.Error("loaddata failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, ingredientsPath, tagsPath string) error {
	if ingredientsPath == "" && tagsPath == "" {
		return errors.New("nothing to load: pass -ingredients and/or -tags")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	err = migrations.Up(ctx, sqlDB, logger)
	sqlDB.Close()
	if err != nil {
		return err
	}

	if ingredientsPath != "" {
		f, err := os.Open(ingredientsPath)
		if err != nil {
			return err
		}
		n, err := loadIngredients(ctx, repo.NewIngredientRepo(pool), f)
		f.Close()
		if err != nil {
			return err
		}
		logger.Info("ingredients loaded", "count", n, "file", ingredientsPath)
	}
	if tagsPath != "" {
		f, err := os.Open(tagsPath)
		if err != nil {
			return err
		}
		n, err := loadTags(ctx, repo.NewTagRepo(pool), f)
		f.Close()
		if err != nil {
			return err
		}
		logger.Info("tags loaded", "count", n, "file", tagsPath)
	}
	return nil
}

// loadIngredients upserts every record in r and returns how many were processed.
func loadIngredients(ctx context.Context, ingredients ingredientUpserter, r io.Reader) (int, error) {
	var records []ingredientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode ingredients: %w", err)
	}
	for i, rec := range records {
		if rec.Name == "" || rec.MeasurementUnit == "" {
			return i, fmt.Errorf("ingredient #%d: name and measurement_unit are required", i+1)
		}
		if _, err := ingredients.Upsert(ctx, rec.Name, rec.MeasurementUnit); err != nil {
			return i, fmt.Errorf("ingredient %q: %w", rec.Name, err)
		}
	}
	return len(records), nil
}

// loadTags upserts every record in r and returns how many were processed.
func loadTags(ctx context.Context, tags tagUpserter, r io.Reader) (int, error) {
	var records []tagRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode tags: %w", err)
	}
	for i, rec := range records {
		if rec.Name == "" || rec.Slug == "" || rec.Color == "" {
			return i, fmt.Errorf("tag #%d: name, color and slug are required", i+1)
		}
		if _, err := tags.Upsert(ctx, domain.Tag{Name: rec.Name, Color: rec.Color, Slug: rec.Slug}); err != nil {
			return i, fmt.Errorf("tag %q: %w", rec.Slug, err)
		}
	}
	return len(records), nil
}
