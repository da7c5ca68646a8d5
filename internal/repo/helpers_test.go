package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
	"github.com/pkordes/foodgram/backend/testutil"
)

// repos bundles every repository backed by the same transaction, so tests
// can build full hierarchies (user → recipe → selection) that are rolled
// back when the test finishes.
type repos struct {
	users       repo.UserRepo
	follows     repo.FollowRepo
	tokens      repo.TokenRepo
	tags        repo.TagRepo
	ingredients repo.IngredientRepo
	recipes     repo.RecipeRepo
	selections  repo.SelectionRepo
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test; no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})

	return repos{
		users:       repo.NewUserRepo(tx),
		follows:     repo.NewFollowRepo(tx),
		tokens:      repo.NewTokenRepo(tx),
		tags:        repo.NewTagRepo(tx),
		ingredients: repo.NewIngredientRepo(tx),
		recipes:     repo.NewRecipeRepo(tx),
		selections:  repo.NewSelectionRepo(tx),
	}
}

// mustCreateUser inserts a user with a unique email and username.
func mustCreateUser(t *testing.T, r repos) domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	u, err := r.users.Create(context.Background(), domain.User{
		Email:        fmt.Sprintf("cook-%s@example.com", suffix),
		Username:     "cook-" + suffix,
		FirstName:    "Test",
		LastName:     "Cook",
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err)
	return u
}

func mustCreateTag(t *testing.T, r repos, slug, color string) domain.Tag {
	t.Helper()
	tag, err := r.tags.Upsert(context.Background(), domain.Tag{Name: "Tag " + slug, Color: color, Slug: slug})
	require.NoError(t, err)
	return tag
}

func mustCreateIngredient(t *testing.T, r repos, name, unit string) domain.Ingredient {
	t.Helper()
	ing, err := r.ingredients.Upsert(context.Background(), name, unit)
	require.NoError(t, err)
	return ing
}

// recipeFixture returns a recipe owned by author using the given ingredients
// (amount 10 each) and tags.
func recipeFixture(author domain.User, name string, ings []domain.Ingredient, tags []domain.Tag) domain.Recipe {
	amounts := make([]domain.IngredientAmount, len(ings))
	for i, ing := range ings {
		amounts[i] = domain.IngredientAmount{IngredientID: ing.ID, Amount: 10}
	}
	return domain.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 30,
		Image:       "recipes/test.jpg",
		Ingredients: amounts,
		Tags:        tags,
	}
}
