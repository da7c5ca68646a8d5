package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/repo"
	"github.com/pkordes/foodgram/backend/internal/service"
)

// Hand-written test doubles. Each method delegates to a function field so
// a test sets only the behaviour it exercises; calling an unset field
// panics, which flags an unexpected repo call.

// ---- UserRepo --------------------------------------------------------------

type mockUserRepo struct {
	create         func(ctx context.Context, u domain.User) (domain.User, error)
	getByID        func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByIDs       func(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	getByEmail     func(ctx context.Context, email string) (domain.User, error)
	listPaged      func(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error)
	updatePassword func(ctx context.Context, id uuid.UUID, hash string) error
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	return m.getByIDs(ctx, ids)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.updatePassword(ctx, id, hash)
}

// ---- FollowRepo ------------------------------------------------------------

type mockFollowRepo struct {
	add              func(ctx context.Context, userID, authorID uuid.UUID) error
	remove           func(ctx context.Context, userID, authorID uuid.UUID) error
	subscribedTo     func(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	listAuthorsPaged func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error)
}

func (m *mockFollowRepo) Add(ctx context.Context, userID, authorID uuid.UUID) error {
	return m.add(ctx, userID, authorID)
}
func (m *mockFollowRepo) Remove(ctx context.Context, userID, authorID uuid.UUID) error {
	return m.remove(ctx, userID, authorID)
}
func (m *mockFollowRepo) SubscribedTo(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	return m.subscribedTo(ctx, userID, authorIDs)
}
func (m *mockFollowRepo) ListAuthorsPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error) {
	return m.listAuthorsPaged(ctx, userID, p)
}

// ---- TokenRepo -------------------------------------------------------------

type mockTokenRepo struct {
	revoke       func(ctx context.Context, jti string, expiresAt time.Time) error
	isRevoked    func(ctx context.Context, jti string) (bool, error)
	purgeExpired func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return m.revoke(ctx, jti, expiresAt)
}
func (m *mockTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return m.isRevoked(ctx, jti)
}
func (m *mockTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.purgeExpired(ctx, now)
}

// ---- TagRepo ---------------------------------------------------------------

type mockTagRepo struct {
	upsert   func(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	list     func(ctx context.Context) ([]domain.Tag, error)
	getByID  func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	getByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
}

func (m *mockTagRepo) Upsert(ctx context.Context, tag domain.Tag) (domain.Tag, error) {
	return m.upsert(ctx, tag)
}
func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	return m.getByIDs(ctx, ids)
}

// ---- IngredientRepo --------------------------------------------------------

type mockIngredientRepo struct {
	upsert   func(ctx context.Context, name, unit string) (domain.Ingredient, error)
	list     func(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	getByID  func(ctx context.Context, id uuid.UUID) (domain.Ingredient, error)
	getByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Ingredient, error)
}

func (m *mockIngredientRepo) Upsert(ctx context.Context, name, unit string) (domain.Ingredient, error) {
	return m.upsert(ctx, name, unit)
}
func (m *mockIngredientRepo) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	return m.list(ctx, prefix)
}
func (m *mockIngredientRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error) {
	return m.getByID(ctx, id)
}
func (m *mockIngredientRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Ingredient, error) {
	return m.getByIDs(ctx, ids)
}

// ---- RecipeRepo ------------------------------------------------------------

type mockRecipeRepo struct {
	create            func(ctx context.Context, r domain.Recipe) (domain.Recipe, error)
	update            func(ctx context.Context, r domain.Recipe) (domain.Recipe, error)
	delete            func(ctx context.Context, id uuid.UUID) error
	getByID           func(ctx context.Context, id uuid.UUID) (domain.Recipe, error)
	listPaged         func(ctx context.Context, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.Recipe, int64, error)
	listIngredients   func(ctx context.Context, recipeID uuid.UUID) ([]domain.IngredientAmount, error)
	listShortByAuthor func(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.RecipeShort, error)
	countByAuthor     func(ctx context.Context, authorID uuid.UUID) (int, error)
}

func (m *mockRecipeRepo) Create(ctx context.Context, r domain.Recipe) (domain.Recipe, error) {
	return m.create(ctx, r)
}
func (m *mockRecipeRepo) Update(ctx context.Context, r domain.Recipe) (domain.Recipe, error) {
	return m.update(ctx, r)
}
func (m *mockRecipeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockRecipeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Recipe, error) {
	return m.getByID(ctx, id)
}
func (m *mockRecipeRepo) ListPaged(ctx context.Context, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.Recipe, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockRecipeRepo) ListIngredients(ctx context.Context, recipeID uuid.UUID) ([]domain.IngredientAmount, error) {
	return m.listIngredients(ctx, recipeID)
}
func (m *mockRecipeRepo) ListShortByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]domain.RecipeShort, error) {
	return m.listShortByAuthor(ctx, authorID, limit)
}
func (m *mockRecipeRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int, error) {
	return m.countByAuthor(ctx, authorID)
}

// ---- SelectionRepo ---------------------------------------------------------

type mockSelectionRepo struct {
	add           func(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error
	remove        func(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error
	listRecipeIDs func(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) ([]uuid.UUID, error)
	selected      func(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

func (m *mockSelectionRepo) Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	return m.add(ctx, userID, recipeID, kind)
}
func (m *mockSelectionRepo) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	return m.remove(ctx, userID, recipeID, kind)
}
func (m *mockSelectionRepo) ListRecipeIDs(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) ([]uuid.UUID, error) {
	return m.listRecipeIDs(ctx, userID, kind)
}
func (m *mockSelectionRepo) Selected(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	return m.selected(ctx, userID, kind, ids)
}

// ---- ImageStore ------------------------------------------------------------

type mockImageStore struct {
	saveBase64 func(ctx context.Context, dataURI string) (string, error)
	remove     func(ctx context.Context, rel string) error
}

func (m *mockImageStore) SaveBase64(ctx context.Context, dataURI string) (string, error) {
	return m.saveBase64(ctx, dataURI)
}
func (m *mockImageStore) Remove(ctx context.Context, rel string) error {
	return m.remove(ctx, rel)
}

// ---- TokenIssuer -----------------------------------------------------------

type mockIssuer struct {
	issue func(userID uuid.UUID) (string, auth.Claims, error)
	parse func(token string) (auth.Claims, error)
}

func (m *mockIssuer) Issue(userID uuid.UUID) (string, auth.Claims, error) {
	return m.issue(userID)
}
func (m *mockIssuer) Parse(token string) (auth.Claims, error) {
	return m.parse(token)
}

// compile-time checks
var (
	_ repo.UserRepo       = (*mockUserRepo)(nil)
	_ repo.FollowRepo     = (*mockFollowRepo)(nil)
	_ repo.TokenRepo      = (*mockTokenRepo)(nil)
	_ repo.TagRepo        = (*mockTagRepo)(nil)
	_ repo.IngredientRepo = (*mockIngredientRepo)(nil)
	_ repo.RecipeRepo     = (*mockRecipeRepo)(nil)
	_ repo.SelectionRepo  = (*mockSelectionRepo)(nil)
	_ service.ImageStore  = (*mockImageStore)(nil)
	_ service.TokenIssuer = (*mockIssuer)(nil)
)
