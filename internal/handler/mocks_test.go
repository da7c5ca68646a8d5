package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/handler"
	"github.com/pkordes/foodgram/backend/internal/shoplist"
)

// Test doubles for the handler's servicer interfaces.
// Set only the method fields your test needs.

type mockUserServicer struct {
	register    func(ctx context.Context, reg domain.Registration) (domain.User, error)
	get         func(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.Profile, error)
	me          func(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	list        func(ctx context.Context, viewer *uuid.UUID, p domain.PaginationParams) ([]domain.Profile, int64, error)
	setPassword func(ctx context.Context, id uuid.UUID, current, next string) error
}

func (m *mockUserServicer) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	return m.register(ctx, reg)
}
func (m *mockUserServicer) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.Profile, error) {
	return m.get(ctx, viewer, id)
}
func (m *mockUserServicer) Me(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	return m.me(ctx, id)
}
func (m *mockUserServicer) List(ctx context.Context, viewer *uuid.UUID, p domain.PaginationParams) ([]domain.Profile, int64, error) {
	return m.list(ctx, viewer, p)
}
func (m *mockUserServicer) SetPassword(ctx context.Context, id uuid.UUID, current, next string) error {
	return m.setPassword(ctx, id, current, next)
}

// mockAuthServicer authenticates "Token <uuid>" headers as that user unless
// authenticate is set.
type mockAuthServicer struct {
	login        func(ctx context.Context, email, password string) (string, error)
	logout       func(ctx context.Context, claims auth.Claims) error
	authenticate func(ctx context.Context, token string) (uuid.UUID, auth.Claims, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (string, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) Logout(ctx context.Context, claims auth.Claims) error {
	return m.logout(ctx, claims)
}
func (m *mockAuthServicer) Authenticate(ctx context.Context, token string) (uuid.UUID, auth.Claims, error) {
	if m.authenticate != nil {
		return m.authenticate(ctx, token)
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, auth.Claims{}, domain.ErrUnauthorized
	}
	var c auth.Claims
	c.ID = "jti-" + token
	c.Subject = token
	return id, c, nil
}

type mockTagServicer struct {
	list    func(ctx context.Context) ([]domain.Tag, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

func (m *mockTagServicer) List(ctx context.Context) ([]domain.Tag, error) { return m.list(ctx) }
func (m *mockTagServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}

type mockIngredientServicer struct {
	list    func(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Ingredient, error)
}

func (m *mockIngredientServicer) List(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	return m.list(ctx, prefix)
}
func (m *mockIngredientServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error) {
	return m.getByID(ctx, id)
}

type mockRecipeServicer struct {
	create func(ctx context.Context, authorID uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error)
	update func(ctx context.Context, userID, id uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error)
	delete func(ctx context.Context, userID, id uuid.UUID) error
	get    func(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.RecipeDetail, error)
	list   func(ctx context.Context, viewer *uuid.UUID, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.RecipeDetail, int64, error)
}

func (m *mockRecipeServicer) Create(ctx context.Context, authorID uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error) {
	return m.create(ctx, authorID, in)
}
func (m *mockRecipeServicer) Update(ctx context.Context, userID, id uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error) {
	return m.update(ctx, userID, id, in)
}
func (m *mockRecipeServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}
func (m *mockRecipeServicer) Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.RecipeDetail, error) {
	return m.get(ctx, viewer, id)
}
func (m *mockRecipeServicer) List(ctx context.Context, viewer *uuid.UUID, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.RecipeDetail, int64, error) {
	return m.list(ctx, viewer, f, p)
}

type mockSelectionServicer struct {
	add    func(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) (domain.RecipeShort, error)
	remove func(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error
}

func (m *mockSelectionServicer) Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) (domain.RecipeShort, error) {
	return m.add(ctx, userID, recipeID, kind)
}
func (m *mockSelectionServicer) Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error {
	return m.remove(ctx, userID, recipeID, kind)
}

type mockFollowServicer struct {
	subscribe   func(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (domain.Subscription, error)
	unsubscribe func(ctx context.Context, userID, authorID uuid.UUID) error
	list        func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams, recipesLimit int) ([]domain.Subscription, int64, error)
}

func (m *mockFollowServicer) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (domain.Subscription, error) {
	return m.subscribe(ctx, userID, authorID, recipesLimit)
}
func (m *mockFollowServicer) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	return m.unsubscribe(ctx, userID, authorID)
}
func (m *mockFollowServicer) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams, recipesLimit int) ([]domain.Subscription, int64, error) {
	return m.list(ctx, userID, p, recipesLimit)
}

type mockShoppingListServicer struct {
	build func(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) (shoplist.List, error)
}

func (m *mockShoppingListServicer) Build(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) (shoplist.List, error) {
	return m.build(ctx, userID, kind)
}

type prefixURLer string

func (p prefixURLer) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return string(p) + rel
}

// compile-time checks: mocks must satisfy the handler interfaces.
var (
	_ handler.UserServicer         = (*mockUserServicer)(nil)
	_ handler.AuthServicer         = (*mockAuthServicer)(nil)
	_ handler.TagServicer          = (*mockTagServicer)(nil)
	_ handler.IngredientServicer   = (*mockIngredientServicer)(nil)
	_ handler.RecipeServicer       = (*mockRecipeServicer)(nil)
	_ handler.SelectionServicer    = (*mockSelectionServicer)(nil)
	_ handler.FollowServicer       = (*mockFollowServicer)(nil)
	_ handler.ShoppingListServicer = (*mockShoppingListServicer)(nil)
	_ handler.ImageURLer           = prefixURLer("")
)

// ---- helpers ---------------------------------------------------------------

// newAPI wires a Server with the given deps into its router. A default
// mockAuthServicer is supplied when d.Auth is nil.
func newAPI(d handler.Deps) http.Handler {
	if d.Auth == nil {
		d.Auth = &mockAuthServicer{}
	}
	if d.Log == nil {
		d.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return handler.NewServer(d).Routes()
}

// do sends a request through h. A non-nil body is JSON-encoded; a non-nil
// user authenticates the request as that user.
func do(t *testing.T, h http.Handler, method, target string, body any, user *uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Token "+user.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func ptr[T any](v T) *T { return &v }
