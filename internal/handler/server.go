// Package handler implements the HTTP handlers for the Foodgram API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, recipe.go, etc.) but all share the same Server struct so
// they can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/foodgram/backend/internal/auth"
	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/middleware"
	"github.com/pkordes/foodgram/backend/internal/shoplist"
)

// UserServicer defines the account operations the user handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type UserServicer interface {
	Register(ctx context.Context, reg domain.Registration) (domain.User, error)
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.Profile, error)
	Me(ctx context.Context, id uuid.UUID) (domain.Profile, error)
	List(ctx context.Context, viewer *uuid.UUID, p domain.PaginationParams) ([]domain.Profile, int64, error)
	SetPassword(ctx context.Context, id uuid.UUID, current, next string) error
}

// AuthServicer issues, revokes and verifies tokens.
// It also satisfies middleware.Authenticator.
type AuthServicer interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims auth.Claims) error
	Authenticate(ctx context.Context, token string) (uuid.UUID, auth.Claims, error)
}

// TagServicer defines the read-only tag operations.
type TagServicer interface {
	List(ctx context.Context) ([]domain.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

// IngredientServicer defines the read-only ingredient catalog operations.
type IngredientServicer interface {
	List(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ingredient, error)
}

// RecipeServicer defines the recipe operations.
type RecipeServicer interface {
	Create(ctx context.Context, authorID uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error)
	Update(ctx context.Context, userID, id uuid.UUID, in domain.RecipeInput) (domain.RecipeDetail, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Get(ctx context.Context, viewer *uuid.UUID, id uuid.UUID) (domain.RecipeDetail, error)
	List(ctx context.Context, viewer *uuid.UUID, f domain.RecipeFilter, p domain.PaginationParams) ([]domain.RecipeDetail, int64, error)
}

// SelectionServicer adds recipes to and removes them from favorites or the cart.
type SelectionServicer interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) (domain.RecipeShort, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID, kind domain.SelectionKind) error
}

// FollowServicer defines the subscription operations.
type FollowServicer interface {
	Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (domain.Subscription, error)
	Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams, recipesLimit int) ([]domain.Subscription, int64, error)
}

// ShoppingListServicer builds the aggregated shopping list of a selection.
type ShoppingListServicer interface {
	Build(ctx context.Context, userID uuid.UUID, kind domain.SelectionKind) (shoplist.List, error)
}

// ImageURLer turns a stored image path into a public URL.
// *media.Store satisfies it.
type ImageURLer interface {
	URL(rel string) string
}

// Deps groups the Server's collaborators. Nil services are allowed in tests
// that do not reach the corresponding routes.
type Deps struct {
	Users         UserServicer
	Auth          AuthServicer
	Tags          TagServicer
	Ingredients   IngredientServicer
	Recipes       RecipeServicer
	Selections    SelectionServicer
	Follows       FollowServicer
	ShoppingLists ShoppingListServicer
	Images        ImageURLer

	// LoginLimiter throttles POST /api/auth/token/login. Optional.
	LoginLimiter *middleware.RateLimiter

	// OpenAPI is served verbatim at /openapi.yaml when non-empty.
	OpenAPI []byte

	Log *slog.Logger
}

// Server holds every handler dependency.
// Methods are in domain-specific files but all operate on this struct.
type Server struct {
	users         UserServicer
	auth          AuthServicer
	tags          TagServicer
	ingredients   IngredientServicer
	recipes       RecipeServicer
	selections    SelectionServicer
	follows       FollowServicer
	shoppingLists ShoppingListServicer
	images        ImageURLer
	loginLimiter  *middleware.RateLimiter
	openAPI       []byte
	log           *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		users:         d.Users,
		auth:          d.Auth,
		tags:          d.Tags,
		ingredients:   d.Ingredients,
		recipes:       d.Recipes,
		selections:    d.Selections,
		follows:       d.Follows,
		shoppingLists: d.ShoppingLists,
		images:        d.Images,
		loginLimiter:  d.LoginLimiter,
		openAPI:       d.OpenAPI,
		log:           log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Deps{})
}
