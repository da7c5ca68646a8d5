package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/middleware"
)

// pagination is the envelope of every paginated listing.
type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type pageResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func newPage[T any](data []T, p domain.PaginationParams, total int64) pageResponse[T] {
	if data == nil {
		data = []T{}
	}
	return pageResponse[T]{
		Data:       data,
		Pagination: pagination{Page: p.Page, Limit: p.Limit, Total: int(total)},
	}
}

// decodeBody reads a JSON request body into dst. On failure it writes a 422
// (or 413 when the body limit was hit) and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeProblem(w, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		requestProblem(w, "request body is required")
	default:
		requestProblem(w, "malformed request body: "+err.Error())
	}
	return false
}

// pathID binds the {id} path parameter the way generated servers do.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter id: %s", err))
		return uuid.Nil, false
	}
	return id, true
}

// queryInt binds an optional integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return nil, false
	}
	return v, true
}

// pageParams reads ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pageParams(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return domain.PaginationParams{}, false
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// recipesLimit reads ?recipes_limit=; absent or non-positive means all recipes.
func recipesLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	v, ok := queryInt(w, r, "recipes_limit")
	if !ok {
		return 0, false
	}
	if v == nil || *v < 0 {
		return 0, true
	}
	return *v, true
}

// viewer returns the caller's id, or nil for anonymous requests.
func viewer(r *http.Request) *uuid.UUID {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return nil
	}
	id := p.UserID
	return &id
}

// caller returns the authenticated principal. Routes that call it sit
// behind middleware.RequireAuth, so a missing principal is answered with 401.
func caller(w http.ResponseWriter, r *http.Request) (middleware.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthorized", "authentication credentials were not provided")
	}
	return p, ok
}
