package handler

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

type tagResponse struct {
	ID    openapi_types.UUID `json:"id"`
	Name  string             `json:"name"`
	Color string             `json:"color"`
	Slug  string             `json:"slug"`
}

type ingredientResponse struct {
	ID              openapi_types.UUID `json:"id"`
	Name            string             `json:"name"`
	MeasurementUnit string             `json:"measurement_unit"`
}

// ListTags handles GET /api/tags. Tags are not paginated.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.tags.List(r.Context())
	if err != nil {
		s.respondError(w, r, err, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, tagsToResponse(tags))
}

// GetTag handles GET /api/tags/{id}.
func (s *Server) GetTag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tags.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "tag not found")
		return
	}
	writeJSON(w, http.StatusOK, tagToResponse(t))
}

// ListIngredients handles GET /api/ingredients.
// ?name= filters by case-insensitive name prefix. Not paginated.
func (s *Server) ListIngredients(w http.ResponseWriter, r *http.Request) {
	var name *string
	if err := runtime.BindQueryParameter("form", true, false, "name", r.URL.Query(), &name); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter name: %s", err))
		return
	}
	var prefix string
	if name != nil {
		prefix = *name
	}
	ings, err := s.ingredients.List(r.Context(), prefix)
	if err != nil {
		s.respondError(w, r, err, "ingredient not found")
		return
	}
	out := make([]ingredientResponse, len(ings))
	for i, in := range ings {
		out[i] = ingredientResponse{ID: in.ID, Name: in.Name, MeasurementUnit: in.MeasurementUnit}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetIngredient handles GET /api/ingredients/{id}.
func (s *Server) GetIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := s.ingredients.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, "ingredient not found")
		return
	}
	writeJSON(w, http.StatusOK, ingredientResponse{ID: in.ID, Name: in.Name, MeasurementUnit: in.MeasurementUnit})
}

func tagToResponse(t domain.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func tagsToResponse(tags []domain.Tag) []tagResponse {
	out := make([]tagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagToResponse(t)
	}
	return out
}
