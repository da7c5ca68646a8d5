package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

type recipeIngredientRequest struct {
	ID     openapi_types.UUID `json:"id"`
	Amount int                `json:"amount"`
}

// recipeRequest is the body of POST and PATCH /api/recipes.
// Pointers distinguish an omitted list (keep, on PATCH) from an empty one.
type recipeRequest struct {
	Ingredients *[]recipeIngredientRequest `json:"ingredients"`
	Tags        *[]openapi_types.UUID      `json:"tags"`
	Image       string                     `json:"image"`
	Name        string                     `json:"name"`
	Text        string                     `json:"text"`
	CookingTime int                        `json:"cooking_time"`
}

type recipeIngredientResponse struct {
	ID              openapi_types.UUID `json:"id"`
	Name            string             `json:"name"`
	MeasurementUnit string             `json:"measurement_unit"`
	Amount          int                `json:"amount"`
}

type recipeResponse struct {
	ID               openapi_types.UUID         `json:"id"`
	Tags             []tagResponse              `json:"tags"`
	Author           userResponse               `json:"author"`
	Ingredients      []recipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

type recipeShortResponse struct {
	ID          openapi_types.UUID `json:"id"`
	Name        string             `json:"name"`
	Image       string             `json:"image"`
	CookingTime int                `json:"cooking_time"`
}

// CreateRecipe handles POST /api/recipes.
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	var body recipeRequest
	if !decodeBody(w, r, &body) {
		return
	}
	created, err := s.recipes.Create(r.Context(), p.UserID, requestToRecipeInput(body))
	if err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.recipeToResponse(created))
}

// ListRecipes handles GET /api/recipes.
// Supports ?page=, ?limit=, repeatable ?tags=<slug>, ?author=<id>,
// ?is_favorited=1 and ?is_in_shopping_cart=1. The last two only apply to
// authenticated callers.
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	p, ok := pageParams(w, r)
	if !ok {
		return
	}
	f, ok := recipeFilter(w, r)
	if !ok {
		return
	}
	details, total, err := s.recipes.List(r.Context(), viewer(r), f, p)
	if err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	data := make([]recipeResponse, len(details))
	for i, d := range details {
		data[i] = s.recipeToResponse(d)
	}
	writeJSON(w, http.StatusOK, newPage(data, p, total))
}

// GetRecipe handles GET /api/recipes/{id}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := s.recipes.Get(r.Context(), viewer(r), id)
	if err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, s.recipeToResponse(d))
}

// UpdateRecipe handles PATCH /api/recipes/{id}.
func (s *Server) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body recipeRequest
	if !decodeBody(w, r, &body) {
		return
	}
	updated, err := s.recipes.Update(r.Context(), p.UserID, id, requestToRecipeInput(body))
	if err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, s.recipeToResponse(updated))
}

// DeleteRecipe handles DELETE /api/recipes/{id}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.recipes.Delete(r.Context(), p.UserID, id); err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// recipeFilter binds the listing filters from the query string.
func recipeFilter(w http.ResponseWriter, r *http.Request) (domain.RecipeFilter, bool) {
	var (
		f      domain.RecipeFilter
		tags   *[]string
		author *openapi_types.UUID
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "tags", q, &tags); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter tags: %s", err))
		return f, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "author", q, &author); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter author: %s", err))
		return f, false
	}
	favorited, ok := queryInt(w, r, "is_favorited")
	if !ok {
		return f, false
	}
	inCart, ok := queryInt(w, r, "is_in_shopping_cart")
	if !ok {
		return f, false
	}

	if tags != nil {
		f.TagSlugs = *tags
	}
	if author != nil {
		id := uuid.UUID(*author)
		f.AuthorID = &id
	}
	f.IsFavorited = favorited != nil && *favorited == 1
	f.IsInShoppingCart = inCart != nil && *inCart == 1
	return f, true
}

// requestToRecipeInput converts the request body into a domain.RecipeInput.
// Omitted lists stay nil; present ones are non-nil even when empty.
func requestToRecipeInput(body recipeRequest) domain.RecipeInput {
	in := domain.RecipeInput{
		Name:        body.Name,
		Text:        body.Text,
		CookingTime: body.CookingTime,
		Image:       body.Image,
	}
	if body.Ingredients != nil {
		in.Ingredients = make([]domain.IngredientInput, 0, len(*body.Ingredients))
		for _, it := range *body.Ingredients {
			in.Ingredients = append(in.Ingredients, domain.IngredientInput{ID: it.ID, Amount: it.Amount})
		}
	}
	if body.Tags != nil {
		in.Tags = make([]uuid.UUID, 0, len(*body.Tags))
		in.Tags = append(in.Tags, *body.Tags...)
	}
	return in
}

// recipeToResponse converts a domain.RecipeDetail into its JSON form.
func (s *Server) recipeToResponse(d domain.RecipeDetail) recipeResponse {
	ings := make([]recipeIngredientResponse, len(d.Ingredients))
	for i, it := range d.Ingredients {
		ings[i] = recipeIngredientResponse{
			ID:              it.IngredientID,
			Name:            it.Name,
			MeasurementUnit: it.MeasurementUnit,
			Amount:          it.Amount,
		}
	}
	return recipeResponse{
		ID:               d.ID,
		Tags:             tagsToResponse(d.Tags),
		Author:           profileToResponse(d.Author),
		Ingredients:      ings,
		IsFavorited:      d.IsFavorited,
		IsInShoppingCart: d.IsInShoppingCart,
		Name:             d.Name,
		Image:            s.imageURL(d.Image),
		Text:             d.Text,
		CookingTime:      d.CookingTime,
	}
}

func (s *Server) recipeShortToResponse(rs domain.RecipeShort) recipeShortResponse {
	return recipeShortResponse{
		ID:          rs.ID,
		Name:        rs.Name,
		Image:       s.imageURL(rs.Image),
		CookingTime: rs.CookingTime,
	}
}

// imageURL returns the public URL of a stored image path.
func (s *Server) imageURL(rel string) string {
	if s.images == nil {
		return rel
	}
	return s.images.URL(rel)
}
