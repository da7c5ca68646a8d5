package handler

import (
	"net/http"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// subscriptionResponse is an author the caller follows, with a preview of
// their newest recipes.
type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShortResponse `json:"recipes"`
	RecipesCount int                   `json:"recipes_count"`
}

// Subscribe handles POST /api/users/{id}/subscribe.
// ?recipes_limit= caps the recipe preview.
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	limit, ok := recipesLimit(w, r)
	if !ok {
		return
	}
	sub, err := s.follows.Subscribe(r.Context(), p.UserID, id, limit)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.subscriptionToResponse(sub))
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe.
func (s *Server) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.follows.Unsubscribe(r.Context(), p.UserID, id); err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/users/subscriptions.
// Supports ?page=, ?limit= and ?recipes_limit=.
func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	pp, ok := pageParams(w, r)
	if !ok {
		return
	}
	limit, ok := recipesLimit(w, r)
	if !ok {
		return
	}
	subs, total, err := s.follows.List(r.Context(), p.UserID, pp, limit)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	data := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		data[i] = s.subscriptionToResponse(sub)
	}
	writeJSON(w, http.StatusOK, newPage(data, pp, total))
}

func (s *Server) subscriptionToResponse(sub domain.Subscription) subscriptionResponse {
	recipes := make([]recipeShortResponse, len(sub.Recipes))
	for i, rs := range sub.Recipes {
		recipes[i] = s.recipeShortToResponse(rs)
	}
	return subscriptionResponse{
		userResponse: profileToResponse(sub.Profile),
		Recipes:      recipes,
		RecipesCount: sub.RecipesCount,
	}
}
