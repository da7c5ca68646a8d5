package handler

import (
	"net/http"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

// AddFavorite handles POST /api/recipes/{id}/favorite.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	s.addSelection(w, r, domain.SelectionFavorite)
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite.
func (s *Server) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	s.removeSelection(w, r, domain.SelectionFavorite)
}

// AddToShoppingCart handles POST /api/recipes/{id}/shopping_cart.
func (s *Server) AddToShoppingCart(w http.ResponseWriter, r *http.Request) {
	s.addSelection(w, r, domain.SelectionCart)
}

// RemoveFromShoppingCart handles DELETE /api/recipes/{id}/shopping_cart.
func (s *Server) RemoveFromShoppingCart(w http.ResponseWriter, r *http.Request) {
	s.removeSelection(w, r, domain.SelectionCart)
}

func (s *Server) addSelection(w http.ResponseWriter, r *http.Request, kind domain.SelectionKind) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	short, err := s.selections.Add(r.Context(), p.UserID, id, kind)
	if err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	writeJSON(w, http.StatusCreated, s.recipeShortToResponse(short))
}

func (s *Server) removeSelection(w http.ResponseWriter, r *http.Request, kind domain.SelectionKind) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.selections.Remove(r.Context(), p.UserID, id, kind); err != nil {
		s.respondError(w, r, err, "recipe not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
