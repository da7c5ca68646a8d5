package handler

import (
	"errors"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/foodgram/backend/internal/domain"
)

type userResponse struct {
	ID           openapi_types.UUID  `json:"id"`
	Email        openapi_types.Email `json:"email"`
	Username     string              `json:"username"`
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	IsSubscribed bool                `json:"is_subscribed"`
}

type registeredUserResponse struct {
	ID        openapi_types.UUID  `json:"id"`
	Email     openapi_types.Email `json:"email"`
	Username  string              `json:"username"`
	FirstName string              `json:"first_name"`
	LastName  string              `json:"last_name"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// RegisterUser handles POST /api/users.
func (s *Server) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if !decodeBody(w, r, &body) {
		return
	}
	u, err := s.users.Register(r.Context(), domain.Registration{
		Email:     body.Email,
		Username:  body.Username,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Password:  body.Password,
	})
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, registeredUserResponse{
		ID:        u.ID,
		Email:     openapi_types.Email(u.Email),
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

// ListUsers handles GET /api/users.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := pageParams(w, r)
	if !ok {
		return
	}
	profiles, total, err := s.users.List(r.Context(), viewer(r), p)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	data := make([]userResponse, len(profiles))
	for i, pr := range profiles {
		data[i] = profileToResponse(pr)
	}
	writeJSON(w, http.StatusOK, newPage(data, p, total))
}

// GetUser handles GET /api/users/{id}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pr, err := s.users.Get(r.Context(), viewer(r), id)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(pr))
}

// GetMe handles GET /api/users/me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	pr, err := s.users.Me(r.Context(), p.UserID)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, profileToResponse(pr))
}

// SetPassword handles POST /api/users/set_password.
func (s *Server) SetPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	var body setPasswordRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.users.SetPassword(r.Context(), p.UserID, body.CurrentPassword, body.NewPassword); err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Login handles POST /api/auth/token/login.
// Wrong credentials are answered with 400 invalid_credentials, not 401.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeBody(w, r, &body) {
		return
	}
	token, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeProblem(w, http.StatusBadRequest, "invalid_credentials", "unable to log in with provided credentials")
			return
		}
		s.respondError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AuthToken: token})
}

// Logout handles POST /api/auth/token/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	if err := s.auth.Logout(r.Context(), p.Claims); err != nil {
		s.respondError(w, r, err, "token not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

func profileToResponse(p domain.Profile) userResponse {
	return userResponse{
		ID:           p.ID,
		Email:        openapi_types.Email(p.Email),
		Username:     p.Username,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		IsSubscribed: p.IsSubscribed,
	}
}
