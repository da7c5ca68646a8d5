package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/foodgram/backend/internal/middleware"
)

// Routes returns the API router. The caller applies the outer middleware
// (request id, logging, recovery, CORS, body limit) and mounts it at "/".
//
// Read endpoints accept anonymous callers; everything that writes or is
// scoped to "me" sits behind middleware.RequireAuth.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	if len(s.openAPI) > 0 {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	r.Route("/api", func(r chi.Router) {
		if s.auth != nil {
			r.Use(middleware.Authenticate(s.auth))
		}

		r.Route("/auth/token", func(r chi.Router) {
			login := http.Handler(http.HandlerFunc(s.Login))
			if s.loginLimiter != nil {
				login = s.loginLimiter.Handler(login)
			}
			r.Method(http.MethodPost, "/login", login)
			r.With(middleware.RequireAuth).Post("/logout", s.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.RegisterUser)
			r.Get("/", s.ListUsers)
			r.Get("/{id}", s.GetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", s.GetMe)
				r.Post("/set_password", s.SetPassword)
				r.Get("/subscriptions", s.ListSubscriptions)
				r.Post("/{id}/subscribe", s.Subscribe)
				r.Delete("/{id}/subscribe", s.Unsubscribe)
			})
		})

		r.Get("/tags", s.ListTags)
		r.Get("/tags/{id}", s.GetTag)
		r.Get("/ingredients", s.ListIngredients)
		r.Get("/ingredients/{id}", s.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", s.ListRecipes)
			r.Get("/{id}", s.GetRecipe)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", s.CreateRecipe)
				r.Patch("/{id}", s.UpdateRecipe)
				r.Delete("/{id}", s.DeleteRecipe)

				r.Post("/{id}/favorite", s.AddFavorite)
				r.Delete("/{id}/favorite", s.RemoveFavorite)
				r.Post("/{id}/shopping_cart", s.AddToShoppingCart)
				r.Delete("/{id}/shopping_cart", s.RemoveFromShoppingCart)

				r.Get("/download_shopping_cart", s.DownloadShoppingCart)
				r.Get("/download_favorites", s.DownloadFavorites)
			})
		})
	})

	return r
}
