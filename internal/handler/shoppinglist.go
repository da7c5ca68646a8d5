package handler

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/foodgram/backend/internal/domain"
	"github.com/pkordes/foodgram/backend/internal/shoplist"
)

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart.
// It returns the aggregated ingredients of every recipe in the caller's cart
// as a text/plain attachment named cart.txt. Use ?format=csv for CSV.
func (s *Server) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, domain.SelectionCart, "cart")
}

// DownloadFavorites handles GET /api/recipes/download_favorites.
// Same as DownloadShoppingCart over the favorites list; the file is list.txt.
func (s *Server) DownloadFavorites(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, domain.SelectionFavorite, "list")
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, kind domain.SelectionKind, name string) {
	p, ok := caller(w, r)
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeProblem(w, http.StatusBadRequest, "validation_error", fmt.Sprintf("Invalid format for parameter format: %s", err))
		return
	}
	wantCSV := format != nil && *format == "csv"
	if format != nil && !wantCSV && *format != "txt" {
		writeProblem(w, http.StatusBadRequest, "validation_error", "format must be txt or csv")
		return
	}

	list, err := s.shoppingLists.Build(r.Context(), p.UserID, kind)
	if err != nil {
		s.respondError(w, r, err, "user not found")
		return
	}

	if wantCSV {
		body, err := shoplist.RenderCSV(list)
		if err != nil {
			s.respondError(w, r, err, "")
			return
		}
		writeAttachment(w, "text/csv; charset=utf-8", name+".csv", body)
		return
	}
	writeAttachment(w, "text/plain; charset=utf-8", name+".txt", []byte(shoplist.Render(list)))
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
