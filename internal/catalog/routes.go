package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

func (c *Catalog) CategoryHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.Categories)
}

func (c *Catalog) TestimonialHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, c.Testimonials)
}

func (c *Catalog) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/categories", c.CategoryHandler)
	r.Get("/testimonials", c.TestimonialHandler)

	return r
}
