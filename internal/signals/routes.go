package signals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AirLinkPros/airlink-backend/internal/middleware"
)

// Contractor is the role allowed to build lead rules.
const Contractor = "CONTRACTOR"

func (h *Handlers) SetupRoutes(sessions middleware.SessionFetcher, roles middleware.RoleFetcher) http.Handler {
	r := chi.NewRouter()

	r.Get("/preview", h.PreviewHandler)
	r.Get("/types", h.TypesHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Get("/feed", h.FeedHandler)
		r.Get("/feed.csv", h.ExportHandler)
		r.Post("/seen", h.SeenHandler)

		r.With(middleware.RoleMiddleware(roles, Contractor)).
			Post("/rules/preview", h.RulePreviewHandler)
	})

	return r
}
