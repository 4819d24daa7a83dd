package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AirLinkPros/airlink-backend/internal/middleware"
)

func (h *Handlers) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Post("/signup", h.SignupHandler)

	login := http.Handler(http.HandlerFunc(h.LoginHandler))
	if h.Limiter != nil {
		login = h.Limiter.Middleware(login)
	}
	r.Method(http.MethodPost, "/login", login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(h.Store))

		r.Post("/logout", h.LogoutHandler)
		r.Get("/me", h.MeHandler)
		r.Post("/password", h.UpdatePasswordHandler)
	})

	return r
}
