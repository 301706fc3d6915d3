package auth

import (
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes adds the session lifecycle pages to the root router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Index)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRequired())

		r.Get("/profile", h.Profile)
		r.Post("/profile", h.UpdateProfile)
	})
}
