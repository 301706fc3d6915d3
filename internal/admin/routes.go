package admin

import (
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(session.RoleAdmin))

		r.Get(middleware.AdminDashboardPath, h.Dashboard)
		r.Get(AddEmployeePath, h.AddEmployeeForm)
		r.Post(AddEmployeePath, h.AddEmployee)
	})
}
