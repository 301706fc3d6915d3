package passenger

import (
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes returns the pages mounted under /passenger.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequireRole(session.RolePassenger))

	r.Get("/dashboard", h.Dashboard)
	r.Post("/save_preferences", h.SavePreferences)
	r.Post("/delete_preference/{id}", h.DeletePreference)

	r.Get("/feedback", h.FeedbackForm)
	r.Post("/feedback", h.GiveFeedback)
	r.Get("/my_feedbacks", h.MyFeedbacks)

	r.Get("/complaint", h.ComplaintForm)
	r.Post("/complaint", h.GiveComplaint)
	r.Get("/my_complaints", h.MyComplaints)

	return r
}
