package transit

import (
	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, h *Handler) {
	r.With(middleware.AnyRole()).Get("/live_map", h.LiveMap)
}
