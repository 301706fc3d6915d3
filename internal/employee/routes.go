package employee

import (
	"net/http"

	"github.com/WaveLink/WL-Backend/internal/middleware"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes returns the pages mounted under /employee.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequireRole(session.RoleEmployee))

	r.Get("/dashboard", h.Dashboard)

	r.Get("/upload_certificate", h.UploadCertificateForm)
	r.Post("/upload_certificate", h.UploadCertificate)
	r.Get("/my_certificates", h.MyCertificates)
	r.Get("/certificates/{id}/download", h.DownloadCertificate)

	r.Get("/report_incident", h.ReportIncidentForm)
	r.Post("/report_incident", h.ReportIncident)
	r.Get("/my_incidents", h.MyIncidents)
	r.Get("/incidents/{id}/download", h.DownloadIncidentFile)

	r.Post("/upload_repair", h.UploadRepair)

	return r
}

// SetupAPIRoutes returns the direct upload endpoints mounted under /api.
func SetupAPIRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequireRole(session.RoleEmployee))

	r.Post("/get-upload-link", h.UploadLink)
	r.Post("/record-document", h.RecordDocument)

	return r
}
