package employee

import (
	"net/http"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

func (h *Handler) ReportIncidentForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "report_incident", nil)
}

func (h *Handler) ReportIncident(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error submitting report", ReportIncidentPath)
		return
	}

	subject := strings.TrimSpace(r.PostFormValue("subject"))
	narrative := strings.TrimSpace(r.PostFormValue("description"))
	rawTime := strings.TrimSpace(r.PostFormValue("accident_time"))
	if subject == "" || narrative == "" || rawTime == "" {
		web.Flash(r, session.FlashError, "Subject, Description, and Time are required.")
		web.Redirect(w, r, ReportIncidentPath)
		return
	}

	accidentTime, err := utils.ParseTime(rawTime)
	if err != nil {
		web.Fail(w, r, h.Log, err, "Error submitting report", ReportIncidentPath)
		return
	}

	s := session.FromContext(r.Context())
	incident := Incident{
		ReportedByID:  s.UserID,
		TerminalID:    h.terminalFor(s),
		Subject:       subject,
		Narrative:     narrative,
		AccidentTime:  accidentTime,
		Severity:      r.PostFormValue("severity"),
		InvolvedParty: r.PostFormValue("involved_party"),
		Status:        StatusInvestigation,
		UploadedAt:    h.Now().UTC(),
	}

	// One attachment per report; extra files are ignored.
	var object string
	if files := web.Files(r, "attachments"); len(files) > 0 {
		up, err := web.ReadUpload(files[0])
		if err != nil {
			web.Fail(w, r, h.Log, err, "Error submitting report", ReportIncidentPath)
			return
		}

		object = storage.ObjectName("accident_", up.Filename)
		if err := h.upload(r.Context(), object, up, ""); err != nil {
			web.Fail(w, r, h.Log, err, "Error submitting report", ReportIncidentPath)
			return
		}

		link, err := h.Objects.SignedURL(r.Context(), h.Opts.Bucket, object, h.Opts.SignedURLTTL)
		if err != nil {
			h.orphaned(object, err)
			web.Fail(w, r, h.Log, web.Upstream(err), "Error submitting report", ReportIncidentPath)
			return
		}

		filename := up.Filename
		incident.FileName = &filename
		incident.FileURL = &link
		incident.StoragePath = &object
	}

	if err := h.Store.CreateIncident(r.Context(), &incident); err != nil {
		if object != "" {
			h.orphaned(object, err)
		}
		web.Fail(w, r, h.Log, web.Upstream(err), "Error submitting report", ReportIncidentPath)
		return
	}

	h.Log.Infow("incident reported", "incident_id", incident.ID, "reported_by", s.UserID)
	web.Flash(r, session.FlashSuccess, "Incident reported successfully!")
	web.Redirect(w, r, MyIncidentsPath)
}

// terminalFor picks the terminal an incident is filed against: the
// reporter's own, else the configured default, else none.
func (h *Handler) terminalFor(s *session.Session) *string {
	id := s.TerminalID
	if id == "" {
		id = h.Opts.DefaultTerminalID
	}
	if id == "" {
		return nil
	}
	return &id
}

func (h *Handler) MyIncidents(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	incidents, err := h.Store.Incidents(r.Context(), s.UserID)
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading incident history")
	}
	if incidents == nil {
		incidents = []Incident{}
	}
	web.Render(w, r, "my_incidents", map[string]interface{}{"incidents": incidents})
}

func (h *Handler) DownloadIncidentFile(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var incident *Incident
	err := db.ErrNotFound
	if utils.IsUUID(id) {
		incident, err = h.Store.Incident(r.Context(), s.UserID, id)
	}
	if errors.Is(err, db.ErrNotFound) {
		web.Flash(r, session.FlashError, "Incident not found.")
		web.Redirect(w, r, MyIncidentsPath)
		return
	}
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error loading incident", MyIncidentsPath)
		return
	}

	var object, stored string
	if incident.StoragePath != nil {
		object = *incident.StoragePath
	}
	if incident.FileURL != nil {
		stored = *incident.FileURL
	}
	h.redirectToObject(w, r, object, stored, MyIncidentsPath)
}
