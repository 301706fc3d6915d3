package employee

import (
	"net/http"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/web"
)

// UploadRepair files a repair request. Attachment links are appended to the
// description for readers of the plain text and kept as a list as well.
func (h *Handler) UploadRepair(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error submitting repair report", DashboardPath)
		return
	}

	subject := strings.TrimSpace(r.PostFormValue("subject"))
	description := strings.TrimSpace(r.PostFormValue("description"))
	if subject == "" || description == "" {
		web.Flash(r, session.FlashError, "Repair title and description are required.")
		web.Redirect(w, r, DashboardPath)
		return
	}

	var urls, objects []string
	for _, fh := range web.Files(r, "attachments") {
		up, err := web.ReadUpload(fh)
		if err != nil {
			web.Fail(w, r, h.Log, err, "Error submitting repair report", DashboardPath)
			return
		}
		object := storage.ObjectName("repair_", up.Filename)
		if err := h.upload(r.Context(), object, up, ""); err != nil {
			web.Fail(w, r, h.Log, err, "Error submitting repair report", DashboardPath)
			return
		}
		objects = append(objects, object)
		urls = append(urls, h.Objects.PublicURL(h.Opts.Bucket, object))
	}

	var text strings.Builder
	text.WriteString(description)
	for _, u := range urls {
		text.WriteString("\n\n[Attached File: ")
		text.WriteString(u)
		text.WriteString("]")
	}

	s := session.FromContext(r.Context())
	repair := Repair{
		ReportedByID:   s.UserID,
		Subject:        subject,
		Description:    text.String(),
		Status:         StatusPending,
		Priority:       PriorityMedium,
		AttachmentURLs: urls,
		ReportedAt:     h.Now().UTC(),
	}
	if s.TerminalID != "" {
		terminal := s.TerminalID
		repair.TerminalID = &terminal
	}

	if err := h.Store.CreateRepair(r.Context(), &repair); err != nil {
		for _, o := range objects {
			h.orphaned(o, err)
		}
		web.Fail(w, r, h.Log, web.Upstream(err), "Error submitting repair report", DashboardPath)
		return
	}

	web.Flash(r, session.FlashSuccess, "Repair report submitted successfully!")
	web.Redirect(w, r, DashboardPath)
}
