package passenger

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/transit"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	DashboardPath   = "/passenger/dashboard"
	FeedbackPath    = "/passenger/feedback"
	MyFeedbacksPath = "/passenger/my_feedbacks"
	ComplaintPath   = "/passenger/complaint"
	MyComplaintPath = "/passenger/my_complaints"
)

type Handler struct {
	Store   Store
	Network transit.Network
	Objects storage.ObjectStore
	Bucket  string
	Log     *zap.SugaredLogger
	Now     func() time.Time
}

func NewHandler(store Store, network transit.Network, objects storage.ObjectStore, bucket string, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Store:   store,
		Network: network,
		Objects: objects,
		Bucket:  bucket,
		Log:     log,
		Now:     time.Now,
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	prefs, err := h.Store.Preferences(r.Context(), s.UserID)
	var terminals []transit.Terminal
	if err == nil {
		terminals, err = h.Network.Terminals(r.Context())
	}
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading dashboard data")
	}
	if prefs == nil {
		prefs = []Preference{}
	}
	if terminals == nil {
		terminals = []transit.Terminal{}
	}

	web.Render(w, r, "passenger_dashboard", map[string]interface{}{
		"preferences": prefs,
		"terminals":   terminals,
		"time_slots":  TimeSlots(),
	})
}

// SavePreferences only adds; existing preferences are left alone.
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error saving preferences", DashboardPath)
		return
	}
	s := session.FromContext(r.Context())

	rows := Rows(r.PostForm["from_terminal_id"], r.PostForm["to_terminal_id"], r.PostForm["preferred_time"])
	plan, err := PlanPreferences(r.Context(), h.Store, h.Network, s.UserID, rows)
	for _, n := range plan.Notices {
		web.Flash(r, n.Category, n.Message)
	}
	if err == nil && len(plan.New) > 0 {
		err = h.Store.AddPreferences(r.Context(), plan.New)
	}
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error saving preferences", DashboardPath)
		return
	}

	h.Log.Infow("preferences saved", "passenger_id", s.UserID, "added", len(plan.New), "rows", len(rows))
	web.Flash(r, session.FlashSuccess, msgPreferencesSent)
	web.Redirect(w, r, DashboardPath)
}

func (h *Handler) DeletePreference(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	removed := false
	if utils.IsUUID(id) {
		var err error
		removed, err = h.Store.DeletePreference(r.Context(), s.UserID, id)
		if err != nil {
			web.Fail(w, r, h.Log, web.Upstream(err), "Error removing preference", DashboardPath)
			return
		}
	}

	if removed {
		web.Flash(r, session.FlashSuccess, "Preference removed successfully.")
	} else {
		web.Flash(r, session.FlashError, "Could not find preference to remove.")
	}
	web.Redirect(w, r, DashboardPath)
}

// storeAttachments uploads every file in the attachments field under
// prefix and returns their rows, unlinked.
func (h *Handler) storeAttachments(ctx context.Context, r *http.Request, prefix string) ([]Attachment, error) {
	var out []Attachment
	for _, fh := range web.Files(r, "attachments") {
		up, err := web.ReadUpload(fh)
		if err != nil {
			return out, err
		}
		object := storage.ObjectName(prefix, up.Filename)
		if err := h.Objects.Upload(ctx, h.Bucket, object, bytes.NewReader(up.Body), up.ContentType); err != nil {
			return out, web.Upstream(err)
		}
		out = append(out, Attachment{
			FileURL:     h.Objects.PublicURL(h.Bucket, object),
			FileType:    up.ContentType,
			StoragePath: object,
		})
	}
	return out, nil
}

func (h *Handler) recordAttachments(ctx context.Context, attachments []Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	if err := h.Store.AddAttachments(ctx, attachments); err != nil {
		for _, a := range attachments {
			h.Log.Warnw("uploaded object has no record", "object", a.StoragePath, "bucket", h.Bucket, "error", err)
		}
		return web.Upstream(err)
	}
	return nil
}

func (h *Handler) FeedbackForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "give_feedback", nil)
}

func (h *Handler) GiveFeedback(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Report(r, h.Log, err, "Error submitting feedback")
		web.Render(w, r, "give_feedback", nil)
		return
	}

	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		web.Flash(r, session.FlashError, "Message is required.")
		web.Redirect(w, r, FeedbackPath)
		return
	}

	s := session.FromContext(r.Context())
	fb := Feedback{
		PassengerID: s.UserID,
		Subject:     strings.TrimSpace(r.PostFormValue("subject")),
		Message:     message,
		SubmittedAt: h.Now().UTC(),
	}
	if err := h.submitFeedback(r, &fb); err != nil {
		web.Report(r, h.Log, err, "Error submitting feedback")
		web.Render(w, r, "give_feedback", nil)
		return
	}

	web.Flash(r, session.FlashSuccess, "Feedback submitted successfully!")
	web.Redirect(w, r, MyFeedbacksPath)
}

func (h *Handler) submitFeedback(r *http.Request, fb *Feedback) error {
	if err := h.Store.CreateFeedback(r.Context(), fb); err != nil {
		return web.Upstream(err)
	}
	attachments, err := h.storeAttachments(r.Context(), r, fb.PassengerID+"/"+fb.ID+"_")
	if err != nil {
		return err
	}
	for i := range attachments {
		attachments[i].FeedbackID = &fb.ID
	}
	return h.recordAttachments(r.Context(), attachments)
}

func (h *Handler) MyFeedbacks(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	feedbacks, err := h.Store.Feedbacks(r.Context(), s.UserID)
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading feedback history")
	}
	if feedbacks == nil {
		feedbacks = []Feedback{}
	}
	web.Render(w, r, "previous_feedbacks", map[string]interface{}{"feedbacks": feedbacks})
}

func (h *Handler) ComplaintForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "give_complaint", nil)
}

func (h *Handler) GiveComplaint(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Report(r, h.Log, err, "Error submitting complaint")
		web.Render(w, r, "give_complaint", nil)
		return
	}

	message := strings.TrimSpace(r.PostFormValue("message"))
	if message == "" {
		web.Flash(r, session.FlashError, "Complaint message is required.")
		web.Redirect(w, r, ComplaintPath)
		return
	}

	s := session.FromContext(r.Context())
	c := Complaint{
		PassengerID: s.UserID,
		Subject:     strings.TrimSpace(r.PostFormValue("subject")),
		Message:     message,
		Status:      StatusPending,
		SubmittedAt: h.Now().UTC(),
	}
	if err := h.submitComplaint(r, &c); err != nil {
		web.Report(r, h.Log, err, "Error submitting complaint")
		web.Render(w, r, "give_complaint", nil)
		return
	}

	web.Flash(r, session.FlashSuccess, "Complaint submitted successfully! We will review it shortly.")
	web.Redirect(w, r, MyComplaintPath)
}

func (h *Handler) submitComplaint(r *http.Request, c *Complaint) error {
	if err := h.Store.CreateComplaint(r.Context(), c); err != nil {
		return web.Upstream(err)
	}
	attachments, err := h.storeAttachments(r.Context(), r, c.PassengerID+"/complaint_"+c.ID+"_")
	if err != nil {
		return err
	}
	for i := range attachments {
		attachments[i].ComplaintID = &c.ID
	}
	return h.recordAttachments(r.Context(), attachments)
}

func (h *Handler) MyComplaints(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	complaints, err := h.Store.Complaints(r.Context(), s.UserID)
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading complaint history")
	}
	if complaints == nil {
		complaints = []Complaint{}
	}
	web.Render(w, r, "previous_complaints", map[string]interface{}{"complaints": complaints})
}
