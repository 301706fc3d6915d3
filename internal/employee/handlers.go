package employee

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/pdfmeta"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/WaveLink/WL-Backend/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DashboardPath         = "/employee/dashboard"
	UploadCertificatePath = "/employee/upload_certificate"
	MyCertificatesPath    = "/employee/my_certificates"
	ReportIncidentPath    = "/employee/report_incident"
	MyIncidentsPath       = "/employee/my_incidents"

	DefaultCategory = "non_technical"
)

// Options are the deployment settings the employee pages need.
type Options struct {
	Bucket string
	// SignedURLTTL is the lifetime of the link stored with an incident.
	SignedURLTTL time.Duration
	// DownloadURLTTL is the lifetime of links minted by download routes.
	DownloadURLTTL time.Duration
	// DefaultTerminalID is used for incidents when the reporter has no
	// terminal.
	DefaultTerminalID string
}

type Handler struct {
	Store     Store
	Objects   storage.ObjectStore
	Extractor pdfmeta.Extractor
	Opts      Options
	Log       *zap.SugaredLogger
	Now       func() time.Time
}

func NewHandler(store Store, objects storage.ObjectStore, extractor pdfmeta.Extractor, opts Options, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Store:     store,
		Objects:   objects,
		Extractor: extractor,
		Opts:      opts,
		Log:       log,
		Now:       time.Now,
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	category := s.Category
	if category == "" {
		category = DefaultCategory
	}
	web.Render(w, r, "employee_dashboard", map[string]interface{}{
		"category":       category,
		"category_label": utils.TitleRole(category),
	})
}

// upload stores up under name. An empty contentType keeps the browser's.
func (h *Handler) upload(ctx context.Context, name string, up *web.Upload, contentType string) error {
	if contentType == "" {
		contentType = up.ContentType
	}
	if err := h.Objects.Upload(ctx, h.Opts.Bucket, name, bytes.NewReader(up.Body), contentType); err != nil {
		return web.Upstream(err)
	}
	return nil
}

// orphaned logs an object whose database row could not be written.
func (h *Handler) orphaned(name string, err error) {
	h.Log.Warnw("uploaded object has no record", "object", name, "bucket", h.Opts.Bucket, "error", err)
}

func (h *Handler) UploadCertificateForm(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "upload_certificate", nil)
}

// CertificateAnalysis is the pre-fill answer for a picked certificate file.
type CertificateAnalysis struct {
	CertificateName string `json:"certificate_name"`
	ExpiryDate      string `json:"expiry_date"`
}

// UploadCertificate serves both the analysis call the form makes when a file
// is picked (file_for_analysis) and the final submission.
func (h *Handler) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	if err := web.ParseForm(w, r); err != nil {
		web.Fail(w, r, h.Log, err, "Error uploading certificate", UploadCertificatePath)
		return
	}

	if files := web.Files(r, "file_for_analysis"); len(files) > 0 {
		h.analyzeCertificate(w, r, files[0])
		return
	}

	name := strings.TrimSpace(r.PostFormValue("certificate_name"))
	typ := strings.TrimSpace(r.PostFormValue("certificate_type"))
	files := web.Files(r, "attachments")
	if name == "" || typ == "" || len(files) == 0 {
		web.Flash(r, session.FlashError, "Certificate name, type, and file are required.")
		web.Redirect(w, r, UploadCertificatePath)
		return
	}

	var expiry *time.Time
	if raw := strings.TrimSpace(r.PostFormValue("expiry_date")); raw != "" {
		d, err := utils.ParseDate(raw)
		if err != nil {
			web.Fail(w, r, h.Log, err, "Error uploading certificate", UploadCertificatePath)
			return
		}
		expiry = &d
	}

	up, err := web.ReadUpload(files[0])
	if err != nil {
		web.Fail(w, r, h.Log, err, "Error uploading certificate", UploadCertificatePath)
		return
	}

	object := storage.ObjectName("cert_", up.Filename)
	if err := h.upload(r.Context(), object, up, "application/pdf"); err != nil {
		web.Fail(w, r, h.Log, err, "Error uploading certificate", UploadCertificatePath)
		return
	}

	cert := Certificate{
		EmployeeID:      session.FromContext(r.Context()).UserID,
		CertificateName: name,
		Type:            typ,
		ExpiryDate:      expiry,
		FileName:        up.Filename,
		FileURL:         h.Objects.PublicURL(h.Opts.Bucket, object),
		StoragePath:     object,
		UploadedAt:      h.Now().UTC(),
		Status:          StatusPending,
	}
	if err := h.Store.CreateCertificate(r.Context(), &cert); err != nil {
		h.orphaned(object, err)
		web.Fail(w, r, h.Log, web.Upstream(err), "Error uploading certificate", UploadCertificatePath)
		return
	}

	web.Flash(r, session.FlashSuccess, "Certificate submitted for verification!")
	web.Redirect(w, r, MyCertificatesPath)
}

func (h *Handler) analyzeCertificate(w http.ResponseWriter, r *http.Request, fh *multipart.FileHeader) {
	base := filepath.Base(fh.Filename)
	out := CertificateAnalysis{CertificateName: strings.TrimSuffix(base, filepath.Ext(base))}

	f, err := fh.Open()
	if err != nil {
		h.Log.Warnw("certificate analysis failed", "file", base, "error", err)
		web.JSON(w, http.StatusOK, out)
		return
	}
	defer f.Close()

	date, err := h.Extractor.ExpiryDate(f)
	if err != nil {
		h.Log.Infow("no certificate metadata", "file", base, "error", err)
	}
	out.ExpiryDate = date
	web.JSON(w, http.StatusOK, out)
}

func (h *Handler) MyCertificates(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())

	certs, err := h.Store.Certificates(r.Context(), s.UserID)
	if err != nil {
		web.Report(r, h.Log, web.Upstream(err), "Error loading certificate history")
	}
	if certs == nil {
		certs = []Certificate{}
	}
	web.Render(w, r, "my_certificates", map[string]interface{}{"certificates": certs})
}

// DownloadCertificate redirects the owner to a short-lived link for the
// stored file.
func (h *Handler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var cert *Certificate
	var err error
	if utils.IsUUID(id) {
		cert, err = h.Store.Certificate(r.Context(), s.UserID, id)
	} else {
		err = db.ErrNotFound
	}
	if errors.Is(err, db.ErrNotFound) {
		web.Flash(r, session.FlashError, "Certificate not found.")
		web.Redirect(w, r, MyCertificatesPath)
		return
	}
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error loading certificate", MyCertificatesPath)
		return
	}

	h.redirectToObject(w, r, cert.StoragePath, cert.FileURL, MyCertificatesPath)
}

// redirectToObject signs object for a short download, falling back to the
// stored URL for rows that predate stored object paths.
func (h *Handler) redirectToObject(w http.ResponseWriter, r *http.Request, object, storedURL, fallback string) {
	if object == "" {
		if storedURL == "" {
			web.Flash(r, session.FlashError, "No file is attached.")
			web.Redirect(w, r, fallback)
			return
		}
		http.Redirect(w, r, storedURL, http.StatusFound)
		return
	}

	link, err := h.Objects.SignedURL(r.Context(), h.Opts.Bucket, object, h.Opts.DownloadURLTTL)
	if err != nil {
		web.Fail(w, r, h.Log, web.Upstream(err), "Error creating download link", fallback)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}
