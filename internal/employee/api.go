package employee

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/storage"
	"github.com/WaveLink/WL-Backend/internal/web"
)

// UploadLinkTTL is how long a direct upload link stays valid.
const UploadLinkTTL = 15 * time.Minute

const maxJSONBytes = 1 << 20

type uploadLinkRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"max=255"`
}

type UploadLink struct {
	SignedURL   string `json:"signed_url"`
	StoragePath string `json:"storage_path"`
}

// documentPrefix is where an employee's direct uploads live.
func documentPrefix(userID string) string {
	return "documents/" + userID + "/"
}

// UploadLink hands the browser a presigned PUT URL under the employee's own
// document prefix.
func (h *Handler) UploadLink(w http.ResponseWriter, r *http.Request) {
	var req uploadLinkRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid Request Format")
		return
	}
	if err := web.Validate(req); err != nil {
		web.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	s := session.FromContext(r.Context())
	object := storage.ObjectName(documentPrefix(s.UserID), path.Base(req.Filename))

	link, err := h.Objects.SignedUploadURL(r.Context(), h.Opts.Bucket, object, req.ContentType, UploadLinkTTL)
	if err != nil {
		h.Log.Errorw("failed to sign upload link", "error", err, "upstream", true)
		web.Error(w, http.StatusBadGateway, "Could not create upload link")
		return
	}

	web.JSON(w, http.StatusOK, UploadLink{SignedURL: link, StoragePath: object})
}

type recordDocumentRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	StoragePath string `json:"storage_path" validate:"required,max=1024"`
}

// RecordDocument saves the row for a file uploaded through UploadLink. The
// path may be the storage_path returned with the link or the path of the
// signed URL itself; either way it must sit under the caller's prefix.
func (h *Handler) RecordDocument(w http.ResponseWriter, r *http.Request) {
	var req recordDocumentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid Request Format")
		return
	}
	if err := web.Validate(req); err != nil {
		web.Error(w, http.StatusBadRequest, "filename and storage_path are required")
		return
	}

	s := session.FromContext(r.Context())
	object, ok := ownedObject(req.StoragePath, s.UserID)
	if !ok {
		web.Error(w, http.StatusForbidden, "storage_path is not yours")
		return
	}

	doc := Document{EmployeeID: s.UserID, FileName: req.Filename, StoragePath: object}
	if err := h.Store.CreateDocument(r.Context(), &doc); err != nil {
		h.Log.Errorw("failed to record document", "error", err, "object", object, "upstream", true)
		web.Error(w, http.StatusBadGateway, "Could not save record")
		return
	}

	web.JSON(w, http.StatusCreated, map[string]string{"id": doc.ID})
}

// ownedObject cuts p down to the object name starting at the user's prefix.
// p may be a URL path, so it is unescaped first.
func ownedObject(p, userID string) (string, bool) {
	p, err := url.PathUnescape(p)
	if err != nil {
		return "", false
	}
	prefix := documentPrefix(userID)
	i := strings.Index(p, prefix)
	if i < 0 {
		return "", false
	}
	object := p[i:]
	if strings.Contains(object, "..") || len(object) == len(prefix) {
		return "", false
	}
	return object, true
}
