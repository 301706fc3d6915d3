package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Viewer is the identity exposed to rendered pages.
type Viewer struct {
	UserID   string       `json:"user_id"`
	Email    string       `json:"email"`
	FullName string       `json:"full_name"`
	Role     session.Role `json:"role"`
	Category string       `json:"category,omitempty"`
}

// Page is the document handed to the presentation layer.
type Page struct {
	View    string          `json:"view"`
	Flashes []session.Flash `json:"flashes,omitempty"`
	User    *Viewer         `json:"user,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
}

// Flash queues a message for the next rendered page.
func Flash(r *http.Request, category, message string) {
	session.FromContext(r.Context()).AddFlash(category, message)
}

// Redirect saves the session and redirects to path.
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if err := session.Save(w, r); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// Render consumes pending flashes, saves the session and writes the page.
func Render(w http.ResponseWriter, r *http.Request, view string, data interface{}) {
	s := session.FromContext(r.Context())
	page := Page{
		View:    view,
		Flashes: s.PopFlashes(),
		Data:    data,
	}
	if s.Authenticated() {
		page.User = &Viewer{
			UserID:   s.UserID,
			Email:    s.Email,
			FullName: s.FullName,
			Role:     s.Role,
			Category: s.Category,
		}
	}

	if err := session.Save(w, r); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, page)
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Fail is the shared translation of a handler error into a response: the
// error is logged, the user gets a one-line flash and is sent to fallback.
func Fail(w http.ResponseWriter, r *http.Request, log *zap.SugaredLogger, err error, prefix, fallback string) {
	Report(r, log, err, prefix)
	Redirect(w, r, fallback)
}

// Report logs err and flashes "<prefix>: <first line of err>" without
// ending the request. Pages that render with empty data on failure use it.
func Report(r *http.Request, log *zap.SugaredLogger, err error, prefix string) {
	log.Errorw(prefix,
		"error", err,
		"path", r.URL.Path,
		"upstream", errors.Is(err, ErrUpstream),
	)
	Flash(r, session.FlashError, fmt.Sprintf("%s: %s", prefix, oneLine(err)))
}

func oneLine(err error) string {
	msg := err.Error()
	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	return msg
}
