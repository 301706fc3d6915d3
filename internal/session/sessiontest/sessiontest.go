// Package sessiontest builds session cookies and reads them back from
// recorded responses in handler tests.
package sessiontest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WaveLink/WL-Backend/internal/session"
)

const Secret = "sessiontest-secret"

// Now is the fixed clock of managers built by NewManager.
var Now = time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

func NewManager(t testing.TB) *session.Manager {
	t.Helper()
	codec, err := session.NewCodec(Secret)
	if err != nil {
		t.Fatalf("session.NewCodec: %v", err)
	}
	return session.NewManager(codec, session.Options{
		TTL: 24 * time.Hour,
		Now: func() time.Time { return Now },
	})
}

// LoginCookie returns a cookie for an authenticated session of id.
func LoginCookie(t testing.TB, m *session.Manager, id session.Identity) *http.Cookie {
	t.Helper()
	s := &session.Session{}
	s.Login(id, m.Now(), m.TTL())
	c, err := m.Cookie(s)
	if err != nil {
		t.Fatalf("manager.Cookie: %v", err)
	}
	return c
}

// Read returns the session the response would leave in the browser. A
// response that sets no session cookie yields nil.
func Read(t testing.TB, m *session.Manager, rec *httptest.ResponseRecorder) *session.Session {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != m.CookieName() {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			return &session.Session{}
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)
		return m.Read(req)
	}
	return nil
}

// Flashes returns the messages queued by the response.
func Flashes(t testing.TB, m *session.Manager, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	s := Read(t, m, rec)
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Flashes))
	for _, f := range s.Flashes {
		out = append(out, f.Message)
	}
	return out
}
