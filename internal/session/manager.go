package session

import (
	"net/http"
	"time"
)

const (
	DefaultCookieName = "wavelink_session"
	DefaultTTL        = 24 * time.Hour
)

type Options struct {
	CookieName string
	// TTL is the absolute lifetime of an authenticated session.
	TTL    time.Duration
	Secure bool
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// Manager reads the session cookie at the start of a request and writes it
// back when a handler saves.
type Manager struct {
	codec  *Codec
	name   string
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(codec *Codec, opts Options) *Manager {
	m := &Manager{
		codec:  codec,
		name:   opts.CookieName,
		ttl:    opts.TTL,
		secure: opts.Secure,
		now:    opts.Now,
	}
	if m.name == "" {
		m.name = DefaultCookieName
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) Now() time.Time { return m.now() }

func (m *Manager) CookieName() string { return m.name }

// Load places the request's session in its context. A missing, tampered or
// expired cookie yields an anonymous session.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.Read(r)
		next.ServeHTTP(w, r.WithContext(newContext(r.Context(), s, m)))
	})
}

// Read decodes the session cookie of r.
func (m *Manager) Read(r *http.Request) *Session {
	c, err := r.Cookie(m.name)
	if err != nil || c.Value == "" {
		return &Session{}
	}
	s, err := m.codec.Decode(c.Value, m.now())
	if err != nil {
		return &Session{fromCookie: true}
	}
	s.fromCookie = true
	return s
}

// Cookie builds the cookie that stores s. Permanent sessions expire with
// the session; anonymous ones holding flashes last for the browser session.
func (m *Manager) Cookie(s *Session) (*http.Cookie, error) {
	if s.empty() {
		return m.expired(), nil
	}

	token, err := m.codec.Encode(s)
	if err != nil {
		return nil, err
	}

	c := &http.Cookie{
		Name:     m.name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Permanent && !s.ExpiresAt.IsZero() {
		maxAge := int(s.ExpiresAt.Sub(m.now()).Seconds())
		if maxAge <= 0 {
			return m.expired(), nil
		}
		c.Expires = s.ExpiresAt
		c.MaxAge = maxAge
	}
	return c, nil
}

// Save writes s to the response. An empty session deletes the cookie if the
// request had one and writes nothing otherwise.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if s.empty() && !s.fromCookie {
		return nil
	}
	c, err := m.Cookie(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, c)
	return nil
}

func (m *Manager) expired() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
