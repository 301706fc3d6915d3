// Package session carries the authenticated identity of a browser in a
// server-signed cookie. Nothing is persisted server-side: a session lives
// exactly as long as its cookie.
package session

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Role is the permission level of an authenticated subject.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
	RolePassenger Role = "passenger"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole accepts only the closed set of roles.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.Wrapf(ErrUnknownRole, "%q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RolePassenger:
		return true
	}
	return false
}

// Flash categories.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
	FlashWarning = "warning"
)

// Flash is a one-shot user message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Identity is what an account contributes to a session at login.
type Identity struct {
	UserID     string
	Email      string
	FullName   string
	Role       Role
	Category   string
	TerminalID string
}

type Session struct {
	UserID     string
	Email      string
	FullName   string
	Role       Role
	Category   string
	TerminalID string

	Permanent bool
	IssuedAt  time.Time
	ExpiresAt time.Time

	Flashes []Flash

	// fromCookie records whether the request carried a cookie, so saving an
	// empty session only deletes a cookie that exists.
	fromCookie bool
}

// Authenticated reports whether the session has a subject. A session
// without one is anonymous.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Login populates the session from id and fixes its absolute expiry.
func (s *Session) Login(id Identity, now time.Time, ttl time.Duration) {
	s.UserID = id.UserID
	s.Email = id.Email
	s.FullName = id.FullName
	s.Role = id.Role
	s.Category = id.Category
	s.TerminalID = id.TerminalID
	s.Permanent = true
	s.IssuedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Identity returns the identity fields of the session.
func (s *Session) Identity() Identity {
	return Identity{
		UserID:     s.UserID,
		Email:      s.Email,
		FullName:   s.FullName,
		Role:       s.Role,
		Category:   s.Category,
		TerminalID: s.TerminalID,
	}
}

// Clear drops every field, pending flashes included.
func (s *Session) Clear() {
	*s = Session{fromCookie: s.fromCookie}
}

func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns and removes the pending flashes.
func (s *Session) PopFlashes() []Flash {
	f := s.Flashes
	s.Flashes = nil
	return f
}

// Expired reports whether a permanent session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.Permanent && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) empty() bool {
	return !s.Authenticated() && len(s.Flashes) == 0
}
