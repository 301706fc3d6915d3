package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	ErrMissingSecret = errors.New("session secret is empty")
	ErrInvalidCookie = errors.New("invalid session cookie")
)

// claims is the signed cookie payload. Credentials never appear here.
type claims struct {
	jwt.RegisteredClaims
	Email      string  `json:"email,omitempty"`
	Name       string  `json:"name,omitempty"`
	Role       Role    `json:"role,omitempty"`
	Category   string  `json:"category,omitempty"`
	TerminalID string  `json:"terminal_id,omitempty"`
	Permanent  bool    `json:"permanent,omitempty"`
	Flashes    []Flash `json:"flashes,omitempty"`
}

// Codec signs and verifies session cookies as HS256 JWTs.
type Codec struct {
	key []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Codec{key: []byte(secret)}, nil
}

// Encode signs s. Anonymous sessions carry only their flashes.
func (c *Codec) Encode(s *Session) (string, error) {
	cl := claims{Flashes: s.Flashes}
	if s.Authenticated() {
		cl.Subject = s.UserID
		cl.Email = s.Email
		cl.Name = s.FullName
		cl.Role = s.Role
		cl.Category = s.Category
		cl.TerminalID = s.TerminalID
		cl.Permanent = s.Permanent
		if !s.IssuedAt.IsZero() {
			cl.IssuedAt = jwt.NewNumericDate(s.IssuedAt)
		}
		if !s.ExpiresAt.IsZero() {
			cl.ExpiresAt = jwt.NewNumericDate(s.ExpiresAt)
		}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session")
	}
	return token, nil
}

// Decode verifies token as of now. Tampered, foreign or expired tokens
// return an error wrapping ErrInvalidCookie.
func (c *Codec) Decode(token string, now time.Time) (*Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl,
		func(*jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCookie, err.Error())
	}

	s := &Session{Flashes: cl.Flashes}
	if cl.Subject == "" {
		return s, nil
	}
	if cl.ExpiresAt == nil {
		return nil, errors.Wrap(ErrInvalidCookie, "authenticated session without expiry")
	}

	s.UserID = cl.Subject
	s.Email = cl.Email
	s.FullName = cl.Name
	s.Role = cl.Role
	s.Category = cl.Category
	s.TerminalID = cl.TerminalID
	s.Permanent = cl.Permanent
	s.ExpiresAt = cl.ExpiresAt.Time
	if cl.IssuedAt != nil {
		s.IssuedAt = cl.IssuedAt.Time
	}
	return s, nil
}
