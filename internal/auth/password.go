package auth

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	cost  int
	dummy []byte
}

func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// Compared against when the email is unknown so both failure paths cost
	// one bcrypt comparison.
	dummy, err := bcrypt.GenerateFromPassword([]byte("wavelink-no-such-account"), cost)
	if err != nil {
		return nil, errors.Wrap(err, "Server error hashing password")
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "Server error hashing password")
	}
	return string(hashed), nil
}

// Check reports whether password matches hash. An empty hash never matches.
func (h *Hasher) Check(hash, password string) bool {
	if hash == "" {
		h.Miss(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Miss burns one comparison for a login attempt with no account behind it.
func (h *Hasher) Miss(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
