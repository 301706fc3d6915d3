package auth

import (
	"context"

	"github.com/WaveLink/WL-Backend/internal/db"
	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// ErrEmailTaken is returned by Create when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// Accounts is the account repository the handlers use.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	UpdateProfile(ctx context.Context, id, fullName, phone string) error
	// CountByRole counts accounts with role, or every account when role is
	// empty.
	CountByRole(ctx context.Context, role session.Role) (int64, error)
}

// Store implements Accounts on the data service.
type Store struct {
	DB *db.Service
}

func NewStore(svc *db.Service) *Store {
	return &Store{DB: svc}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.DB.First(ctx, &u, db.Filter{"email": email}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := s.DB.First(ctx, &u, db.Filter{"id": id}); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := s.DB.Count(ctx, &User{}, db.Filter{"email": email})
	return n > 0, err
}

func (s *Store) Create(ctx context.Context, u *User) error {
	err := s.DB.Insert(ctx, u)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func (s *Store) UpdateProfile(ctx context.Context, id, fullName, phone string) error {
	n, err := s.DB.Update(ctx, &User{}, db.Filter{"id": id}, map[string]interface{}{
		"full_name": fullName,
		"phone":     phone,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *Store) CountByRole(ctx context.Context, role session.Role) (int64, error) {
	f := db.Filter{}
	if role != "" {
		f["role"] = string(role)
	}
	return s.DB.Count(ctx, &User{}, f)
}
