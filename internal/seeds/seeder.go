package seeds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// Hasher hashes admin passwords before they are stored.
type Hasher interface {
	Hash(password string) (string, error)
}

// Counts are the rows a run actually inserted.
type Counts struct {
	Terminals int64
	Routes    int64
	Admins    int64
}

// Seeder writes a File in one transaction. Limiter, when set, paces the
// statements so a seed against the hosted database stays under its request
// quota.
type Seeder struct {
	DB      *sql.DB
	Hasher  Hasher
	Limiter *rate.Limiter
	Now     func() time.Time
}

func (s *Seeder) Run(ctx context.Context, f *File) (Counts, error) {
	var c Counts
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return c, errors.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for _, t := range f.Terminals {
		n, err := s.exec(ctx, tx, `INSERT INTO transit.terminals (id, name, code, latitude, longitude, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (code) DO NOTHING`,
			uuid.NewString(), t.Name, t.Code, t.Latitude, t.Longitude, now)
		if err != nil {
			return c, errors.Wrapf(err, "insert terminal %s", t.Code)
		}
		c.Terminals += n
	}

	ids := make(map[string]string)
	for _, r := range f.Routes {
		for _, code := range []string{r.From, r.To} {
			if _, ok := ids[code]; ok {
				continue
			}
			id, err := s.terminalID(ctx, tx, code)
			if err != nil {
				return c, err
			}
			ids[code] = id
		}

		n, err := s.exec(ctx, tx, `INSERT INTO transit.routes (id, name, origin_terminal_id, destination_terminal_id, base_price, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (origin_terminal_id, destination_terminal_id) DO NOTHING`,
			uuid.NewString(), r.Name, ids[r.From], ids[r.To], r.BasePrice, now)
		if err != nil {
			return c, errors.Wrapf(err, "insert route %s", r.Name)
		}
		c.Routes += n
	}

	for _, a := range f.Admins {
		hashed, err := s.Hasher.Hash(a.Password)
		if err != nil {
			return c, err
		}
		n, err := s.exec(ctx, tx, `INSERT INTO transit.users (id, email, password, full_name, phone, role, is_active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
			ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(), a.Email, hashed, a.FullName, a.Phone, string(session.RoleAdmin), true, now)
		if err != nil {
			return c, errors.Wrapf(err, "insert admin %s", a.Email)
		}
		c.Admins += n
	}

	if err := tx.Commit(); err != nil {
		return c, errors.Wrap(err, "commit")
	}
	return c, nil
}

func (s *Seeder) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Wait(ctx)
}

func (s *Seeder) exec(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (int64, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Seeder) terminalID(ctx context.Context, tx *sql.Tx, code string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM transit.terminals WHERE code = $1`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Errorf("terminal %s is not in the database", code)
	}
	return id, errors.Wrapf(err, "look up terminal %s", code)
}

// Summary describes what a run would write.
func (f *File) Summary() string {
	return fmt.Sprintf("terminals=%d routes=%d admins=%d", len(f.Terminals), len(f.Routes), len(f.Admins))
}
