package seeds_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/WaveLink/WL-Backend/internal/seeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const sample = `
terminals:
  - name: "Airport  Terminal"
    code: air
    latitude: 14.51
    longitude: 121.02
  - name: Bayside
    code: BAY
routes:
  - name: Airport Express
    from: AIR
    to: bay
    base_price: 3.50
admins:
  - email: " Ops@WaveLink.test "
    full_name: Ops Lead
    password: change-me
`

func TestParse(t *testing.T) {
	f, err := seeds.Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Terminals, 2)
	assert.Equal(t, "Airport Terminal", f.Terminals[0].Name)
	assert.Equal(t, "AIR", f.Terminals[0].Code)
	require.NotNil(t, f.Terminals[0].Latitude)
	assert.Nil(t, f.Terminals[1].Latitude)

	require.Len(t, f.Routes, 1)
	assert.Equal(t, "BAY", f.Routes[0].To)
	assert.Equal(t, 3.5, f.Routes[0].BasePrice)

	assert.Equal(t, "ops@wavelink.test", f.Admins[0].Email)
	assert.Equal(t, "terminals=2 routes=1 admins=1", f.Summary())
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":          `terminals: []`,
		"unknown key":    "terminals:\n  - name: A\n    code: A\n    colour: red\n",
		"duplicate code": "terminals:\n  - {name: A, code: A}\n  - {name: B, code: a}\n",
		"half coords":    "terminals:\n  - {name: A, code: A, latitude: 1}\n",
		"bad latitude":   "terminals:\n  - {name: A, code: A, latitude: 91, longitude: 0}\n",
		"unknown end":    "terminals:\n  - {name: A, code: A}\nroutes:\n  - {name: R, from: A, to: Z}\n",
		"loop":           "terminals:\n  - {name: A, code: A}\nroutes:\n  - {name: R, from: A, to: A}\n",
		"negative price": "terminals:\n  - {name: A, code: A}\n  - {name: B, code: B}\nroutes:\n  - {name: R, from: A, to: B, base_price: -1}\n",
		"short password": "admins:\n  - {email: a@b.test, full_name: A, password: abc}\n",
		"bad email":      "admins:\n  - {email: nope, full_name: A, password: abcdef}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seeds.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func TestSeeder_Run(t *testing.T) {
	req := require.New(t)
	f, err := seeds.Parse([]byte(sample))
	req.NoError(err)

	sqlDB, mock, err := sqlmock.New()
	req.NoError(err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transit.terminals .* ON CONFLICT \(code\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "Airport Terminal", "AIR", 14.51, 121.02, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Bayside already exists.
	mock.ExpectExec(`INSERT INTO transit.terminals`).
		WithArgs(sqlmock.AnyArg(), "Bayside", "BAY", nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT id FROM transit.terminals WHERE code = \$1`).
		WithArgs("AIR").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-air"))
	mock.ExpectQuery(`SELECT id FROM transit.terminals WHERE code = \$1`).
		WithArgs("BAY").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-bay"))
	mock.ExpectExec(`INSERT INTO transit.routes .* ON CONFLICT \(origin_terminal_id, destination_terminal_id\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "Airport Express", "t-air", "t-bay", 3.5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO transit.users .* ON CONFLICT \(email\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "ops@wavelink.test", "hashed:change-me", "Ops Lead", "", "admin", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &seeds.Seeder{
		DB:      sqlDB,
		Hasher:  plainHasher{},
		Limiter: rate.NewLimiter(rate.Inf, 1),
		Now:     func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	counts, err := s.Run(context.Background(), f)
	req.NoError(err)
	req.Equal(seeds.Counts{Terminals: 1, Routes: 1, Admins: 1}, counts)
	req.NoError(mock.ExpectationsWereMet())
}

func TestSeeder_RunRollsBackOnMissingTerminal(t *testing.T) {
	req := require.New(t)
	f := &seeds.File{Routes: []seeds.Route{{Name: "R", From: "AIR", To: "BAY"}}}

	sqlDB, mock, err := sqlmock.New()
	req.NoError(err)
	defer sqlDB.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM transit.terminals`).
		WithArgs("AIR").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = (&seeds.Seeder{DB: sqlDB, Hasher: plainHasher{}}).Run(context.Background(), f)
	req.Error(err)
	req.Contains(err.Error(), "terminal AIR is not in the database")
	req.NoError(mock.ExpectationsWereMet())
}
