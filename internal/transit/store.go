package transit

import (
	"context"

	"github.com/WaveLink/WL-Backend/internal/db"
)

// Network is the read side of terminals and routes.
type Network interface {
	Terminals(ctx context.Context) ([]Terminal, error)
	// RouteBetween returns the route from origin to destination, or
	// db.ErrNotFound.
	RouteBetween(ctx context.Context, origin, destination string) (*Route, error)
}

type Store struct {
	DB *db.Service
}

func NewStore(svc *db.Service) *Store {
	return &Store{DB: svc}
}

func (s *Store) Terminals(ctx context.Context) ([]Terminal, error) {
	var out []Terminal
	err := s.DB.Find(ctx, &out, nil, db.OrderBy("name", false))
	return out, err
}

func (s *Store) RouteBetween(ctx context.Context, origin, destination string) (*Route, error) {
	var r Route
	err := s.DB.First(ctx, &r, db.Filter{
		"origin_terminal_id":      origin,
		"destination_terminal_id": destination,
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
