package employee

import (
	"context"

	"github.com/WaveLink/WL-Backend/internal/db"
)

// Store persists what employees file.
type Store interface {
	CreateCertificate(ctx context.Context, c *Certificate) error
	Certificates(ctx context.Context, employeeID string) ([]Certificate, error)
	// Certificate returns the employee's own certificate id, or db.ErrNotFound.
	Certificate(ctx context.Context, employeeID, id string) (*Certificate, error)

	CreateIncident(ctx context.Context, i *Incident) error
	Incidents(ctx context.Context, employeeID string) ([]Incident, error)
	Incident(ctx context.Context, employeeID, id string) (*Incident, error)

	CreateRepair(ctx context.Context, r *Repair) error
	CreateDocument(ctx context.Context, d *Document) error
}

type GormStore struct {
	DB *db.Service
}

func NewStore(svc *db.Service) *GormStore {
	return &GormStore{DB: svc}
}

func (s *GormStore) CreateCertificate(ctx context.Context, c *Certificate) error {
	return s.DB.Insert(ctx, c)
}

func (s *GormStore) Certificates(ctx context.Context, employeeID string) ([]Certificate, error) {
	var out []Certificate
	err := s.DB.Find(ctx, &out, db.Filter{"employee_id": employeeID}, db.OrderBy("uploaded_at", true))
	return out, err
}

func (s *GormStore) Certificate(ctx context.Context, employeeID, id string) (*Certificate, error) {
	var c Certificate
	if err := s.DB.First(ctx, &c, db.Filter{"id": id, "employee_id": employeeID}); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) CreateIncident(ctx context.Context, i *Incident) error {
	return s.DB.Insert(ctx, i)
}

func (s *GormStore) Incidents(ctx context.Context, employeeID string) ([]Incident, error) {
	var out []Incident
	err := s.DB.Find(ctx, &out, db.Filter{"reported_by_id": employeeID}, db.OrderBy("accident_time", true))
	return out, err
}

func (s *GormStore) Incident(ctx context.Context, employeeID, id string) (*Incident, error) {
	var i Incident
	if err := s.DB.First(ctx, &i, db.Filter{"id": id, "reported_by_id": employeeID}); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *GormStore) CreateRepair(ctx context.Context, r *Repair) error {
	return s.DB.Insert(ctx, r)
}

func (s *GormStore) CreateDocument(ctx context.Context, d *Document) error {
	return s.DB.Insert(ctx, d)
}
