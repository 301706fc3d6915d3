package passenger

import (
	"context"

	"github.com/WaveLink/WL-Backend/internal/db"
)

type Store interface {
	// Preferences returns the passenger's preferences with their routes,
	// earliest time first.
	Preferences(ctx context.Context, passengerID string) ([]Preference, error)
	PreferenceExists(ctx context.Context, passengerID, routeID, preferredTime string) (bool, error)
	AddPreferences(ctx context.Context, prefs []Preference) error
	// DeletePreference removes the passenger's own preference id and
	// reports whether one went.
	DeletePreference(ctx context.Context, passengerID, id string) (bool, error)

	CreateFeedback(ctx context.Context, f *Feedback) error
	Feedbacks(ctx context.Context, passengerID string) ([]Feedback, error)
	CreateComplaint(ctx context.Context, c *Complaint) error
	Complaints(ctx context.Context, passengerID string) ([]Complaint, error)
	AddAttachments(ctx context.Context, attachments []Attachment) error
}

type GormStore struct {
	DB *db.Service
}

func NewStore(svc *db.Service) *GormStore {
	return &GormStore{DB: svc}
}

func (s *GormStore) Preferences(ctx context.Context, passengerID string) ([]Preference, error) {
	var out []Preference
	err := s.DB.Find(ctx, &out, db.Filter{"passenger_id": passengerID},
		db.Preload("Route"), db.OrderBy("preferred_time", false))
	return out, err
}

func (s *GormStore) PreferenceExists(ctx context.Context, passengerID, routeID, preferredTime string) (bool, error) {
	n, err := s.DB.Count(ctx, &Preference{}, db.Filter{
		"passenger_id":   passengerID,
		"route_id":       routeID,
		"preferred_time": preferredTime,
	})
	return n > 0, err
}

func (s *GormStore) AddPreferences(ctx context.Context, prefs []Preference) error {
	return s.DB.Insert(ctx, &prefs)
}

func (s *GormStore) DeletePreference(ctx context.Context, passengerID, id string) (bool, error) {
	n, err := s.DB.Delete(ctx, &Preference{}, db.Filter{"id": id, "passenger_id": passengerID})
	return n > 0, err
}

func (s *GormStore) CreateFeedback(ctx context.Context, f *Feedback) error {
	return s.DB.Insert(ctx, f)
}

func (s *GormStore) Feedbacks(ctx context.Context, passengerID string) ([]Feedback, error) {
	var out []Feedback
	err := s.DB.Find(ctx, &out, db.Filter{"passenger_id": passengerID},
		db.Preload("Attachments"), db.OrderBy("submitted_at", true))
	return out, err
}

func (s *GormStore) CreateComplaint(ctx context.Context, c *Complaint) error {
	return s.DB.Insert(ctx, c)
}

func (s *GormStore) Complaints(ctx context.Context, passengerID string) ([]Complaint, error) {
	var out []Complaint
	err := s.DB.Find(ctx, &out, db.Filter{"passenger_id": passengerID},
		db.Preload("Attachments"), db.OrderBy("submitted_at", true))
	return out, err
}

func (s *GormStore) AddAttachments(ctx context.Context, attachments []Attachment) error {
	return s.DB.Insert(ctx, &attachments)
}
