package passenger

import "github.com/WaveLink/WL-Backend/internal/db"

// Init migrates the passenger tables. Routes must exist first.
func Init(svc *db.Service) error {
	return svc.Migrate(db.Schema, &Preference{}, &Feedback{}, &Complaint{}, &Attachment{})
}
