package employee

import "github.com/WaveLink/WL-Backend/internal/db"

func Init(svc *db.Service) error {
	return svc.Migrate(db.Schema, &Certificate{}, &Incident{}, &Repair{}, &Document{})
}
