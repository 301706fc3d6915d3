package transit

import (
	"time"

	"github.com/WaveLink/WL-Backend/internal/utils"
	"gorm.io/gorm"
)

type Terminal struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Code      string    `gorm:"uniqueIndex" json:"code"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

type Route struct {
	ID                    string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name                  string    `gorm:"not null" json:"name"`
	OriginTerminalID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_route_ends" json:"origin_terminal_id"`
	DestinationTerminalID string    `gorm:"type:uuid;not null;uniqueIndex:idx_route_ends" json:"destination_terminal_id"`
	BasePrice             float64   `gorm:"type:numeric(10,2);not null;default:0" json:"base_price"`
	CreatedAt             time.Time `json:"created_at"`
}

func (Terminal) TableName() string { return "transit.terminals" }
func (Route) TableName() string    { return "transit.routes" }

func (t *Terminal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateUUID()
	}
	return nil
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateUUID()
	}
	return nil
}
