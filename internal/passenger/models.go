package passenger

import (
	"time"

	"github.com/WaveLink/WL-Backend/internal/transit"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"gorm.io/gorm"
)

const StatusPending = "pending"

// Preference asks for notices about a route at a time of day.
type Preference struct {
	ID            string         `gorm:"type:uuid;primaryKey" json:"id"`
	PassengerID   string         `gorm:"type:uuid;not null;index" json:"passenger_id"`
	RouteID       string         `gorm:"type:uuid;not null" json:"route_id"`
	PreferredTime string         `gorm:"not null" json:"preferred_time"`
	CreatedAt     time.Time      `json:"created_at"`
	Route         *transit.Route `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE" json:"route,omitempty"`
}

type Feedback struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	PassengerID string       `gorm:"type:uuid;not null;index" json:"passenger_id"`
	Subject     string       `json:"subject"`
	Message     string       `gorm:"not null" json:"message"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Attachments []Attachment `gorm:"foreignKey:FeedbackID" json:"attachments"`
}

type Complaint struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	PassengerID string       `gorm:"type:uuid;not null;index" json:"passenger_id"`
	Subject     string       `json:"subject"`
	Message     string       `gorm:"not null" json:"message"`
	Status      string       `gorm:"not null;default:'pending'" json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
	Attachments []Attachment `gorm:"foreignKey:ComplaintID" json:"attachments"`
}

// Attachment belongs to exactly one of a feedback or a complaint.
type Attachment struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID  *string   `gorm:"type:uuid;index" json:"feedback_id,omitempty"`
	ComplaintID *string   `gorm:"type:uuid;index" json:"complaint_id,omitempty"`
	FileURL     string    `gorm:"not null" json:"file_url"`
	FileType    string    `json:"file_type"`
	StoragePath string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Preference) TableName() string { return "transit.passenger_preferences" }
func (Feedback) TableName() string   { return "transit.feedbacks" }
func (Complaint) TableName() string  { return "transit.complaints" }
func (Attachment) TableName() string { return "transit.attachments" }

func (p *Preference) BeforeCreate(tx *gorm.DB) error { return setID(&p.ID) }
func (f *Feedback) BeforeCreate(tx *gorm.DB) error   { return setID(&f.ID) }
func (c *Complaint) BeforeCreate(tx *gorm.DB) error  { return setID(&c.ID) }
func (a *Attachment) BeforeCreate(tx *gorm.DB) error { return setID(&a.ID) }

func setID(id *string) error {
	if *id == "" {
		*id = utils.GenerateUUID()
	}
	return nil
}
