package employee

import (
	"time"

	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusPending       = "pending"
	StatusInvestigation = "investigation"
	PriorityMedium      = "medium"
)

type Certificate struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID      string     `gorm:"type:uuid;not null;index" json:"employee_id"`
	CertificateName string     `gorm:"not null" json:"certificate_name"`
	Type            string     `gorm:"not null" json:"type"`
	ExpiryDate      *time.Time `gorm:"type:date" json:"expiry_date"`
	FileName        string     `json:"file_name"`
	FileURL         string     `json:"file_url"`
	StoragePath     string     `json:"-"`
	UploadedAt      time.Time  `json:"uploaded_at"`
	Status          string     `gorm:"not null;default:'pending'" json:"status"`
}

// Incident is an accident report. The table keeps its historical name.
type Incident struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReportedByID  string    `gorm:"type:uuid;not null;index" json:"reported_by_id"`
	TerminalID    *string   `gorm:"type:uuid" json:"terminal_id"`
	Subject       string    `gorm:"not null" json:"subject"`
	Narrative     string    `gorm:"not null" json:"narrative"`
	AccidentTime  time.Time `gorm:"not null" json:"accident_time"`
	Severity      string    `json:"severity"`
	InvolvedParty string    `json:"involved_party"`
	Status        string    `gorm:"not null;default:'investigation'" json:"status"`
	FileName      *string   `json:"file_name"`
	FileURL       *string   `json:"file_url"`
	StoragePath   *string   `json:"-"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

type Repair struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	ReportedByID   string         `gorm:"type:uuid;not null;index" json:"reported_by_id"`
	TerminalID     *string        `gorm:"type:uuid" json:"terminal_id"`
	Subject        string         `gorm:"not null" json:"subject"`
	Description    string         `gorm:"not null" json:"description"`
	Status         string         `gorm:"not null;default:'pending'" json:"status"`
	Priority       string         `gorm:"not null;default:'medium'" json:"priority"`
	AttachmentURLs pq.StringArray `gorm:"type:text[]" json:"attachment_urls"`
	ReportedAt     time.Time      `json:"reported_at"`
}

// Document is a file an employee uploaded straight to the bucket.
type Document struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID  string    `gorm:"type:uuid;not null;index" json:"employee_id"`
	FileName    string    `gorm:"not null" json:"file_name"`
	StoragePath string    `gorm:"not null" json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Certificate) TableName() string { return "transit.certificates" }
func (Incident) TableName() string    { return "transit.accidents" }
func (Repair) TableName() string      { return "transit.repairs" }
func (Document) TableName() string    { return "transit.documents" }

func (c *Certificate) BeforeCreate(tx *gorm.DB) error { return setID(&c.ID) }
func (i *Incident) BeforeCreate(tx *gorm.DB) error    { return setID(&i.ID) }
func (r *Repair) BeforeCreate(tx *gorm.DB) error      { return setID(&r.ID) }
func (d *Document) BeforeCreate(tx *gorm.DB) error    { return setID(&d.ID) }

func setID(id *string) error {
	if *id == "" {
		*id = utils.GenerateUUID()
	}
	return nil
}
