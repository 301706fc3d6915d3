package auth

import (
	"time"

	"github.com/WaveLink/WL-Backend/internal/session"
	"github.com/WaveLink/WL-Backend/internal/utils"
	"gorm.io/gorm"
)

// User is an account of any role.
type User struct {
	ID               string       `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string       `gorm:"not null;uniqueIndex" json:"email"`
	Password         string       `gorm:"not null" json:"-"`
	FullName         string       `json:"full_name"`
	Phone            string       `json:"phone"`
	Role             session.Role `gorm:"not null;default:'passenger'" json:"role"`
	EmployeeCategory *string      `json:"employee_category,omitempty"`
	TerminalID       *string      `gorm:"type:uuid" json:"terminal_id,omitempty"`
	IsActive         bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (User) TableName() string { return "transit.users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = utils.GenerateUUID()
	}
	return nil
}

// Identity is what the account puts into a session at login. Nothing
// password related is included.
func (u *User) Identity() session.Identity {
	id := session.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
	}
	if u.EmployeeCategory != nil {
		id.Category = *u.EmployeeCategory
	}
	if u.TerminalID != nil {
		id.TerminalID = *u.TerminalID
	}
	return id
}

// Profile is the account as shown on the profile page.
type Profile struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	FullName         string       `json:"full_name"`
	Phone            string       `json:"phone"`
	Role             session.Role `json:"role"`
	RoleLabel        string       `json:"role_label"`
	EmployeeCategory string       `json:"employee_category,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (u *User) Profile() Profile {
	p := Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Role:      u.Role,
		RoleLabel: utils.TitleRole(string(u.Role)),
		CreatedAt: u.CreatedAt,
	}
	if u.EmployeeCategory != nil {
		p.EmployeeCategory = *u.EmployeeCategory
	}
	return p
}
