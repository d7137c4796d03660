package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole distinguishes volunteers from event organizers
type UserRole string

const (
	RoleVolunteer UserRole = "volunteer"
	RoleOrganizer UserRole = "organizer"
)

// User is a local mirror of the identity provider's account record.
// Identity (ExternalUserID, Email) is immutable here; profile and role
// fields are refreshed by the sync worker or on first authenticated request.
type User struct {
	ID             string   `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalUserID string   `gorm:"uniqueIndex;not null" json:"external_user_id"` // id from the identity provider
	Email          string   `gorm:"index" json:"email,omitempty"`
	Username       string   `gorm:"index" json:"username"`
	FirstName      *string  `json:"first_name,omitempty"`
	LastName       *string  `json:"last_name,omitempty"`
	AvatarURL      *string  `json:"avatar_url,omitempty"`
	Role           UserRole `gorm:"type:varchar(16);default:'volunteer'" json:"role"`

	// Optional organization membership (organizers only)
	OrganizationID   *string `gorm:"index" json:"organization_id,omitempty"`
	OrganizationName string  `json:"organization_name,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (u *User) IsOrganizer() bool {
	return u.Role == RoleOrganizer
}
