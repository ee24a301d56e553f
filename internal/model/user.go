package model

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus int

const (
	UserStatusActive   UserStatus = 1
	UserStatusDisabled UserStatus = 2
	UserStatusBanned   UserStatus = 3
)

// User is the marketplace account. Profile details live elsewhere; the
// display name is kept here because invite pages greet people with it.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DisplayName string     `gorm:"type:varchar(128);not null;default:''" json:"display_name"`
	Status      UserStatus `gorm:"type:smallint;not null;default:1" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Identities []UserIdentity `gorm:"foreignKey:UserID" json:"identities,omitempty"`
}

func (User) TableName() string { return "users" }
