package model

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode is a shareable referral token. Uses only ever grows, and only
// through the store's consume primitive.
type InviteCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	InviterUserID *uuid.UUID `gorm:"type:uuid;index" json:"inviter_user_id,omitempty"`
	Uses          int        `gorm:"type:integer;not null;default:0;check:uses >= 0" json:"uses"`
	MaxUses       *int       `gorm:"type:integer;check:chk_invite_codes_max_uses,max_uses IS NULL OR (max_uses > 0 AND uses <= max_uses)" json:"max_uses,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (InviteCode) TableName() string { return "invite_codes" }

// Status projects the row into the snapshot handed out by validation.
func (c *InviteCode) Status(now time.Time) *InviteStatus {
	s := &InviteStatus{
		ID:            c.ID,
		Code:          c.Code,
		InviterUserID: c.InviterUserID,
		Uses:          c.Uses,
		MaxUses:       c.MaxUses,
		ExpiresAt:     c.ExpiresAt,
	}
	s.IsValid = !s.Expired(now) && !s.Exhausted()
	return s
}

// InviteUsage records that one user consumed one invite. At most one row
// exists per (invite, user) pair.
type InviteUsage struct {
	InviteID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"invite_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	ConsumedAt time.Time `gorm:"not null" json:"consumed_at"`

	Invite InviteCode `gorm:"foreignKey:InviteID" json:"-"`
}

func (InviteUsage) TableName() string { return "invite_usages" }
