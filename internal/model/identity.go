package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type IdentityType string

const (
	IdentityTypePassword IdentityType = "password"
)

// CredentialData is a JSON blob stored in the credential_data column.
type CredentialData map[string]interface{}

func (cd CredentialData) Value() (driver.Value, error) {
	if cd == nil {
		return nil, nil
	}
	return json.Marshal(cd)
}

func (cd *CredentialData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*cd = nil
		return nil
	case []byte:
		return json.Unmarshal(v, cd)
	case string:
		// sqlite hands TEXT columns back as strings
		return json.Unmarshal([]byte(v), cd)
	default:
		return errors.New("CredentialData.Scan: unsupported column type")
	}
}

// PasswordHash returns the bcrypt hash stored for password identities.
func (cd CredentialData) PasswordHash() string {
	hash, _ := cd["password_hash"].(string)
	return hash
}

type UserIdentity struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	IdentityType   IdentityType   `gorm:"type:varchar(32);not null" json:"identity_type"`
	Identifier     string         `gorm:"type:varchar(512);not null" json:"identifier"`
	CredentialData CredentialData `gorm:"type:jsonb" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserIdentity) TableName() string { return "user_identities" }
