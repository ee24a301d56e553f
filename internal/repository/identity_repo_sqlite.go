package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomies/invitehub/internal/model"
)

type sqliteIdentityRepository struct {
	db *sql.DB
}

func NewSQLiteIdentityRepository(db *sql.DB) IdentityRepository {
	return &sqliteIdentityRepository{db: db}
}

func (r *sqliteIdentityRepository) Create(ctx context.Context, identity *model.UserIdentity) error {
	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	now := time.Now().UTC()
	identity.CreatedAt, identity.UpdatedAt = now, now

	credentials, err := identity.CredentialData.Value()
	if err != nil {
		return fmt.Errorf("encode credential data: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_identities (id, user_id, identity_type, identifier, credential_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		identity.ID.String(), identity.UserID.String(), string(identity.IdentityType),
		identity.Identifier, credentials, toMillis(now), toMillis(now),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *sqliteIdentityRepository) GetByTypeAndIdentifier(
	ctx context.Context, idType model.IdentityType, identifier string,
) (*model.UserIdentity, error) {
	var (
		identity             model.UserIdentity
		rawID, rawUserID     string
		identityType         string
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, identity_type, identifier, credential_data, created_at, updated_at
		 FROM user_identities WHERE identity_type = ? AND identifier = ?`,
		string(idType), identifier,
	).Scan(&rawID, &rawUserID, &identityType, &identity.Identifier, &identity.CredentialData, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	if identity.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse identity id: %w", err)
	}
	if identity.UserID, err = uuid.Parse(rawUserID); err != nil {
		return nil, fmt.Errorf("parse identity user id: %w", err)
	}
	identity.IdentityType = model.IdentityType(identityType)
	identity.CreatedAt = fromMillis(createdAt)
	identity.UpdatedAt = fromMillis(updatedAt)
	return &identity, nil
}
