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

type sqliteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == 0 {
		user.Status = model.UserStatusActive
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID.String(), user.DisplayName, int(user.Status), toMillis(now), toMillis(now),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var (
		user                 model.User
		rawID                string
		status               int
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, status, created_at, updated_at FROM users WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &user.DisplayName, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	user.Status = model.UserStatus(status)
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return &user, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
