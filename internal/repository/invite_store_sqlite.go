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

// sqliteInviteStore runs consumption inside a write transaction. The
// connection is opened with _txlock=immediate, so the transaction holds the
// database write lock from its first statement and racing consumers
// serialize on it.
type sqliteInviteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteInviteStore(db *sql.DB) InviteStore {
	return &sqliteInviteStore{db: db, now: time.Now}
}

const selectInviteByCode = `SELECT id, code, inviter_user_id, uses, max_uses, expires_at, created_at, updated_at
	FROM invite_codes WHERE code = ?`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (*model.InviteCode, error) {
	var (
		invite               model.InviteCode
		rawID                string
		inviter              sql.NullString
		maxUses              sql.NullInt64
		expiresAt            sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&rawID, &invite.Code, &inviter, &invite.Uses, &maxUses, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse invite id: %w", err)
	}
	invite.ID = id
	if inviter.Valid {
		inviterID, err := uuid.Parse(inviter.String)
		if err != nil {
			return nil, fmt.Errorf("parse inviter id: %w", err)
		}
		invite.InviterUserID = &inviterID
	}
	if maxUses.Valid {
		n := int(maxUses.Int64)
		invite.MaxUses = &n
	}
	if expiresAt.Valid {
		t := fromMillis(expiresAt.Int64)
		invite.ExpiresAt = &t
	}
	invite.CreatedAt = fromMillis(createdAt)
	invite.UpdatedAt = fromMillis(updatedAt)
	return &invite, nil
}

func (s *sqliteInviteStore) ValidateInviteCode(ctx context.Context, code string) (*model.InviteStatus, error) {
	invite, err := scanInviteCode(s.db.QueryRowContext(ctx, selectInviteByCode, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return invite.Status(s.now()), nil
}

func (s *sqliteInviteStore) ConsumeInvite(ctx context.Context, code string, userID uuid.UUID) (model.ConsumeOutcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin consume: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	invite, err := scanInviteCode(tx.QueryRowContext(ctx, selectInviteByCode, code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.DeclinedOutcome(model.InviteReasonNotFound), nil
	}
	if err != nil {
		return "", fmt.Errorf("get invite: %w", err)
	}

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM invite_usages WHERE invite_id = ? AND user_id = ?`,
		invite.ID.String(), userID.String(),
	).Scan(&one)
	switch {
	case err == nil:
		return model.ConsumeOutcomeAlreadyConsumed, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("check usage: %w", err)
	}

	if invite.InviterUserID != nil && *invite.InviterUserID == userID {
		return model.DeclinedOutcome(model.InviteReasonSelfReferral), nil
	}
	now := s.now().UTC()
	status := invite.Status(now)
	if status.Expired(now) {
		return model.DeclinedOutcome(model.InviteReasonExpired), nil
	}
	if status.Exhausted() {
		return model.DeclinedOutcome(model.InviteReasonMaxUsesReached), nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO invite_usages (invite_id, user_id, consumed_at) VALUES (?, ?, ?)`,
		invite.ID.String(), userID.String(), toMillis(now),
	); err != nil {
		return "", fmt.Errorf("insert usage: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE invite_codes SET uses = uses + 1, updated_at = ? WHERE id = ?`,
		toMillis(now), invite.ID.String(),
	); err != nil {
		return "", fmt.Errorf("increment uses: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit consume: %w", err)
	}
	return model.ConsumeOutcomeConsumed, nil
}

func (s *sqliteInviteStore) CreateInviteCode(ctx context.Context, invite *model.InviteCode) error {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	now := s.now().UTC()
	invite.CreatedAt, invite.UpdatedAt = now, now

	var inviter, maxUses, expiresAt any
	if invite.InviterUserID != nil {
		inviter = invite.InviterUserID.String()
	}
	if invite.MaxUses != nil {
		maxUses = *invite.MaxUses
	}
	if invite.ExpiresAt != nil {
		expiresAt = toMillis(*invite.ExpiresAt)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invite_codes (id, code, inviter_user_id, uses, max_uses, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		invite.ID.String(), invite.Code, inviter, invite.Uses, maxUses, expiresAt, toMillis(now), toMillis(now),
	)
	if isSQLiteUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	return nil
}

func (s *sqliteInviteStore) ListInviteCodes(ctx context.Context) ([]model.InviteCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, inviter_user_id, uses, max_uses, expires_at, created_at, updated_at
		 FROM invite_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	defer rows.Close()

	var codes []model.InviteCode
	for rows.Next() {
		invite, err := scanInviteCode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invite: %w", err)
		}
		codes = append(codes, *invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invites: %w", err)
	}
	return codes, nil
}
