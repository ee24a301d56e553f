package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and installs the
// invite functions the postgres store calls.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&UserIdentity{},
		&InviteCode{},
		&InviteUsage{},
	); err != nil {
		return err
	}

	// One password identity per identifier.
	if err := db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_identity_type_identifier " +
			"ON user_identities (identity_type, identifier)",
	).Error; err != nil {
		return err
	}

	if err := db.Exec(validateInviteCodeFunc).Error; err != nil {
		return err
	}
	return db.Exec(consumeInviteFunc).Error
}

// validate_invite_code returns zero rows for unknown codes.
const validateInviteCodeFunc = `
CREATE OR REPLACE FUNCTION validate_invite_code(p_code text)
RETURNS TABLE (
	id uuid,
	code text,
	inviter_user_id uuid,
	uses integer,
	max_uses integer,
	expires_at timestamptz,
	is_valid boolean
)
LANGUAGE sql STABLE AS $$
	SELECT i.id,
	       i.code::text,
	       i.inviter_user_id,
	       i.uses::integer,
	       i.max_uses::integer,
	       i.expires_at::timestamptz,
	       (i.expires_at IS NULL OR i.expires_at >= now())
	         AND (i.max_uses IS NULL OR i.uses < i.max_uses)
	FROM invite_codes i
	WHERE i.code = p_code
$$`

// consume_invite locks the invite row, so concurrent consumers of the same
// code run one after another. Checks run in the order: existence, the
// caller's earlier usage, self-referral, expiry, cap.
const consumeInviteFunc = `
CREATE OR REPLACE FUNCTION consume_invite(p_code text, p_user_id uuid)
RETURNS text
LANGUAGE plpgsql AS $$
DECLARE
	v_invite invite_codes%ROWTYPE;
BEGIN
	SELECT * INTO v_invite FROM invite_codes WHERE code = p_code FOR UPDATE;
	IF NOT FOUND THEN
		RETURN 'NOT_FOUND';
	END IF;

	IF EXISTS (
		SELECT 1 FROM invite_usages
		WHERE invite_id = v_invite.id AND user_id = p_user_id
	) THEN
		RETURN 'ALREADY_CONSUMED';
	END IF;

	IF v_invite.inviter_user_id IS NOT NULL AND v_invite.inviter_user_id = p_user_id THEN
		RETURN 'SELF_REFERRAL';
	END IF;

	IF v_invite.expires_at IS NOT NULL AND v_invite.expires_at < now() THEN
		RETURN 'EXPIRED';
	END IF;

	IF v_invite.max_uses IS NOT NULL AND v_invite.uses >= v_invite.max_uses THEN
		RETURN 'MAX_USES_REACHED';
	END IF;

	INSERT INTO invite_usages (invite_id, user_id, consumed_at)
	VALUES (v_invite.id, p_user_id, now());

	UPDATE invite_codes
	SET uses = uses + 1, updated_at = now()
	WHERE id = v_invite.id;

	RETURN 'CONSUMED';
END;
$$`
