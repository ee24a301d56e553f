package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"roomies/invitehub/internal/config"
	"roomies/invitehub/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := config.NewSQLiteDB(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "invites.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := model.MigrateSQLite(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestInviteStore(t *testing.T, now time.Time) (*sqliteInviteStore, *sql.DB) {
	t.Helper()
	db := openTestDB(t)
	store := NewSQLiteInviteStore(db).(*sqliteInviteStore)
	store.now = func() time.Time { return now }
	return store, db
}

func intPtr(n int) *int { return &n }

func seedInvite(t *testing.T, store InviteStore, invite *model.InviteCode) *model.InviteCode {
	t.Helper()
	if err := store.CreateInviteCode(context.Background(), invite); err != nil {
		t.Fatalf("create invite %q: %v", invite.Code, err)
	}
	return invite
}

func usageCount(t *testing.T, db *sql.DB, inviteID uuid.UUID) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM invite_usages WHERE invite_id = ?`, inviteID.String()).Scan(&n); err != nil {
		t.Fatalf("count usages: %v", err)
	}
	return n
}

func currentUses(t *testing.T, store InviteStore, code string) int {
	t.Helper()
	status, err := store.ValidateInviteCode(context.Background(), code)
	if err != nil {
		t.Fatalf("validate %q: %v", code, err)
	}
	return status.Uses
}

func TestSQLiteValidateUnknownCode(t *testing.T) {
	store, _ := newTestInviteStore(t, time.Now())

	_, err := store.ValidateInviteCode(context.Background(), "NOPE")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteValidateReportsSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestInviteStore(t, now)
	inviter := uuid.New()
	expires := now.Add(time.Hour)
	seedInvite(t, store, &model.InviteCode{Code: "ROOM42", InviterUserID: &inviter, MaxUses: intPtr(3), ExpiresAt: &expires})

	status, err := store.ValidateInviteCode(context.Background(), "ROOM42")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !status.IsValid {
		t.Fatal("expected code to be valid")
	}
	if status.InviterUserID == nil || *status.InviterUserID != inviter {
		t.Fatalf("inviter = %v, want %v", status.InviterUserID, inviter)
	}
	if status.MaxUses == nil || *status.MaxUses != 3 {
		t.Fatalf("max uses = %v, want 3", status.MaxUses)
	}
	if status.ExpiresAt == nil || !status.ExpiresAt.Equal(expires) {
		t.Fatalf("expires at = %v, want %v", status.ExpiresAt, expires)
	}
}

func TestSQLiteConsumeIsIdempotentPerUser(t *testing.T) {
	store, db := newTestInviteStore(t, time.Now())
	invite := seedInvite(t, store, &model.InviteCode{Code: "ABC123", MaxUses: intPtr(2)})
	ctx := context.Background()
	u2, u3 := uuid.New(), uuid.New()

	steps := []struct {
		user uuid.UUID
		want model.ConsumeOutcome
		uses int
	}{
		{u2, model.ConsumeOutcomeConsumed, 1},
		{u2, model.ConsumeOutcomeAlreadyConsumed, 1},
		{u3, model.ConsumeOutcomeConsumed, 2},
		{uuid.New(), model.DeclinedOutcome(model.InviteReasonMaxUsesReached), 2},
		{u3, model.ConsumeOutcomeAlreadyConsumed, 2},
	}
	for i, step := range steps {
		got, err := store.ConsumeInvite(ctx, "ABC123", step.user)
		if err != nil {
			t.Fatalf("step %d: consume: %v", i, err)
		}
		if got != step.want {
			t.Fatalf("step %d: outcome = %q, want %q", i, got, step.want)
		}
		if uses := currentUses(t, store, "ABC123"); uses != step.uses {
			t.Fatalf("step %d: uses = %d, want %d", i, uses, step.uses)
		}
	}
	if n := usageCount(t, db, invite.ID); n != 2 {
		t.Fatalf("usage rows = %d, want 2", n)
	}
}

func TestSQLiteConsumeDeclines(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestInviteStore(t, now)
	inviter := uuid.New()
	past := now.Add(-time.Minute)

	seedInvite(t, store, &model.InviteCode{Code: "MINE", InviterUserID: &inviter})
	seedInvite(t, store, &model.InviteCode{Code: "OLD", ExpiresAt: &past})
	// Expired and exhausted at once: expiry is reported.
	seedInvite(t, store, &model.InviteCode{Code: "OLDFULL", ExpiresAt: &past, MaxUses: intPtr(1), Uses: 1})
	// Self-referral is checked before expiry.
	seedInvite(t, store, &model.InviteCode{Code: "MINEOLD", InviterUserID: &inviter, ExpiresAt: &past})

	tests := []struct {
		name string
		code string
		user uuid.UUID
		want model.InviteReason
	}{
		{"unknown", "MISSING", uuid.New(), model.InviteReasonNotFound},
		{"self referral", "MINE", inviter, model.InviteReasonSelfReferral},
		{"expired", "OLD", uuid.New(), model.InviteReasonExpired},
		{"expired beats exhausted", "OLDFULL", uuid.New(), model.InviteReasonExpired},
		{"self referral beats expired", "MINEOLD", inviter, model.InviteReasonSelfReferral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ConsumeInvite(context.Background(), tt.code, tt.user)
			if err != nil {
				t.Fatalf("consume: %v", err)
			}
			if got.Accepted() {
				t.Fatalf("expected decline, got %q", got)
			}
			if got.Reason() != tt.want {
				t.Fatalf("reason = %q, want %q", got.Reason(), tt.want)
			}
		})
	}

	if uses := currentUses(t, store, "MINE"); uses != 0 {
		t.Fatalf("declined consume changed uses to %d", uses)
	}
}

func TestSQLiteConsumeAtExpiryInstantStillAccepts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestInviteStore(t, now)
	seedInvite(t, store, &model.InviteCode{Code: "EDGE", ExpiresAt: &now})

	got, err := store.ConsumeInvite(context.Background(), "EDGE", uuid.New())
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got != model.ConsumeOutcomeConsumed {
		t.Fatalf("outcome = %q, want CONSUMED", got)
	}
}

func TestSQLiteConcurrentConsumeRespectsCap(t *testing.T) {
	store, db := newTestInviteStore(t, time.Now())
	const maxUses, callers = 3, 12
	invite := seedInvite(t, store, &model.InviteCode{Code: "RACE", MaxUses: intPtr(maxUses)})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		consumed int
		capped   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.ConsumeInvite(context.Background(), "RACE", uuid.New())
			if err != nil {
				t.Errorf("consume: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch got {
			case model.ConsumeOutcomeConsumed:
				consumed++
			case model.DeclinedOutcome(model.InviteReasonMaxUsesReached):
				capped++
			default:
				t.Errorf("unexpected outcome %q", got)
			}
		}()
	}
	wg.Wait()

	if consumed != maxUses {
		t.Fatalf("consumed = %d, want %d", consumed, maxUses)
	}
	if capped != callers-maxUses {
		t.Fatalf("capped = %d, want %d", capped, callers-maxUses)
	}
	if uses := currentUses(t, store, "RACE"); uses != maxUses {
		t.Fatalf("uses = %d, want %d", uses, maxUses)
	}
	if n := usageCount(t, db, invite.ID); n != maxUses {
		t.Fatalf("usage rows = %d, want %d", n, maxUses)
	}
}

func TestSQLiteConcurrentConsumeSameUserCountsOnce(t *testing.T) {
	store, db := newTestInviteStore(t, time.Now())
	invite := seedInvite(t, store, &model.InviteCode{Code: "TWICE"})
	user := uuid.New()

	const callers = 8
	outcomes := make([]model.ConsumeOutcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := store.ConsumeInvite(context.Background(), "TWICE", user)
			if err != nil {
				t.Errorf("consume: %v", err)
				return
			}
			outcomes[i] = got
		}(i)
	}
	wg.Wait()

	var consumed int
	for _, o := range outcomes {
		if !o.Accepted() {
			t.Fatalf("unexpected outcome %q", o)
		}
		if o == model.ConsumeOutcomeConsumed {
			consumed++
		}
	}
	if consumed != 1 {
		t.Fatalf("CONSUMED returned %d times, want 1", consumed)
	}
	if uses := currentUses(t, store, "TWICE"); uses != 1 {
		t.Fatalf("uses = %d, want 1", uses)
	}
	if n := usageCount(t, db, invite.ID); n != 1 {
		t.Fatalf("usage rows = %d, want 1", n)
	}
}

func TestSQLiteCreateDuplicateCode(t *testing.T) {
	store, _ := newTestInviteStore(t, time.Now())
	seedInvite(t, store, &model.InviteCode{Code: "DUP"})

	err := store.CreateInviteCode(context.Background(), &model.InviteCode{Code: "DUP"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSQLiteListInviteCodes(t *testing.T) {
	store, _ := newTestInviteStore(t, time.Now())

	codes, err := store.ListInviteCodes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("expected no codes, got %d", len(codes))
	}

	seedInvite(t, store, &model.InviteCode{Code: "ONE"})
	seedInvite(t, store, &model.InviteCode{Code: "TWO", MaxUses: intPtr(5)})

	codes, err = store.ListInviteCodes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(codes) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(codes))
	}
}

func TestSQLiteTwoUsersRaceForLastSlot(t *testing.T) {
	store, _ := newTestInviteStore(t, time.Now())
	seedInvite(t, store, &model.InviteCode{Code: "ABC123", MaxUses: intPtr(1)})
	u2, u3 := uuid.New(), uuid.New()

	results := make(map[uuid.UUID]model.ConsumeOutcome)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, user := range []uuid.UUID{u2, u3} {
		wg.Add(1)
		go func(user uuid.UUID) {
			defer wg.Done()
			got, err := store.ConsumeInvite(context.Background(), "ABC123", user)
			if err != nil {
				t.Errorf("consume: %v", err)
				return
			}
			mu.Lock()
			results[user] = got
			mu.Unlock()
		}(user)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, got := range results {
		switch got {
		case model.ConsumeOutcomeConsumed:
			winners++
		case model.DeclinedOutcome(model.InviteReasonMaxUsesReached):
			losers++
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("results = %v, want one CONSUMED and one MAX_USES_REACHED", results)
	}
	if uses := currentUses(t, store, "ABC123"); uses != 1 {
		t.Fatalf("uses = %d, want 1", uses)
	}
}
