package model

import (
	"testing"
	"time"
)

func TestInviteStatusExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	before, after := now.Add(-time.Second), now.Add(time.Second)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"no expiry", nil, false},
		{"in the past", &before, true},
		{"exactly now", &now, false},
		{"in the future", &after, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &InviteStatus{ExpiresAt: tt.expiresAt}
			if got := s.Expired(now); got != tt.want {
				t.Fatalf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInviteStatusExhausted(t *testing.T) {
	two := 2
	tests := []struct {
		name    string
		uses    int
		maxUses *int
		want    bool
	}{
		{"unlimited", 1000, nil, false},
		{"below cap", 1, &two, false},
		{"at cap", 2, &two, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &InviteStatus{Uses: tt.uses, MaxUses: tt.maxUses}
			if got := s.Exhausted(); got != tt.want {
				t.Fatalf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInviteCodeStatusValidity(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	one := 1

	if s := (&InviteCode{Code: "OK"}).Status(now); !s.IsValid {
		t.Fatal("expected unrestricted code to be valid")
	}
	if s := (&InviteCode{Code: "OLD", ExpiresAt: &past}).Status(now); s.IsValid {
		t.Fatal("expected expired code to be invalid")
	}
	if s := (&InviteCode{Code: "FULL", Uses: 1, MaxUses: &one}).Status(now); s.IsValid {
		t.Fatal("expected exhausted code to be invalid")
	}
}

func TestInviteReasonMessage(t *testing.T) {
	if got := InviteReasonNotFound.Message(); got != "Invalid invite code." {
		t.Fatalf("NOT_FOUND message = %q", got)
	}
	if got := InviteReason("SOMETHING_NEW").Message(); got != InviteReasonInvalid.Message() {
		t.Fatalf("unknown reason message = %q, want the INVALID message", got)
	}
}

func TestParseConsumeOutcome(t *testing.T) {
	for _, s := range []string{"CONSUMED", "ALREADY_CONSUMED", "NOT_FOUND", "EXPIRED", "MAX_USES_REACHED", "SELF_REFERRAL"} {
		o, err := ParseConsumeOutcome(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if string(o) != s {
			t.Fatalf("parse %q returned %q", s, o)
		}
	}

	for _, s := range []string{"", "NO_CODE", "OK", "consumed"} {
		if _, err := ParseConsumeOutcome(s); err == nil {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestConsumeOutcomeReason(t *testing.T) {
	if r := ConsumeOutcomeAlreadyConsumed.Reason(); r != InviteReasonNone {
		t.Fatalf("accepted outcome reason = %q", r)
	}
	declined := DeclinedOutcome(InviteReasonSelfReferral)
	if declined.Accepted() {
		t.Fatal("declined outcome reported as accepted")
	}
	if declined.Reason() != InviteReasonSelfReferral {
		t.Fatalf("reason = %q", declined.Reason())
	}
}
