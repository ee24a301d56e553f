package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InviteReason explains why an invite was declined. The zero value means
// the invite was not declined.
type InviteReason string

const (
	InviteReasonNone           InviteReason = ""
	InviteReasonNoCode         InviteReason = "NO_CODE"
	InviteReasonNotFound       InviteReason = "NOT_FOUND"
	InviteReasonExpired        InviteReason = "EXPIRED"
	InviteReasonMaxUsesReached InviteReason = "MAX_USES_REACHED"
	InviteReasonSelfReferral   InviteReason = "SELF_REFERRAL"
	InviteReasonInvalid        InviteReason = "INVALID"
)

// UnauthorizedInviteMessage is shown to callers that try to consume an
// invite without signing in.
const UnauthorizedInviteMessage = "Unauthorized. Please sign in to use an invite code."

// RetryInviteMessage is shown when the store could not be reached.
const RetryInviteMessage = "Something went wrong. Please try again."

var inviteReasonMessages = map[InviteReason]string{
	InviteReasonNoCode:         "No invite code provided.",
	InviteReasonNotFound:       "Invalid invite code.",
	InviteReasonExpired:        "This invite code has expired.",
	InviteReasonMaxUsesReached: "This invite code has reached its maximum number of uses.",
	InviteReasonSelfReferral:   "You cannot use your own invite code.",
	InviteReasonInvalid:        "This invite code is no longer valid.",
}

// Message returns the user-facing sentence for the reason.
func (r InviteReason) Message() string {
	if msg, ok := inviteReasonMessages[r]; ok {
		return msg
	}
	return inviteReasonMessages[InviteReasonInvalid]
}

// ParseInviteReason maps a wire code back to a known reason.
func ParseInviteReason(s string) (InviteReason, bool) {
	r := InviteReason(s)
	_, ok := inviteReasonMessages[r]
	return r, ok
}

// InviteStatus is a read-only snapshot of an invite. It can be stale the
// moment it is read; consumption never trusts it.
type InviteStatus struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	InviterUserID *uuid.UUID `json:"inviter_user_id,omitempty"`
	Uses          int        `json:"uses"`
	MaxUses       *int       `json:"max_uses,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	IsValid       bool       `json:"is_valid"`
}

// Expired reports whether the invite expired strictly before now.
func (s *InviteStatus) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// Exhausted reports whether the usage cap has been reached.
func (s *InviteStatus) Exhausted() bool {
	return s.MaxUses != nil && s.Uses >= *s.MaxUses
}

// ConsumeOutcome is what the store's consume primitive decided.
type ConsumeOutcome string

const (
	// ConsumeOutcomeConsumed means a new usage was recorded and uses was incremented.
	ConsumeOutcomeConsumed ConsumeOutcome = "CONSUMED"
	// ConsumeOutcomeAlreadyConsumed means the user had already consumed the invite; nothing changed.
	ConsumeOutcomeAlreadyConsumed ConsumeOutcome = "ALREADY_CONSUMED"
)

// DeclinedOutcome wraps a decline reason as an outcome.
func DeclinedOutcome(reason InviteReason) ConsumeOutcome {
	return ConsumeOutcome(reason)
}

// Accepted is true when the invite counts as used by the caller.
func (o ConsumeOutcome) Accepted() bool {
	return o == ConsumeOutcomeConsumed || o == ConsumeOutcomeAlreadyConsumed
}

// Reason returns the decline reason, or InviteReasonNone for accepted outcomes.
func (o ConsumeOutcome) Reason() InviteReason {
	if o.Accepted() {
		return InviteReasonNone
	}
	return InviteReason(o)
}

// ParseConsumeOutcome validates a value returned by a store.
func ParseConsumeOutcome(s string) (ConsumeOutcome, error) {
	o := ConsumeOutcome(s)
	if o.Accepted() {
		return o, nil
	}
	if r, ok := ParseInviteReason(s); ok && r != InviteReasonNoCode {
		return o, nil
	}
	return "", fmt.Errorf("unknown consume outcome %q", s)
}
