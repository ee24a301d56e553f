package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
)

// fakeInviteStore applies the same decision order as the real stores over
// an in-memory map.
type fakeInviteStore struct {
	mu            sync.Mutex
	codes         map[string]*model.InviteCode
	usages        map[string]map[uuid.UUID]bool
	err           error
	validateCalls int
	consumeCalls  int
}

func newFakeInviteStore() *fakeInviteStore {
	return &fakeInviteStore{
		codes:  make(map[string]*model.InviteCode),
		usages: make(map[string]map[uuid.UUID]bool),
	}
}

func (f *fakeInviteStore) put(invite *model.InviteCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	f.codes[invite.Code] = invite
}

func (f *fakeInviteStore) uses(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[code].Uses
}

func (f *fakeInviteStore) ValidateInviteCode(_ context.Context, code string) (*model.InviteStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validateCalls++
	if f.err != nil {
		return nil, f.err
	}
	invite, ok := f.codes[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return invite.Status(testNow), nil
}

func (f *fakeInviteStore) ConsumeInvite(_ context.Context, code string, userID uuid.UUID) (model.ConsumeOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumeCalls++
	if f.err != nil {
		return "", f.err
	}
	invite, ok := f.codes[code]
	if !ok {
		return model.DeclinedOutcome(model.InviteReasonNotFound), nil
	}
	if f.usages[code][userID] {
		return model.ConsumeOutcomeAlreadyConsumed, nil
	}
	if invite.InviterUserID != nil && *invite.InviterUserID == userID {
		return model.DeclinedOutcome(model.InviteReasonSelfReferral), nil
	}
	status := invite.Status(testNow)
	if status.Expired(testNow) {
		return model.DeclinedOutcome(model.InviteReasonExpired), nil
	}
	if status.Exhausted() {
		return model.DeclinedOutcome(model.InviteReasonMaxUsesReached), nil
	}
	if f.usages[code] == nil {
		f.usages[code] = make(map[uuid.UUID]bool)
	}
	f.usages[code][userID] = true
	invite.Uses++
	return model.ConsumeOutcomeConsumed, nil
}

func (f *fakeInviteStore) CreateInviteCode(_ context.Context, invite *model.InviteCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.codes[invite.Code]; ok {
		return repository.ErrAlreadyExists
	}
	f.codes[invite.Code] = invite
	return nil
}

func (f *fakeInviteStore) ListInviteCodes(context.Context) ([]model.InviteCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.InviteCode
	for _, c := range f.codes {
		out = append(out, *c)
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
	err   error
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*model.UserIdentity
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[string]*model.UserIdentity)}
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity *model.UserIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(identity.IdentityType) + ":" + identity.Identifier
	if _, ok := r.identities[key]; ok {
		return repository.ErrAlreadyExists
	}
	r.identities[key] = identity
	return nil
}

func (r *fakeIdentityRepo) GetByTypeAndIdentifier(_ context.Context, identityType model.IdentityType, identifier string) (*model.UserIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[string(identityType)+":"+identifier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return identity, nil
}
