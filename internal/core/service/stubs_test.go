package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/emsys/identity-service/internal/core/domain"
)

// stubAccountRepo is an in-memory AccountRepository with the same uniqueness
// semantics as the Mongo implementation: Create and AddRoleBinding enforce
// the constraints, ClaimAdminBootstrap succeeds exactly once.
type stubAccountRepo struct {
	mu        sync.Mutex
	seq       int
	accounts  map[string]*domain.Account // by id
	bindings  map[string][]string        // account id → role ids
	claimed   bool
	claimedBy string
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		accounts: make(map[string]*domain.Account),
		bindings: make(map[string][]string),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.seq++
	created := cloneAccount(account)
	created.ID = "acc_" + strconv.Itoa(r.seq)
	r.accounts[created.ID] = cloneAccount(created)
	return created, nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) AddRoleBinding(_ context.Context, accountID, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.bindings[accountID] {
		if id == roleID {
			return domain.ErrRoleAlreadyAssigned
		}
	}
	r.bindings[accountID] = append(r.bindings[accountID], roleID)
	return nil
}

func (r *stubAccountRepo) RolesOf(_ context.Context, accountID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := []string{}
	for _, id := range r.bindings[accountID] {
		// Role ids in the stub are the role names themselves.
		names = append(names, id)
	}
	return names, nil
}

func (r *stubAccountRepo) ClaimAdminBootstrap(_ context.Context, accountID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed {
		return false, nil
	}
	r.claimed = true
	r.claimedBy = accountID
	return true, nil
}

func (r *stubAccountRepo) bindingCount(accountID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings[accountID])
}

// stubRoleRepo resolves roles from a fixed name set. Role ids equal the role
// names so stubAccountRepo.RolesOf can report names directly.
type stubRoleRepo struct {
	names []string
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	return &stubRoleRepo{names: names}
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, n := range r.names {
		if n == name {
			return &domain.Role{ID: n, Name: n}, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

// stubThrottle implements ports.LoginThrottle with a plain counter.
type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	limit    int
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) TooManyFailures(_ context.Context, username string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[username] >= t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[username]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, username)
	return nil
}
