package domain

import (
	"errors"
	"time"
)

// Role names are resolved by exact, case-sensitive match against the seeded
// role set. An unresolvable name at registration time means the seed is
// missing and is a server misconfiguration, never a caller error.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrRoleNotFound = errors.New("role not found")
var ErrRoleAlreadyAssigned = errors.New("role already assigned")
var ErrRoleNotSeeded = errors.New("role seed missing")

// Account models a registered identity. Username and email are each unique
// across all accounts (case-sensitive, enforced by the storage layer). The
// password hash is never serialized.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role is a named capability label, pre-seeded and immutable.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AccountRole binds an account to a role. The (AccountID, RoleID) pair is
// unique; bindings accumulate monotonically and are never mutated here.
type AccountRole struct {
	AccountID string    `json:"account_id"`
	RoleID    string    `json:"role_id"`
	GrantedAt time.Time `json:"granted_at"`
}
