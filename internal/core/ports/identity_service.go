package ports

import "context"

// RegisterInput carries the validated registration fields. The plaintext
// password is hashed inside the service and never persisted or logged.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// RegistrationResult is the public identity of a newly created account.
type RegistrationResult struct {
	ID       string
	Username string
	Email    string
	Roles    []string
}

// LoginResult carries a signed token plus the identity it represents.
type LoginResult struct {
	Token    string
	ID       string
	Username string
	Roles    []string
}

// AssignmentResult is the target account's full role list after a grant.
type AssignmentResult struct {
	Roles []string
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*RegistrationResult, error)
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// RoleAssignmentService grants a named role to a target account. Callers are
// trusted to have passed the admin gate already; the service never re-derives
// the caller's identity.
type RoleAssignmentService interface {
	AssignRole(ctx context.Context, targetAccountID, roleName string) (*AssignmentResult, error)
}

// CredentialHasher produces salted one-way password digests and verifies
// candidates against them in constant time.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer builds a signed claim set for an authenticated identity.
type TokenIssuer interface {
	Issue(accountID, username string, roles []string) (string, error)
}

// LoginThrottle rate-limits failed login attempts per username.
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
