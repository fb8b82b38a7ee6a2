package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emsys/identity-service/internal/core/domain"
	"github.com/emsys/identity-service/internal/core/ports"
)

// RegistrationService creates accounts and assigns the bootstrap role.
type RegistrationService struct {
	accounts ports.AccountRepository
	roles    ports.RoleRepository
	hasher   ports.CredentialHasher
	log      zerolog.Logger
}

func NewRegistrationService(
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	hasher ports.CredentialHasher,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{accounts: accounts, roles: roles, hasher: hasher, log: log}
}

// Register creates a new account, hashes its password, and binds the
// bootstrap role. The very first account in the system receives the Admin
// role; everyone after receives User. Which account was first is decided by
// an atomic claim in the store, not by a count pre-check, so two concurrent
// first registrations cannot both end up as admin.
func (s *RegistrationService) Register(ctx context.Context, in ports.RegisterInput) (*ports.RegistrationResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	// Advisory pre-checks. The unique indexes remain authoritative; Create
	// below still reports collisions that race past these.
	if exists, err := s.accounts.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if exists {
		return nil, domain.ErrAccountExists
	}
	if exists, err := s.accounts.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if exists {
		return nil, domain.ErrAccountExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	roleName, err := s.bootstrapRole(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			// The seed is missing. This is a server misconfiguration, not a
			// caller problem.
			s.log.Error().Str("role", roleName).Msg("bootstrap role not seeded")
			return nil, domain.ErrRoleNotSeeded
		}
		return nil, fmt.Errorf("resolve role %q: %w", roleName, err)
	}

	if err := s.accounts.AddRoleBinding(ctx, created.ID, role.ID); err != nil {
		return nil, fmt.Errorf("bind role %q: %w", roleName, err)
	}

	s.log.Info().
		Str("account_id", created.ID).
		Str("username", created.Username).
		Str("role", roleName).
		Msg("account registered")

	return &ports.RegistrationResult{
		ID:       created.ID,
		Username: created.Username,
		Email:    created.Email,
		Roles:    []string{role.Name},
	}, nil
}

// bootstrapRole decides between Admin and User for a freshly created account.
func (s *RegistrationService) bootstrapRole(ctx context.Context, accountID string) (string, error) {
	claimed, err := s.accounts.ClaimAdminBootstrap(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("claim admin bootstrap: %w", err)
	}
	if claimed {
		s.log.Info().Str("account_id", accountID).Msg("first account claimed admin bootstrap")
		return domain.RoleAdmin, nil
	}
	return domain.RoleUser, nil
}
