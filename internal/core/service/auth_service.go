package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emsys/identity-service/internal/core/domain"
	"github.com/emsys/identity-service/internal/core/ports"
)

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	accounts ports.AccountRepository
	hasher   ports.CredentialHasher
	issuer   ports.TokenIssuer
	throttle ports.LoginThrottle
	log      zerolog.Logger
}

func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.CredentialHasher,
	issuer ports.TokenIssuer,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{accounts: accounts, hasher: hasher, issuer: issuer, throttle: throttle, log: log}
}

// Login authenticates the credentials and returns a signed token with the
// account's current roles. Unknown username and wrong password answer with
// the same error, and the unknown-username path still burns a verification
// against a dummy digest so the two cases are indistinguishable by timing.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		blocked, err := s.throttle.TooManyFailures(ctx, username)
		if err != nil {
			// The throttle is best-effort. Fail open, keep authenticating.
			s.log.Warn().Err(err).Msg("login throttle check failed")
		} else if blocked {
			s.log.Info().Str("username", username).Msg("login throttled")
			return nil, domain.ErrInvalidCredentials
		}
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.hasher.Verify(password, dummyDigest)
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username); err != nil {
			s.log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	roles, err := s.accounts.RolesOf(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	token, err := s.issuer.Issue(account.ID, account.Username, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Str("username", account.Username).Msg("login succeeded")

	return &ports.LoginResult{
		Token:    token,
		ID:       account.ID,
		Username: account.Username,
		Roles:    roles,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
}
