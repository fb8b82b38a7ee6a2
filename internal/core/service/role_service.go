package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emsys/identity-service/internal/core/domain"
	"github.com/emsys/identity-service/internal/core/ports"
)

// RoleAssignmentService grants roles to existing accounts. The admin-only
// gate is enforced by the RBAC middleware before requests reach this service.
type RoleAssignmentService struct {
	accounts ports.AccountRepository
	roles    ports.RoleRepository
	log      zerolog.Logger
}

func NewRoleAssignmentService(
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	log zerolog.Logger,
) *RoleAssignmentService {
	return &RoleAssignmentService{accounts: accounts, roles: roles, log: log}
}

// AssignRole binds roleName to the target account and returns the account's
// full role list after the grant. An unknown account or role is a not-found
// condition; an existing binding is reported distinctly so the caller can
// tell "already granted" from success.
func (s *RoleAssignmentService) AssignRole(ctx context.Context, targetAccountID, roleName string) (*ports.AssignmentResult, error) {
	account, err := s.accounts.FindByID(ctx, targetAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	role, err := s.roles.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}

	if err := s.accounts.AddRoleBinding(ctx, account.ID, role.ID); err != nil {
		if errors.Is(err, domain.ErrRoleAlreadyAssigned) {
			return nil, domain.ErrRoleAlreadyAssigned
		}
		return nil, fmt.Errorf("add role binding: %w", err)
	}

	roles, err := s.accounts.RolesOf(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	s.log.Info().
		Str("account_id", account.ID).
		Str("role", role.Name).
		Msg("role assigned")

	return &ports.AssignmentResult{Roles: roles}, nil
}
