package ports

import (
	"context"

	"github.com/emsys/identity-service/internal/core/domain"
)

// AccountRepository defines the persistence interface for accounts and role
// bindings. Existence checks are advisory: the authoritative uniqueness
// guarantees live in the store's unique indexes, and Create/AddRoleBinding
// report collisions even when the advisory check passed.
type AccountRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	AddRoleBinding(ctx context.Context, accountID, roleID string) error
	RolesOf(ctx context.Context, accountID string) ([]string, error)

	// ClaimAdminBootstrap atomically claims the one-time admin bootstrap for
	// the given account. Exactly one call ever returns true across the whole
	// lifetime of the system; every later call returns false.
	ClaimAdminBootstrap(ctx context.Context, accountID string) (bool, error)
}

// RoleRepository resolves pre-seeded roles by exact name.
type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Role, error)
}
