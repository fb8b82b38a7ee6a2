package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/emsys/identity-service/internal/core/domain"
)

const (
	collectionAccounts     = "accounts"
	collectionAccountRoles = "account_roles"
	collectionBootstrap    = "bootstrap"

	// bootstrapSentinelID is the fixed _id of the one admin bootstrap
	// document. Unique _id semantics guarantee exactly one insert ever
	// succeeds, which is what makes the first-admin decision race-safe.
	bootstrapSentinelID = "admin_bootstrap"
)

// AccountRepository persists accounts and role bindings in MongoDB. The
// uniqueness invariants (username, email, one binding per account/role pair)
// are enforced by unique indexes, not by the advisory Exists checks.
type AccountRepository struct {
	accounts  *mongo.Collection
	roles     *mongo.Collection
	bindings  *mongo.Collection
	bootstrap *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		accounts:  db.Collection(collectionAccounts),
		roles:     db.Collection(collectionRoles),
		bindings:  db.Collection(collectionAccountRoles),
		bootstrap: db.Collection(collectionBootstrap),
	}
}

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type mongoBinding struct {
	AccountID primitive.ObjectID `bson:"account_id"`
	RoleID    primitive.ObjectID `bson:"role_id"`
	GrantedAt time.Time          `bson:"granted_at"`
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *AccountRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.accounts.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count accounts: %w", err)
	}
	return n > 0, nil
}

// Count returns the total number of accounts. Advisory only: the admin
// bootstrap decision goes through ClaimAdminBootstrap, never through a
// count-then-create sequence.
func (r *AccountRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.accounts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// Create inserts a new account document. A unique-index collision on either
// username or email maps to domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{
		Username:     account.Username,
		Email:        account.Email,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
	}

	res, err := r.accounts.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected inserted id %T", res.InsertedID)
	}

	created := *account
	created.ID = oid.Hex()
	return &created, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ma mongoAccount
	if err := r.accounts.FindOne(ctx, filter).Decode(&ma); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	return &domain.Account{
		ID:           ma.ID.Hex(),
		Username:     ma.Username,
		Email:        ma.Email,
		FirstName:    ma.FirstName,
		LastName:     ma.LastName,
		PasswordHash: ma.PasswordHash,
		CreatedAt:    ma.CreatedAt,
	}, nil
}

// AddRoleBinding inserts an (account, role) binding. The compound unique
// index maps a duplicate pair to domain.ErrRoleAlreadyAssigned.
func (r *AccountRepository) AddRoleBinding(ctx context.Context, accountID, roleID string) error {
	accountOID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return domain.ErrAccountNotFound
	}
	roleOID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return domain.ErrRoleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.bindings.InsertOne(ctx, mongoBinding{
		AccountID: accountOID,
		RoleID:    roleOID,
		GrantedAt: time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRoleAlreadyAssigned
		}
		return fmt.Errorf("insert role binding: %w", err)
	}
	return nil
}

// RolesOf returns the names of all roles bound to the account. Set
// semantics; no ordering guarantee.
func (r *AccountRepository) RolesOf(ctx context.Context, accountID string) ([]string, error) {
	accountOID, err := primitive.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.bindings.Find(ctx, bson.M{"account_id": accountOID})
	if err != nil {
		return nil, fmt.Errorf("find role bindings: %w", err)
	}
	defer cur.Close(ctx)

	var roleIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var b mongoBinding
		if err := cur.Decode(&b); err != nil {
			return nil, fmt.Errorf("decode role binding: %w", err)
		}
		roleIDs = append(roleIDs, b.RoleID)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate role bindings: %w", err)
	}
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	roleCur, err := r.roles.Find(ctx, bson.M{"_id": bson.M{"$in": roleIDs}})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	defer roleCur.Close(ctx)

	var names []string
	for roleCur.Next(ctx) {
		var role mongoRole
		if err := roleCur.Decode(&role); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		names = append(names, role.Name)
	}
	if err := roleCur.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return names, nil
}

// ClaimAdminBootstrap attempts the one-time conditional insert of the
// bootstrap sentinel. The first caller wins and returns true; every later
// caller collides on the fixed _id and returns false.
func (r *AccountRepository) ClaimAdminBootstrap(ctx context.Context, accountID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.bootstrap.InsertOne(ctx, bson.M{
		"_id":        bootstrapSentinelID,
		"account_id": accountID,
		"claimed_at": time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("claim bootstrap: %w", err)
	}
	return true, nil
}

// EnsureIndexes creates the unique indexes that back the uniqueness
// invariants. Must run before the service accepts traffic.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	accountIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.accounts.Indexes().CreateMany(ctx, accountIndexes); err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}

	bindingIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "role_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := r.bindings.Indexes().CreateOne(ctx, bindingIndex); err != nil {
		return fmt.Errorf("create binding index: %w", err)
	}
	return nil
}
