package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sazzler/api-gateway/models"
	"github.com/sazzler/api-gateway/repositories"
	"github.com/sazzler/api-gateway/token"
	"go.uber.org/zap"
)

// UserRepository implements repositories.UserRepository and token.IdentityLookup
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

var (
	_ repositories.UserRepository = (*UserRepository)(nil)
	_ token.IdentityLookup        = (*UserRepository)(nil)
)

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, reference, subject_id, authorities, disabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Reference,
		user.SubjectID,
		pq.Array(user.Authorities),
		user.Disabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created",
		zap.String("id", user.ID.String()),
		zap.String("subject_id", user.SubjectID))
	return nil
}

// GetByReference retrieves a user by the reference carried in tokens
func (r *UserRepository) GetByReference(ctx context.Context, reference string) (*models.User, error) {
	query := `
		SELECT id, reference, subject_id, authorities, disabled, created_at, updated_at
		FROM users
		WHERE reference = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&user.ID,
		&user.Reference,
		&user.SubjectID,
		pq.Array(&user.Authorities),
		&user.Disabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user with reference %s", repositories.ErrNotFound, reference)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// LookupIdentity resolves a token reference to an active identity.
// Unknown and disabled users are both reported as token.ErrIdentityNotFound.
func (r *UserRepository) LookupIdentity(ctx context.Context, reference string) (*token.Identity, error) {
	user, err := r.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", token.ErrIdentityNotFound, reference)
		}
		return nil, err
	}
	if !user.Active() {
		return nil, fmt.Errorf("%w: %s is disabled", token.ErrIdentityNotFound, reference)
	}

	return &token.Identity{
		SubjectID:   user.SubjectID,
		Authorities: user.Authorities,
	}, nil
}
