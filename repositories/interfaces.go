package repositories

import (
	"context"
	"errors"

	"github.com/sazzler/api-gateway/models"
	"github.com/sazzler/api-gateway/token"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// UserRepository handles identity record operations
type UserRepository interface {
	token.IdentityLookup

	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByReference retrieves a user by the reference carried in tokens
	GetByReference(ctx context.Context, reference string) (*models.User, error)
}

// Repositories groups all repository instances
type Repositories struct {
	Users UserRepository
}
