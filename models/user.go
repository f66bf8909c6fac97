package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity record resolved from a reference token
type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Reference   string    `json:"reference" db:"reference"`   // value carried in the token subject
	SubjectID   string    `json:"subject_id" db:"subject_id"` // identity exposed to downstream handlers
	Authorities []string  `json:"authorities" db:"authorities"`
	Disabled    bool      `json:"disabled" db:"disabled"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(reference, subjectID string, authorities ...string) *User {
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		Reference:   reference,
		SubjectID:   subjectID,
		Authorities: authorities,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Active returns true if the user may authenticate
func (u *User) Active() bool {
	return u != nil && !u.Disabled && u.SubjectID != ""
}
