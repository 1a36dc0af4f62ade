package repositories

import (
	"errors"
	"strings"

	"kicks/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserDirectory is the set of registered users keyed by lowercased email.
// Implementations hand out copies; a caller never holds a pointer into the
// directory itself.
type UserDirectory interface {
	GetByEmail(email string) (*models.User, error)
	Exists(email string) bool
	Create(user *models.User) error
	Update(user *models.User) error
	Len() int
	Snapshot() models.Directory
}

// NormalizeEmail is the directory key for email.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}
