package repositories

import (
	"fmt"
	"sync"

	"kicks/internal/models"
)

// MemoryUserDirectory is an in-memory implementation of UserDirectory.
type MemoryUserDirectory struct {
	users models.Directory
	mu    sync.RWMutex
}

// NewMemoryUserDirectory creates a directory holding a copy of initial.
// Entries are re-keyed by their lowercased email.
func NewMemoryUserDirectory(initial models.Directory) *MemoryUserDirectory {
	users := make(models.Directory, len(initial))
	for _, u := range initial {
		if u == nil {
			continue
		}
		c := u.Clone()
		c.Email = NormalizeEmail(c.Email)
		users[c.Email] = c
	}
	return &MemoryUserDirectory{users: users}
}

// GetByEmail returns a copy of the user registered under email.
func (d *MemoryUserDirectory) GetByEmail(email string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return u.Clone(), nil
}

// Exists reports whether email is registered.
func (d *MemoryUserDirectory) Exists(email string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.users[NormalizeEmail(email)]
	return ok
}

// Create registers a copy of user. The email is lowercased first.
func (d *MemoryUserDirectory) Create(user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := NormalizeEmail(user.Email)
	if _, ok := d.users[key]; ok {
		return fmt.Errorf("%w: %s", ErrEmailTaken, key)
	}
	c := user.Clone()
	c.Email = key
	d.users[key] = c
	return nil
}

// Update replaces the entry for user's email with a copy of user.
func (d *MemoryUserDirectory) Update(user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := NormalizeEmail(user.Email)
	if _, ok := d.users[key]; !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, key)
	}
	c := user.Clone()
	c.Email = key
	d.users[key] = c
	return nil
}

// Len is the number of registered users.
func (d *MemoryUserDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// Snapshot returns a deep copy of every entry.
func (d *MemoryUserDirectory) Snapshot() models.Directory {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.users.Clone()
}
