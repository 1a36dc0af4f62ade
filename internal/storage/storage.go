// Package storage persists the storefront snapshot as a single JSON blob
// under one key. It owns the serialization format only; it never looks at
// what the fields mean.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"kicks/internal/models"
)

// DefaultKey is the key the snapshot is stored under unless configured otherwise.
const DefaultKey = "kicksStoreData"

var (
	// ErrNotFound is returned by a Backend when nothing is stored under a key.
	ErrNotFound = errors.New("snapshot not found")
	// ErrStorageParse marks a stored blob that could not be decoded.
	ErrStorageParse = errors.New("snapshot could not be parsed")
)

// Backend is a durable key/blob store.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Adapter loads and saves snapshots through a Backend.
type Adapter struct {
	backend Backend
	key     string
	log     logrus.FieldLogger
}

// NewAdapter creates an Adapter storing under key (DefaultKey if empty).
func NewAdapter(backend Backend, key string, log logrus.FieldLogger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Adapter{backend: backend, key: key, log: log}
}

// Key is the storage key of the snapshot.
func (a *Adapter) Key() string { return a.key }

// Load returns the stored snapshot. A missing, unreadable or corrupt blob
// yields the default empty snapshot; the failure is logged, not returned.
func (a *Adapter) Load(ctx context.Context) models.Snapshot {
	data, err := a.backend.Load(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.WithError(err).WithField("key", a.key).Error("Failed to load from storage")
		}
		return models.DefaultSnapshot()
	}

	snap, err := Decode(data)
	if err != nil {
		a.log.WithError(err).WithField("key", a.key).Error("Failed to load from storage")
		return models.DefaultSnapshot()
	}
	return snap
}

// Save overwrites the stored snapshot with snap.
func (a *Adapter) Save(ctx context.Context, snap models.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := a.backend.Save(ctx, a.key, data); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", a.key, err)
	}
	return nil
}

// Reset stores the default empty snapshot.
func (a *Adapter) Reset(ctx context.Context) error {
	return a.Save(ctx, models.DefaultSnapshot())
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Encode serializes a snapshot.
func Encode(snap models.Snapshot) ([]byte, error) {
	if snap.Users == nil {
		snap.Users = models.Directory{}
	}
	if snap.Cart == nil {
		snap.Cart = models.Cart{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a serialized snapshot. Failures wrap ErrStorageParse.
func Decode(data []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrStorageParse, err)
	}
	snap.Normalize()
	return snap, nil
}
