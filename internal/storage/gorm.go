package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// snapshotRecord is one stored blob.
type snapshotRecord struct {
	Key       string `gorm:"column:snapshot_key;primaryKey;type:varchar(128)"`
	Data      string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (snapshotRecord) TableName() string {
	return "snapshots"
}

// GORMBackend stores blobs in a SQL table through GORM.
type GORMBackend struct {
	db *gorm.DB
}

// NewGORMBackend migrates the snapshots table and returns a backend over db.
func NewGORMBackend(db *gorm.DB) (*GORMBackend, error) {
	if err := db.AutoMigrate(&snapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshots table: %w", err)
	}
	return &GORMBackend{db: db}, nil
}

// Load fetches the blob stored for key.
func (b *GORMBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var rec snapshotRecord
	if err := b.db.WithContext(ctx).First(&rec, "snapshot_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	return []byte(rec.Data), nil
}

// Save upserts the blob for key.
func (b *GORMBackend) Save(ctx context.Context, key string, data []byte) error {
	rec := snapshotRecord{Key: key, Data: string(data), UpdatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "snapshot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *GORMBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
