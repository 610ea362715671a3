// Package store – low-level key-value persistence.
//
// This file provides the thin GORM layer under the cache store. All
// functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. No business logic lives here: only
// upsert, point read, delete, and prefix delete.
//
// Error semantics:
//   - When a key is absent, reads return ErrNotFound.
//   - On DB errors the raw gorm error is propagated.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mezoapp/salon-core/internal/domain"
)

// ErrNotFound is returned when a requested key does not exist. It aliases
// gorm.ErrRecordNotFound for consistency with the rest of the data layer.
var ErrNotFound = gorm.ErrRecordNotFound

// getKV reads the raw bytes stored under key, or ErrNotFound.
func getKV(ctx context.Context, db *gorm.DB, key string) ([]byte, error) {
	var row domain.KVEntry
	err := db.WithContext(ctx).
		Where("key = ?", key).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

// putKV upserts the raw bytes under key with an UTC write timestamp.
func putKV(ctx context.Context, db *gorm.DB, key string, value []byte) error {
	row := domain.KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

// deleteKV removes a single key. Deleting an absent key is not an error.
func deleteKV(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&domain.KVEntry{}).Error
}

// deleteByPrefix removes every key under the given namespace prefix.
func deleteByPrefix(ctx context.Context, db *gorm.DB, prefix string) error {
	return db.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Delete(&domain.KVEntry{}).Error
}

// hasKV reports whether a key exists at all, regardless of its contents.
func hasKV(ctx context.Context, db *gorm.DB, key string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.KVEntry{}).
		Where("key = ?", key).
		Count(&n).Error
	return n > 0, err
}
