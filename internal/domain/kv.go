// Package domain – durable key-value row.
package domain

import "time"

// KVEntry is the single SQLite-backed table behind the cache store. Every
// persisted key of the client (cache envelopes, record arrays, the draft,
// the version marker) is one row. Value holds the serialized JSON bytes;
// the store exclusively owns their encoding.
type KVEntry struct {
	Key       string    `gorm:"type:TEXT NOT NULL;primaryKey;column:key"`
	Value     []byte    `gorm:"type:BLOB NOT NULL"`
	UpdatedAt time.Time `gorm:"type:DATETIME NOT NULL"`
}

// TableName implements the GORM tabler interface.
func (KVEntry) TableName() string { return "kv_entries" }
