package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"atlwatch/pkg/core"

	"github.com/tidwall/buntdb"
)

// recordKey is the single document key; the database holds exactly one
// AtlRecord.
const recordKey = "atl"

// BuntStorage implements the core.RecordStorage interface using BuntDB
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (core.RecordStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (core.RecordStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (core.RecordStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	return &BuntStorage{db: db}, nil
}

// Load reads the persisted record. The boolean result is false when no
// record has been written yet.
func (b *BuntStorage) Load() (core.AtlRecord, bool, error) {
	var record core.AtlRecord
	found := false

	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(recordKey)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}

		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		found = true
		return nil
	})
	if err != nil {
		return core.AtlRecord{}, false, err
	}

	return record, found, nil
}

// Save overwrites the persisted record.
func (b *BuntStorage) Save(record core.AtlRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		_, _, err = tx.Set(recordKey, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store record: %w", err)
		}

		return nil
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
