// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package internal_ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/connectors"
)

// Store persists the device-scoped usage log: an ordered list of instants,
// one per completed analysis submission. The contract is a single key/value
// slot with no schema versioning — a corrupt or missing value reads as an
// empty list, never as an error.
type Store interface {
	// Load reads the usage instants. A missing or unparseable value yields
	// an empty slice; only persistence-layer failures return an error.
	Load(ctx context.Context) ([]time.Time, error)

	// Save rewrites the usage instants, replacing whatever was stored.
	Save(ctx context.Context, instants []time.Time) error
}

// KVRecord is one key/value row in the device-scoped sqlite database.
type KVRecord struct {
	Key         string `gorm:"primaryKey;column:key"`
	Value       string `gorm:"column:value"`
	UpdatedDate time.Time
}

func (KVRecord) TableName() string { return "kv_records" }

const usageLogKey = "health_analysis_usage"

type sqliteStore struct {
	sqlite connectors.SqliteConnector
	logger commons.Logger
}

// NewSqliteStore creates the usage store backed by the device-scoped sqlite
// database, migrating the kv table if needed.
func NewSqliteStore(sqlite connectors.SqliteConnector, logger commons.Logger) (Store, error) {
	if err := sqlite.DB(context.Background()).AutoMigrate(&KVRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_records: %w", err)
	}
	return &sqliteStore{sqlite: sqlite, logger: logger}, nil
}

func (s *sqliteStore) Load(ctx context.Context) ([]time.Time, error) {
	db := s.sqlite.DB(ctx)

	var rec KVRecord
	if err := db.Where("key = ?", usageLogKey).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []time.Time{}, nil
		}
		return nil, fmt.Errorf("failed to load usage log: %w", err)
	}

	var instants []time.Time
	if err := json.Unmarshal([]byte(rec.Value), &instants); err != nil {
		// No schema versioning: corrupt value is treated as an empty list.
		s.logger.Warnf("usage log value is corrupt, treating as empty: %v", err)
		return []time.Time{}, nil
	}
	return instants, nil
}

func (s *sqliteStore) Save(ctx context.Context, instants []time.Time) error {
	value, err := json.Marshal(instants)
	if err != nil {
		return fmt.Errorf("failed to serialize usage log: %w", err)
	}

	db := s.sqlite.DB(ctx)
	rec := KVRecord{
		Key:         usageLogKey,
		Value:       string(value),
		UpdatedDate: time.Now(),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_date"}),
	}).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save usage log: %w", err)
	}
	return nil
}

// memoryStore is the in-memory Store used by tests and the sample-data path.
type memoryStore struct {
	instants []time.Time
	loadErr  error
	saveErr  error
}

// NewMemoryStore creates a Store holding its state in memory.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (m *memoryStore) Load(ctx context.Context) ([]time.Time, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]time.Time, len(m.instants))
	copy(out, m.instants)
	return out, nil
}

func (m *memoryStore) Save(ctx context.Context, instants []time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.instants = make([]time.Time, len(instants))
	copy(m.instants, instants)
	return nil
}
