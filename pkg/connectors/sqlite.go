// Copyright (c) 2025 VitalVoice
//
// Licensed under GPL-2.0 with VitalVoice Additional Terms.
// See LICENSE.md for commercial usage.
package connectors

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vitalvoice/pkg/commons"
	"github.com/vitalvoice/pkg/configs"
)

// SqliteConnector hands out gorm handles against the device-scoped sqlite
// database. The connector owns the connection; stores borrow handles per call.
type SqliteConnector interface {
	DB(ctx context.Context) *gorm.DB
}

type sqliteConnector struct {
	db     *gorm.DB
	logger commons.Logger
}

// NewSqliteConnector opens (creating if needed) the sqlite database at the
// configured path.
func NewSqliteConnector(cfg configs.SqliteConfig, logger commons.Logger) (SqliteConnector, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}
	logger.Infof("sqlite connected: path=%s", cfg.Path)
	return &sqliteConnector{db: db, logger: logger}, nil
}

func (c *sqliteConnector) DB(ctx context.Context) *gorm.DB {
	return c.db.WithContext(ctx)
}
