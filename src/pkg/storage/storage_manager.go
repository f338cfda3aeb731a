package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"powertree/local-app/src/pkg/log"
	"powertree/local-app/src/pkg/model"
)

// schemaTimeout bounds schema creation at startup.
const schemaTimeout = 10 * time.Second

// Storage owns the database connection and exposes the quick cache on
// top of it.
type Storage struct {
	db     Database
	logger *log.Logger
	CacheStore
}

// NewStorage opens the database configured in cfg and prepares its schema.
// A DatabaseFile of ":memory:" keeps everything in memory.
func NewStorage(cfg *model.Config, logger *log.Logger) (*Storage, error) {
	driver, err := validateDBDriver(cfg.DatabaseType)
	if err != nil {
		return nil, fmt.Errorf("invalid database driver '%s': %w", cfg.DatabaseType, err)
	}

	db, err := NewDatabase(driver, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database instance: %w", err)
	}

	path := cfg.DatabaseFile
	if path != MemoryDSN {
		path = filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)
	}
	if err := db.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open database '%s': %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Storage{
		db:         db,
		logger:     logger,
		CacheStore: NewCacheStorage(db, logger),
	}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
