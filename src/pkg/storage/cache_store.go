package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"golang.org/x/crypto/blake2b"

	"powertree/local-app/src/pkg/log"
)

const cacheEncoding = "snappy"

var (
	// ErrCacheEmpty is returned when the requested slot was never written.
	ErrCacheEmpty = errors.New("cache slot is empty")
	// ErrCacheCorrupt is returned when a slot's payload fails its checksum
	// or cannot be decoded.
	ErrCacheCorrupt = errors.New("cache slot is corrupt")
)

// CacheStore holds named slots of serialized trees that survive restarts.
type CacheStore interface {
	CacheSave(ctx context.Context, slot string, payload []byte) error
	CacheLoad(ctx context.Context, slot string) ([]byte, error)
	CacheClear(ctx context.Context, slot string) error
}

// CacheStorage implements CacheStore on top of the SQL database.
// Payloads are snappy-compressed and guarded by a BLAKE2b-256 checksum of
// the uncompressed bytes.
type CacheStorage struct {
	db     Database
	logger *log.Logger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db Database, logger *log.Logger) *CacheStorage {
	return &CacheStorage{db: db, logger: logger}
}

// CacheSave overwrites the slot with payload.
func (s *CacheStorage) CacheSave(ctx context.Context, slot string, payload []byte) error {
	s.logger.Info(ctx, "Saving cache slot", log.Fields{"slot": slot, "size": len(payload)})

	sum := blake2b.Sum256(payload)
	compressed := snappy.Encode(nil, payload)

	if err := s.db.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO cache_slots (slot, payload, checksum, encoding, updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			checksum = excluded.checksum,
			encoding = excluded.encoding,
			updated = excluded.updated
	`, slot, compressed, sum[:], cacheEncoding, time.Now().UTC())
	if err != nil {
		s.db.Rollback()
		s.logger.Error(ctx, "Failed to write cache slot", log.Fields{"slot": slot, "error": err})
		return fmt.Errorf("failed to write cache slot %s: %w", slot, err)
	}

	if err := s.db.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache slot %s: %w", slot, err)
	}

	s.logger.Debug(ctx, "Cache slot saved", log.Fields{"slot": slot, "compressed": len(compressed)})
	return nil
}

// CacheLoad returns the payload stored in the slot. It returns
// ErrCacheEmpty when the slot was never written and ErrCacheCorrupt when
// the stored bytes do not verify.
func (s *CacheStorage) CacheLoad(ctx context.Context, slot string) ([]byte, error) {
	s.logger.Info(ctx, "Loading cache slot", log.Fields{"slot": slot})

	var compressed, checksum []byte
	var encoding string
	err := s.db.QueryRow(ctx, `SELECT payload, checksum, encoding FROM cache_slots WHERE slot = ?`, slot).
		Scan(&compressed, &checksum, &encoding)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Info(ctx, "Cache slot is empty", log.Fields{"slot": slot})
		return nil, ErrCacheEmpty
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to read cache slot", log.Fields{"slot": slot, "error": err})
		return nil, fmt.Errorf("failed to read cache slot %s: %w", slot, err)
	}

	if encoding != cacheEncoding {
		return nil, fmt.Errorf("%w: unknown encoding %q", ErrCacheCorrupt, encoding)
	}
	payload, err := snappy.Decode(nil, compressed)
	if err != nil {
		s.logger.Warn(ctx, "Cache slot payload does not decode", log.Fields{"slot": slot, "error": err})
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(sum[:], checksum) {
		s.logger.Warn(ctx, "Cache slot checksum mismatch", log.Fields{"slot": slot})
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCacheCorrupt)
	}

	return payload, nil
}

// CacheClear empties the slot.
func (s *CacheStorage) CacheClear(ctx context.Context, slot string) error {
	s.logger.Info(ctx, "Clearing cache slot", log.Fields{"slot": slot})
	if _, err := s.db.Exec(ctx, `DELETE FROM cache_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("failed to clear cache slot %s: %w", slot, err)
	}
	return nil
}
