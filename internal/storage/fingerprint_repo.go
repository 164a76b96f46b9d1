package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_fingerprint_store.go -package=mocks assistant-ai/internal/storage FingerprintStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// FingerprintStore persists the last computed fingerprint per document path.
type FingerprintStore interface {
	// Get returns the record for path, or ErrNotFound.
	Get(ctx context.Context, path string) (*FingerprintRecord, error)
	// Put inserts or replaces the record for rec.Path.
	Put(ctx context.Context, rec *FingerprintRecord) error
	// Delete removes the record for path. Missing records are not an error.
	Delete(ctx context.Context, path string) error
}

// FingerprintRepo implements FingerprintStore on SQLite.
type FingerprintRepo struct {
	db *sql.DB
}

// NewFingerprintRepo creates a new FingerprintRepo.
func NewFingerprintRepo(db *sql.DB) *FingerprintRepo {
	return &FingerprintRepo{db: db}
}

// Get returns the record for path.
// Returns nil and ErrNotFound if not found.
func (r *FingerprintRepo) Get(ctx context.Context, path string) (*FingerprintRecord, error) {
	var rec FingerprintRecord
	var modifiedNS, changedNS, recordedNS int64

	err := r.db.QueryRowContext(ctx,
		"SELECT path, quick_key, content_hash, probe_hash, size_bytes, modified_at_ns, changed_at_ns, recorded_at_ns FROM fingerprints WHERE path = ?",
		path,
	).Scan(&rec.Path, &rec.QuickKey, &rec.ContentHash, &rec.ProbeHash, &rec.SizeBytes, &modifiedNS, &changedNS, &recordedNS)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprint: %w", err)
	}

	rec.ModifiedAt = time.Unix(0, modifiedNS)
	if changedNS != 0 {
		rec.ChangedAt = time.Unix(0, changedNS)
	}
	rec.RecordedAt = time.Unix(0, recordedNS)
	return &rec, nil
}

// Put inserts or replaces the record for rec.Path.
func (r *FingerprintRepo) Put(ctx context.Context, rec *FingerprintRecord) error {
	if rec.Path == "" {
		return fmt.Errorf("fingerprint path is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fingerprints (path, quick_key, content_hash, probe_hash, size_bytes, modified_at_ns, changed_at_ns, recorded_at_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET
		 quick_key = excluded.quick_key, content_hash = excluded.content_hash, probe_hash = excluded.probe_hash,
		 size_bytes = excluded.size_bytes, modified_at_ns = excluded.modified_at_ns, changed_at_ns = excluded.changed_at_ns, recorded_at_ns = excluded.recorded_at_ns`,
		rec.Path, rec.QuickKey, rec.ContentHash, rec.ProbeHash, rec.SizeBytes, rec.ModifiedAt.UnixNano(), changedAtNS(rec.ChangedAt), rec.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fingerprint: %w", err)
	}

	return nil
}

// Delete removes the record for path.
func (r *FingerprintRepo) Delete(ctx context.Context, path string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM fingerprints WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete fingerprint: %w", err)
	}
	return nil
}

func changedAtNS(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
