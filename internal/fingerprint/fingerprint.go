// Package fingerprint computes stable content identities for documents.
//
// The full SHA-256 of a document is only reused from the cache when every
// cheap signal agrees with the cached entry: the quick key, the exact
// modification and change times, a probe digest over the head and tail of
// the file, and a recording time that is clear of the timestamp ambiguity
// window. Anything else rehashes.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"assistant-ai/internal/contextutil"
	"assistant-ai/internal/storage"
)

const (
	// probeSpan bytes are sampled from each end of the file for the probe digest.
	// Files up to twice this size are probed in full.
	probeSpan = 64 << 10

	// racyWindow is how far past the modification time an entry must have been
	// recorded before its hash is trusted. Writes landing within the same
	// timestamp granule as the hash would otherwise go unnoticed.
	racyWindow = time.Second

	hashBufferSize = 1 << 20
)

// Fingerprint is the content identity of a document at one point in time.
type Fingerprint struct {
	ContentHash     string `json:"content_hash"` // hex SHA-256
	SizeBytes       int64  `json:"size_bytes"`
	ModifiedAtEpoch int64  `json:"modified_at_epoch"`
	QuickKey        string `json:"quick_key"`
}

// SameContent reports whether two fingerprints identify the same bytes.
// Modification metadata is advisory and does not take part.
func (f Fingerprint) SameContent(other Fingerprint) bool {
	return f.ContentHash != "" && f.ContentHash == other.ContentHash && f.SizeBytes == other.SizeBytes
}

// CollectionID derives the index collection identifier from the content hash alone.
func CollectionID(fp Fingerprint) string {
	if len(fp.ContentHash) < 24 {
		return "doc_" + fp.ContentHash
	}
	return "doc_" + fp.ContentHash[:24]
}

// QuickKey is the cheap size and modification time composite for a file.
func QuickKey(info fs.FileInfo) string {
	return fmt.Sprintf("%d_%d", info.Size(), info.ModTime().Unix())
}

// Service computes fingerprints, caching full hashes per path.
type Service struct {
	store storage.FingerprintStore
	now   func() time.Time
}

// NewService creates a fingerprint service backed by store.
func NewService(store storage.FingerprintStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Compute returns the fingerprint of the file at path.
func (s *Service) Compute(ctx context.Context, path string) (Fingerprint, error) {
	logger := contextutil.LoggerFromContext(ctx)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return Fingerprint{}, fmt.Errorf("document %s is a directory", absPath)
	}

	quickKey := QuickKey(info)
	probe, err := probeDigest(f, info.Size())
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to probe document: %w", err)
	}

	cached, err := s.store.Get(ctx, absPath)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.WarnContext(ctx, "fingerprint cache read failed, rehashing", "path", absPath, "error", err)
	default:
		reason := s.distrust(cached, info, quickKey, probe)
		if reason == "" {
			logger.DebugContext(ctx, "fingerprint reused", "path", absPath, "quick_key", quickKey)
			return fromRecord(cached), nil
		}
		logger.DebugContext(ctx, "fingerprint cache entry not trusted", "path", absPath, "reason", reason)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Fingerprint{}, fmt.Errorf("failed to rewind document: %w", err)
	}
	contentHash, err := hashContent(ctx, f)
	if err != nil {
		return Fingerprint{}, err
	}

	rec := &storage.FingerprintRecord{
		Path:        absPath,
		QuickKey:    quickKey,
		ContentHash: contentHash,
		ProbeHash:   probe,
		SizeBytes:   info.Size(),
		ModifiedAt:  info.ModTime(),
		ChangedAt:   changeTime(info),
		RecordedAt:  s.now(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		logger.WarnContext(ctx, "failed to cache fingerprint", "path", absPath, "error", err)
	}

	logger.DebugContext(ctx, "fingerprint computed", "path", absPath, "size", info.Size())
	return fromRecord(rec), nil
}

// distrust returns why a cached entry cannot stand in for a full hash, or "" if it can.
func (s *Service) distrust(rec *storage.FingerprintRecord, info fs.FileInfo, quickKey, probe string) string {
	switch {
	case rec.QuickKey != quickKey:
		return "quick_key"
	case rec.SizeBytes != info.Size():
		return "size"
	case !rec.ModifiedAt.Equal(info.ModTime()):
		return "mtime"
	case !rec.ChangedAt.Equal(changeTime(info)):
		return "ctime"
	case !rec.RecordedAt.After(info.ModTime().Add(racyWindow)):
		return "racy"
	case rec.ProbeHash != probe:
		return "probe"
	}
	return ""
}

func fromRecord(rec *storage.FingerprintRecord) Fingerprint {
	return Fingerprint{
		ContentHash:     rec.ContentHash,
		SizeBytes:       rec.SizeBytes,
		ModifiedAtEpoch: rec.ModifiedAt.Unix(),
		QuickKey:        rec.QuickKey,
	}
}

// probeDigest hashes the size and the first and last probeSpan bytes.
func probeDigest(r io.ReaderAt, size int64) (string, error) {
	h := sha256.New()
	var sizeBuf [8]byte
	binary.BigEndian.PutUint64(sizeBuf[:], uint64(size))
	h.Write(sizeBuf[:])

	if size <= 2*probeSpan {
		if _, err := io.Copy(h, io.NewSectionReader(r, 0, size)); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	if _, err := io.Copy(h, io.NewSectionReader(r, 0, probeSpan)); err != nil {
		return "", err
	}
	if _, err := io.Copy(h, io.NewSectionReader(r, size-probeSpan, probeSpan)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashContent(ctx context.Context, r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashBufferSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
