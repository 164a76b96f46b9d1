package storage

import "time"

// FingerprintRecord is the cached content identity of a document path.
type FingerprintRecord struct {
	Path        string
	QuickKey    string // "<size>_<mtime seconds>"
	ContentHash string // SHA-256 hex of the full content
	ProbeHash   string // SHA-256 hex of size plus head and tail samples
	SizeBytes   int64
	ModifiedAt  time.Time // file modification time at hashing
	ChangedAt   time.Time // inode change time, zero where the platform has none
	RecordedAt  time.Time // when the hash was computed
}
