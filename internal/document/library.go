// Package document resolves document references against a library root.
package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrInvalidRef is returned for empty references and references that escape the root.
	ErrInvalidRef = errors.New("invalid document reference")
	// ErrNotFound is returned when a reference names no regular file.
	ErrNotFound = errors.New("document not found")
)

// Entry is a document found while scanning the library.
type Entry struct {
	Ref        string    `json:"ref"`    // Path relative to the root, slash separated
	Folder     string    `json:"folder"` // Ref without the file name, "" at the root
	AbsPath    string    `json:"-"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Library is a directory of documents.
type Library struct {
	Root     string
	supports func(path string) bool
}

// NewLibrary creates a library rooted at root. supports filters List; nil lists every file.
func NewLibrary(root string, supports func(path string) bool) *Library {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Library{Root: filepath.Clean(root), supports: supports}
}

// Resolve maps ref to an absolute path of an existing file inside the root.
// Absolute refs are accepted only when they already point inside the root.
func (l *Library) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidRef)
	}

	var abs string
	if filepath.IsAbs(ref) {
		abs = filepath.Clean(ref)
		if !l.contains(abs) {
			return "", fmt.Errorf("%w: %q is outside the library", ErrInvalidRef, ref)
		}
	} else {
		rel, err := cleanRelPath(filepath.ToSlash(ref))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRef, err)
		}
		abs, err = buildAbsPath(l.Root, rel)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidRef, err)
		}
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a file", ErrNotFound, ref)
	}
	return abs, nil
}

// List walks the root and returns every supported document, skipping hidden directories.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(l.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", p, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != l.Root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if l.supports != nil && !l.supports(p) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		rel, err := filepath.Rel(l.Root, p)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		folder := path.Dir(rel)
		if folder == "." {
			folder = ""
		}

		entries = append(entries, Entry{
			Ref:        rel,
			Folder:     folder,
			AbsPath:    p,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && len(entries) == 0 {
			return []Entry{}, nil
		}
		return entries, fmt.Errorf("failed to scan library %s: %w", l.Root, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (l *Library) contains(abs string) bool {
	return abs == l.Root || strings.HasPrefix(abs, l.Root+string(os.PathSeparator))
}

func cleanRelPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty path")
	}

	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", errors.New("path traversal detected")
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid path")
	}
	return cleaned, nil
}

func buildAbsPath(root, rel string) (string, error) {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) && abs != root {
		return "", errors.New("path escapes library root")
	}
	return abs, nil
}
