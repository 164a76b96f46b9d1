package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	return p
}

func TestLibrary_Resolve(t *testing.T) {
	root := t.TempDir()
	report := writeFile(t, root, "reports/q1.pdf", "%PDF")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0755); err != nil {
		t.Fatal(err)
	}
	outside := writeFile(t, t.TempDir(), "secret.txt", "x")

	lib := NewLibrary(root, nil)

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{name: "relative", ref: "reports/q1.pdf", want: report},
		{name: "rooted path outside library", ref: "/reports/q1.pdf", wantErr: ErrInvalidRef},
		{name: "redundant segments", ref: "reports/./q1.pdf", want: report},
		{name: "absolute inside root", ref: report, want: report},
		{name: "absolute outside root", ref: outside, wantErr: ErrInvalidRef},
		{name: "traversal", ref: "../secret.txt", wantErr: ErrInvalidRef},
		{name: "nested traversal", ref: "reports/../../secret.txt", wantErr: ErrInvalidRef},
		{name: "empty", ref: "  ", wantErr: ErrInvalidRef},
		{name: "missing", ref: "reports/q2.pdf", wantErr: ErrNotFound},
		{name: "directory", ref: "empty", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lib.Resolve(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %v", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestCleanRelPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a/b.md", want: "a/b.md"},
		{in: "a//b.md", want: "a/b.md"},
		{in: "./a.md", want: "a.md"},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
		{in: "a/../b.md", wantErr: true},
	}
	for _, tt := range tests {
		got, err := cleanRelPath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("cleanRelPath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("cleanRelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLibrary_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.pdf", "%PDF")
	writeFile(t, root, "notes/b.md", "# B")
	writeFile(t, root, "notes/deep/c.txt", "c")
	writeFile(t, root, "image.png", "png")
	writeFile(t, root, ".hidden/d.md", "# D")
	writeFile(t, root, ".e.md", "# E")

	supported := func(p string) bool {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".pdf", ".md", ".txt":
			return true
		}
		return false
	}

	entries, err := NewLibrary(root, supported).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := make(map[string]Entry)
	for _, e := range entries {
		got[e.Ref] = e
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d entries, want 3: %v", len(got), entries)
	}
	for ref, folder := range map[string]string{"a.pdf": "", "notes/b.md": "notes", "notes/deep/c.txt": "notes/deep"} {
		e, ok := got[ref]
		if !ok {
			t.Errorf("missing entry %s", ref)
			continue
		}
		if e.Folder != folder {
			t.Errorf("%s folder = %q, want %q", ref, e.Folder, folder)
		}
		if e.SizeBytes == 0 || e.AbsPath == "" {
			t.Errorf("%s entry incomplete: %+v", ref, e)
		}
	}
}

func TestLibrary_List_MissingRoot(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"), nil)
	entries, err := lib.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List() = %v, want empty", entries)
	}
}

func TestLibrary_List_Canceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLibrary(root, nil).List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}
