package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"legenda/internal/logging"
	"legenda/internal/services"
)

func newTestMaterializer(t *testing.T, maxBytes int64) (*Materializer, string) {
	t.Helper()
	dir := t.TempDir()
	return NewMaterializer(dir, maxBytes, logging.NewNop()), dir
}

func TestMaterializeWritesUniqueFile(t *testing.T) {
	m, dir := newTestMaterializer(t, 1024)

	first, err := m.Materialize(strings.NewReader("hello"), "take.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second, err := m.Materialize(strings.NewReader("hello"), "take.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if first.Path == second.Path {
		t.Fatal("expected unique scratch paths for identical uploads")
	}
	if first.Size != 5 {
		t.Fatalf("unexpected size %d", first.Size)
	}
	if filepath.Dir(first.Path) != dir {
		t.Fatalf("scratch file outside scratch dir: %s", first.Path)
	}
}

func TestMaterializeRejectsEmptyWithoutWrite(t *testing.T) {
	m, dir := newTestMaterializer(t, 1024)

	_, err := m.Materialize(strings.NewReader(""), "silence.wav", "audio/wav")
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("empty upload must not touch the filesystem, found %d entries", len(entries))
	}
}

func TestMaterializeRejectsOversize(t *testing.T) {
	m, _ := newTestMaterializer(t, 4)

	_, err := m.Materialize(strings.NewReader("12345"), "big.wav", "audio/wav")
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}
	if !strings.Contains(err.Error(), "limit") {
		t.Fatalf("expected limit detail, got %v", err)
	}
}

func TestExtensionDerivation(t *testing.T) {
	m, _ := newTestMaterializer(t, 1024)

	cases := []struct {
		filename  string
		mediaType string
		wantExt   string
	}{
		{"voice", "audio/mpeg", ".mp3"},
		{"voice", "audio/wav", ".wav"},
		{"voice", "audio/ogg", ".ogg"},
		{"voice", "audio/x-m4a", ".m4a"},
		{"voice", "video/webm", ".webm"},
		{"voice", "application/octet-stream", ".wav"},
		{"", "", ".wav"},
		{"clip.mp4", "video/mp4", ".mp4"},
	}
	for _, tc := range cases {
		sf, err := m.Materialize(strings.NewReader("x"), tc.filename, tc.mediaType)
		if err != nil {
			t.Fatalf("Materialize(%q, %q): %v", tc.filename, tc.mediaType, err)
		}
		if got := filepath.Ext(sf.Path); got != tc.wantExt {
			t.Errorf("Materialize(%q, %q) ext = %q, want %q", tc.filename, tc.mediaType, got, tc.wantExt)
		}
		sf.Release()
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m, _ := newTestMaterializer(t, 1024)

	sf, err := m.Materialize(strings.NewReader("data"), "a.wav", "audio/wav")
	if err != nil {
		t.Fatal(err)
	}
	sf.Release()
	if _, err := os.Stat(sf.Path); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err = %v", err)
	}
	// Second release must not panic or error.
	sf.Release()
}
