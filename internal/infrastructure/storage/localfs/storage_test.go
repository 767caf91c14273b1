package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArchiveSaveOpenRoundtrip(t *testing.T) {
	archive, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	payload := `{"fragments":[]}`
	if err := archive.Save(context.Background(), "batch.json", strings.NewReader(payload)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reader, err := archive.Open(context.Background(), "batch.json")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestArchiveStripsPathComponentsFromKeys(t *testing.T) {
	base := t.TempDir()
	archive, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := archive.Save(context.Background(), "../escape/batch.json", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "batch.json")); err != nil {
		t.Fatalf("expected file inside archive dir: %v", err)
	}
}

func TestArchiveOpenMissingKey(t *testing.T) {
	archive, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := archive.Open(context.Background(), "missing.json"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}
