package deploy

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeSourceFile(t *testing.T, dir string, name string, content string) {
	full := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("Failed to create source directory: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}
}

func archiveEntries(t *testing.T, archive []byte) map[string]string {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("Failed to read archive: %v", err)
	}

	entries := make(map[string]string)
	for _, entry := range reader.File {
		file, err := entry.Open()
		if err != nil {
			t.Fatalf("Failed to open archive entry %s: %v", entry.Name, err)
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			t.Fatalf("Failed to read archive entry %s: %v", entry.Name, err)
		}
		entries[entry.Name] = string(content)
	}
	return entries
}

func TestBuildArchivePackagesSourceTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "reportFunction")
	writeSourceFile(t, root, "handler.py", "def handler(): pass")
	writeSourceFile(t, root, "lib/dates.py", "EPOCH = 0")
	writeSourceFile(t, root, "lib/dates.pyc", "compiled")
	writeSourceFile(t, root, "__pycache__/handler.cpython-311.pyc", "compiled")
	writeSourceFile(t, root, ".git/config", "[core]")
	writeSourceFile(t, root, ".DS_Store", "junk")

	archive, err := BuildArchive(root)
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}
	if err = VerifyArchive(archive, "reportFunction"); err != nil {
		t.Fatalf("Failed to verify archive: %v", err)
	}

	entries := archiveEntries(t, archive)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 archive entries, got %d: %v", len(entries), entries)
	}
	assert.Equal(t, entries["reportFunction/handler.py"], "def handler(): pass", "Wrong handler content")
	assert.Equal(t, entries["reportFunction/lib/dates.py"], "EPOCH = 0", "Wrong library content")
}

func TestBuildArchiveIsDeterministic(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fn")
	writeSourceFile(t, root, "b.py", "b")
	writeSourceFile(t, root, "a.py", "a")

	first, err := BuildArchive(root)
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}
	second, err := BuildArchive(root)
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}
	assert.Equal(t, first, second, "Same tree should package identically")
}

func TestBuildArchiveRefusesEmptyTrees(t *testing.T) {
	root := filepath.Join(t.TempDir(), "emptyFunction")
	writeSourceFile(t, root, "__pycache__/only.pyc", "compiled")

	if _, err := BuildArchive(root); err == nil {
		t.Fatalf("Should have refused to package a tree with nothing to ship")
	}
}

func TestVerifyArchiveRejections(t *testing.T) {
	root := filepath.Join(t.TempDir(), "fn")
	writeSourceFile(t, root, "handler.py", "def handler(): pass")
	archive, err := BuildArchive(root)
	if err != nil {
		t.Fatalf("Failed to build archive: %v", err)
	}

	if err = VerifyArchive(archive, "otherFunction"); err == nil {
		t.Fatalf("Should have rejected archive built from another subtree")
	}
	if err = VerifyArchive([]byte("not a zip"), "fn"); err == nil {
		t.Fatalf("Should have rejected an unreadable archive")
	}
}
