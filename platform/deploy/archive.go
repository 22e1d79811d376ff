package deploy

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Names never shipped in a function archive
var skippedNames = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"node_modules": true,
	".DS_Store":    true,
}

// Suffixes never shipped in a function archive
var skippedSuffixes = []string{".pyc"}

func skippedFile(name string) bool {
	if skippedNames[name] {
		return true
	}
	for _, suffix := range skippedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

/*
BuildArchive packages one function's source tree as a zip archive. Entries
are stored under the tree's base name with forward slash paths, in sorted
order so the same tree always packages identically. VCS and cache junk is
left out; a tree with nothing left to ship is an error
*/
func BuildArchive(sourceDir string) ([]byte, error) {
	root := filepath.Clean(sourceDir)
	subtree := filepath.Base(root)

	files := make([]string, 0)
	err := filepath.WalkDir(root, func(walkPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if walkPath != root && skippedNames[entry.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if skippedFile(entry.Name()) {
			return nil
		}
		files = append(files, walkPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to walk source tree %s: %w", sourceDir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("Failed to package %s: nothing to archive", sourceDir)
	}
	sort.Strings(files)

	buffer := bytes.NewBuffer(nil)
	archive := zip.NewWriter(buffer)
	for _, file := range files {
		relative, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("Failed to resolve %s within %s: %w", file, root, err)
		}

		writer, err := archive.Create(path.Join(subtree, filepath.ToSlash(relative)))
		if err != nil {
			return nil, fmt.Errorf("Failed to create archive entry for %s: %w", file, err)
		}
		source, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("Failed to open %s: %w", file, err)
		}
		_, err = io.Copy(writer, source)
		source.Close()
		if err != nil {
			return nil, fmt.Errorf("Failed to archive %s: %w", file, err)
		}
	}
	if err = archive.Close(); err != nil {
		return nil, fmt.Errorf("Failed to finish archive for %s: %w", sourceDir, err)
	}
	return buffer.Bytes(), nil
}

/*
VerifyArchive checks a packaged archive before it ships: it must be readable,
non-empty, and hold only entries under the designated subtree
*/
func VerifyArchive(archive []byte, subtree string) error {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return fmt.Errorf("Failed to read archive: %w", err)
	}
	if len(reader.File) == 0 {
		return fmt.Errorf("Failed to verify archive: no entries")
	}

	prefix := subtree + "/"
	for _, entry := range reader.File {
		if !strings.HasPrefix(entry.Name, prefix) {
			return fmt.Errorf("Failed to verify archive: entry %s is outside %s", entry.Name, subtree)
		}
	}
	return nil
}
