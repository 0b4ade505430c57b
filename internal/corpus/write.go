package corpus

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteConflictError means a document changed on disk between scan and
// apply. The document's edits are rejected whole; nothing was written.
type WriteConflictError struct {
	Path string
}

func (e *WriteConflictError) Error() string {
	return fmt.Sprintf("%s: document changed since scan", e.Path)
}

// WriteBack replaces a document's content on disk, all-or-nothing. The
// on-disk bytes are re-hashed first: a mismatch with the scan-time hash is
// a WriteConflictError and nothing is touched. The new content goes to a
// temp file in the same directory and is renamed into place, so a failure
// on any path leaves the original file intact.
func WriteBack(doc *Document, lines []string) error {
	if !doc.Editable {
		return fmt.Errorf("%s: document is not editable", doc.Path)
	}

	current, err := os.ReadFile(doc.AbsPath)
	if err != nil {
		return fmt.Errorf("reread %s: %w", doc.Path, err)
	}
	if ContentHashHex(current) != doc.Hash {
		return &WriteConflictError{Path: doc.Path}
	}

	info, err := os.Stat(doc.AbsPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", doc.Path, err)
	}

	dir := filepath.Dir(doc.AbsPath)
	tmp, err := os.CreateTemp(dir, ".rebrand-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(doc.Render(lines)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", doc.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", doc.Path, err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", doc.Path, err)
	}
	if err := os.Rename(tmpPath, doc.AbsPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place %s: %w", doc.Path, err)
	}
	return nil
}
