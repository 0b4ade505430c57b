package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadFailure records one document that could not be loaded. The rest of
// the corpus is still scanned; failures are reported per document.
type LoadFailure struct {
	Path string
	Err  error
}

// Load walks root and loads every supported document whose extension is in
// exts (or every supported one when exts is empty). Paths are returned in
// sorted order so a run is deterministic. An unreadable or unparseable
// document fails only itself and is returned as a LoadFailure; an
// unreadable corpus root is fatal.
func Load(root string, exts map[string]bool) ([]*Document, []LoadFailure, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		doc, err := loadFile(filepath.Dir(root), root)
		if err != nil {
			return nil, nil, err
		}
		return []*Document{doc}, nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSupportedExtension(path) {
			return nil
		}
		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk corpus: %w", err)
	}
	sort.Strings(paths)

	var failed []LoadFailure
	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		doc, err := loadFile(root, path)
		if err != nil {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			failed = append(failed, LoadFailure{Path: filepath.ToSlash(rel), Err: err})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, failed, nil
}

func loadFile(root, path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	loader, err := ForFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lines, editable, trailing, err := loader.Load(strings.NewReader(string(data)), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return &Document{
		Path:            filepath.ToSlash(rel),
		AbsPath:         path,
		Lines:           lines,
		Hash:            ContentHashHex(data),
		Editable:        editable,
		trailingNewline: trailing,
	}, nil
}
