package corpus

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Loader turns raw document bytes into scan-ready lines.
type Loader interface {
	// Load returns the document's lines, whether the format is editable,
	// and whether the source ended with a newline (editable formats only).
	Load(r io.Reader, filename string) (lines []string, editable bool, trailing bool, err error)
}

// SupportedExtensions lists the file extensions the corpus can scan.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".yml":      true,
	".yaml":     true,
	".toml":     true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the loader for a filename.
func ForFile(filename string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown", ".txt", ".yml", ".yaml", ".toml":
		return &TextLoader{}, nil
	case ".html", ".htm":
		return &HTMLLoader{}, nil
	case ".pdf":
		return &PDFLoader{}, nil
	case ".docx":
		return &DOCXLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// TextLoader handles plain-text formats verbatim. These are the editable
// formats: lines round-trip byte-for-byte.
type TextLoader struct{}

func (l *TextLoader) Load(r io.Reader, _ string) ([]string, bool, bool, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, false, false, err
	}
	lines, trailing := splitLines(data)
	return lines, true, trailing, nil
}
