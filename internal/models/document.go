package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MediaKind identifies the format of an uploaded document
type MediaKind string

const (
	KindPDF      MediaKind = "pdf"
	KindDOC      MediaKind = "doc"  // Word 97-2003 binary
	KindDOCX     MediaKind = "docx" // Office Open XML
	KindMarkdown MediaKind = "md"
	KindText     MediaKind = "txt"
)

// IsWordProcessor reports whether documents of this kind are re-flowed into pages
func (k MediaKind) IsWordProcessor() bool {
	switch k {
	case KindDOC, KindDOCX, KindMarkdown, KindText:
		return true
	}
	return false
}

// ParseMediaKind maps a kind name or file extension (with or without the dot) to a MediaKind
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "pdf":
		return KindPDF, nil
	case "doc":
		return KindDOC, nil
	case "docx":
		return KindDOCX, nil
	case "md", "markdown":
		return KindMarkdown, nil
	case "txt", "text":
		return KindText, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// KindFromFilename derives the media kind from a filename extension
func KindFromFilename(filename string) (MediaKind, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filename)
	}
	return ParseMediaKind(ext)
}

// SourceDocument is an uploaded document as received. It is never modified.
type SourceDocument struct {
	Filename string    `json:"filename"`
	Kind     MediaKind `json:"kind"`
	Data     []byte    `json:"-"`
}

// NewSourceDocument builds a SourceDocument, deriving the kind from the filename
func NewSourceDocument(filename string, data []byte) (SourceDocument, error) {
	kind, err := KindFromFilename(filename)
	if err != nil {
		return SourceDocument{}, err
	}
	return SourceDocument{Filename: filename, Kind: kind, Data: data}, nil
}

// BaseName returns the filename without directory and extension
func (d SourceDocument) BaseName() string {
	base := filepath.Base(d.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// NormalizedDocument is the PDF produced by the normalizer.
// Layout is only populated when the text was re-flowed; it is in TopLeft space.
type NormalizedDocument struct {
	Data     []byte     `json:"-"`
	Reflowed bool       `json:"reflowed"`
	Layout   []Fragment `json:"layout,omitempty"`
}

// PageSize is a page's MediaBox extent in points
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DocumentInfo describes the page structure of a PDF
type DocumentInfo struct {
	PageCount   int        `json:"page_count"`
	Pages       []PageSize `json:"pages"`
	FileSize    int64      `json:"file_size"`
	IsEncrypted bool       `json:"is_encrypted"`
}
