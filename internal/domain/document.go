package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// SourceTypeGovernmentWebsite marks documents ingested by the web monitor.
	SourceTypeGovernmentWebsite = "government_website"
	// ContentTypeWebpage marks plain-text content extracted from HTML.
	ContentTypeWebpage = "webpage"
)

// Document is the unit written to the knowledge index: one chunk of a
// page's extracted text plus its metadata. The ID is a deterministic
// function of the URL and chunk index so re-ingestion upserts rather
// than duplicates.
type Document struct {
	ID          string
	URL         string
	Content     string
	ChunkIndex  int
	ChunkCount  int
	SourceType  string
	ContentType string
	ChangeType  ChangeType
	LastUpdated time.Time
	Embedding   []float32
}

// SearchResult is one ranked hit from the knowledge index. Score is a
// normalized similarity in [0,1], higher is closer.
type SearchResult struct {
	ID          string
	URL         string
	Content     string
	Score       float64
	LastUpdated time.Time
}

// PageDocumentID returns the stable base identifier for all documents
// derived from a URL.
func PageDocumentID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "webpage_" + hex.EncodeToString(sum[:])
}

// ChunkDocumentID returns the stable identifier for one chunk of a URL's
// content.
func ChunkDocumentID(url string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", PageDocumentID(url), chunkIndex)
}
