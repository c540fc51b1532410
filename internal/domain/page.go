package domain

import (
	"net/url"
	"strings"
	"time"
)

// PreviewLength is the maximum number of characters of extracted content
// stored on a PageRecord for operator inspection.
const PreviewLength = 500

// PageRecord is the stored monitoring state for one watched URL.
// There is at most one record per URL; ContentFingerprint always reflects
// the most recent successfully fetched content.
type PageRecord struct {
	ID                 string
	URL                string
	ContentFingerprint string
	ContentPreview     string
	LastChecked        time.Time
	LastModified       time.Time
	ErrorCount         int
	IsActive           bool
	CreatedAt          time.Time
}

// Preview truncates extracted content to the stored preview length.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}

// ValidateURL checks that a monitored URL is absolute http(s).
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewDomainErrorWithCause(ErrCodeValidation, "malformed url", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
