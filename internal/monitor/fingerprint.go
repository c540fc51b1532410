package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns the hex-encoded SHA-256 digest of normalized
// content, used only for equality comparison between fetches. Content is
// trimmed and lower-cased first so case-only edits do not register as
// changes. Empty content yields the empty string sentinel.
func Fingerprint(content string) string {
	if content == "" {
		return ""
	}

	normalized := strings.ToLower(strings.TrimSpace(content))
	if normalized == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
