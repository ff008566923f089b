package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPreviewLen is the number of hex characters kept by HashPreview.
const HashPreviewLen = 8

// SHA256Hex returns the lowercase hex SHA-256 digest of the UTF-8 bytes of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashPreview returns the first eight hex characters of SHA256Hex(s).
func HashPreview(s string) string {
	return SHA256Hex(s)[:HashPreviewLen]
}

// WordCount counts whitespace-delimited tokens. Runs of whitespace count as a
// single separator and leading/trailing whitespace is ignored.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
