package util

import (
	"errors"
	"path"
	"strings"
)

// CleanStorageKey normalizes an object key to forward slashes and rejects
// absolute keys and parent-directory traversal.
func CleanStorageKey(key string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if s == "" {
		return "", errors.New("invalid storage key")
	}
	if strings.HasPrefix(s, "/") {
		return "", errors.New("invalid storage key")
	}
	clean := path.Clean(s)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.New("invalid storage key")
	}
	return clean, nil
}
