package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache stores downloaded archives by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey derives a filesystem-safe key from an archive URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "coursegrid-v1-" + hex.EncodeToString(hash[:])
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(dir string) string {
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return filepath.Join(home, strings.TrimPrefix(dir, "~"))
}
