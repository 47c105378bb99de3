package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache stores each archive as a raw data file plus a JSON sidecar
// holding its expiry and checksum
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: ExpandHome(dir),
		ttl: ttl,
	}
}

// Dir returns the resolved cache directory
func (c *DiskCache) Dir() string {
	return c.dir
}

type diskMeta struct {
	ExpiresAt time.Time `json:"expires_at"`
	Size      int       `json:"size"`
	SHA256    string    `json:"sha256"`
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	metaBytes, err := os.ReadFile(c.metaPath(key))
	if err != nil {
		return nil, false
	}

	var meta diskMeta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		_ = c.Delete(key)
		return nil, false
	}
	if time.Now().After(meta.ExpiresAt) {
		_ = c.Delete(key)
		return nil, false
	}

	data, err := os.ReadFile(c.dataPath(key))
	if err != nil {
		return nil, false
	}
	if len(data) != meta.Size || checksum(data) != meta.SHA256 {
		_ = c.Delete(key)
		return nil, false
	}
	return data, true
}

func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(c.dataPath(key), value, 0644); err != nil {
		return fmt.Errorf("write cache data: %w", err)
	}

	meta, err := json.Marshal(diskMeta{
		ExpiresAt: time.Now().Add(ttl),
		Size:      len(value),
		SHA256:    checksum(value),
	})
	if err != nil {
		return fmt.Errorf("marshal cache meta: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), meta, 0644); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	var errs []error
	for _, path := range []string{c.metaPath(key), c.dataPath(key)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) dataPath(key string) string {
	return filepath.Join(c.dir, key+".bin")
}

func (c *DiskCache) metaPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
