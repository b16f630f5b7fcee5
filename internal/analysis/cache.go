package analysis

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"archatlas/internal/domain"
	"archatlas/internal/logging"
)

// cacheVersion invalidates stored reports when the analysis semantics
// change. Bump on any scoring or rule behavior change.
const cacheVersion = "2"

// DefaultCacheTTL is how long a cached report stays valid.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Fingerprint derives a stable key from the graph's structure: the sorted
// component type multiset, the sorted zone set and the node/edge counts.
// Label or metadata edits that do not change structure keep the same key.
func Fingerprint(g domain.Graph) string {
	types := make([]string, 0, len(g.Components))
	zoneSet := make(map[string]bool)
	for _, c := range g.Components {
		types = append(types, string(c.Type))
		if c.Zone != "" {
			zoneSet[strings.ToLower(c.Zone)] = true
		}
	}
	sort.Strings(types)

	zones := make([]string, 0, len(zoneSet))
	for z := range zoneSet {
		zones = append(zones, z)
	}
	sort.Strings(zones)

	h := fnv.New64a()
	fmt.Fprintf(h, "v%s|%s|%s|%d|%d",
		cacheVersion, strings.Join(types, ","), strings.Join(zones, ","),
		len(g.Components), len(g.Connections))
	return fmt.Sprintf("%016x", h.Sum64())
}

type cacheEnvelope struct {
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Report    *domain.Report `json:"report"`
}

// FileCache stores one JSON file per fingerprint under a directory.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached report if it exists, matches the current version
// and has not expired.
func (c *FileCache) Get(fingerprint string) (*domain.Report, bool) {
	data, err := os.ReadFile(c.path(fingerprint))
	if err != nil {
		return nil, false
	}

	var envelope cacheEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		logging.LogWarn("discarding unreadable cache entry", map[string]any{
			"fingerprint": fingerprint,
			"error":       err.Error(),
		})
		return nil, false
	}
	if envelope.Version != cacheVersion || envelope.Report == nil {
		return nil, false
	}
	if time.Since(envelope.Timestamp) > c.ttl {
		return nil, false
	}
	return envelope.Report, true
}

// Put writes the report atomically via a temp file rename.
func (c *FileCache) Put(fingerprint string, report *domain.Report) error {
	envelope := cacheEnvelope{
		Version:   cacheVersion,
		Timestamp: time.Now().UTC(),
		Report:    report,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp := c.path(fingerprint) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := os.Rename(tmp, c.path(fingerprint)); err != nil {
		return fmt.Errorf("failed to finalize cache entry: %w", err)
	}
	return nil
}

func (c *FileCache) path(fingerprint string) string {
	return filepath.Join(c.dir, fingerprint+".json")
}
