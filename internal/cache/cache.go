// Package cache keeps geocoding results between runs so that unchanged addresses
// are not sent to the provider again.
package cache

import (
	"context"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/geocheck/internal/geocoding"
)

// Version is the cache format version. Persisted caches with another version are ignored.
const Version = 1

// Entry is the persisted form of a geocoding.Result. The raw provider payload is not kept.
type Entry struct {
	Status           string   `json:"status"`
	FormattedAddress *string  `json:"formatted_address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ResultCount      int      `json:"result_count"`
	PartialMatch     bool     `json:"partial_match"`
	LocationType     *string  `json:"location_type"`
	ErrorMessage     *string  `json:"error_message"`
}

// NewEntry projects a result onto its persisted form.
func NewEntry(r *geocoding.Result) Entry {
	return Entry{
		Status:           string(r.Status),
		FormattedAddress: r.FormattedAddress,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		ResultCount:      r.ResultCount,
		PartialMatch:     r.PartialMatch,
		LocationType:     r.LocationType,
		ErrorMessage:     r.ErrorMessage,
	}
}

// Result rebuilds the geocoding result stored in the entry.
func (e Entry) Result() *geocoding.Result {
	return &geocoding.Result{
		Status:           geocoding.Status(e.Status),
		FormattedAddress: e.FormattedAddress,
		Latitude:         e.Latitude,
		Longitude:        e.Longitude,
		ResultCount:      e.ResultCount,
		PartialMatch:     e.PartialMatch,
		LocationType:     e.LocationType,
		ErrorMessage:     e.ErrorMessage,
	}
}

// Cache maps normalized addresses to geocoding results. It is not safe for concurrent use.
type Cache struct {
	entries map[string]Entry
	dirty   map[string]struct{}
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		dirty:   make(map[string]struct{}),
	}
}

// NormalizeAddress collapses runs of whitespace into single spaces and trims the ends.
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), " ")
}

// Get returns the cached result for address.
func (c *Cache) Get(address string) (*geocoding.Result, bool) {
	entry, ok := c.entries[NormalizeAddress(address)]
	if !ok {
		return nil, false
	}

	return entry.Result(), true
}

// Put stores the result for address, replacing any previous one.
func (c *Cache) Put(address string, r *geocoding.Result) {
	key := NormalizeAddress(address)
	c.entries[key] = NewEntry(r)
	c.dirty[key] = struct{}{}
}

// Restore adds an entry read from a store without marking it as changed.
func (c *Cache) Restore(key string, entry Entry) {
	c.entries[key] = entry
}

// Len returns the number of cached addresses.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns every cached entry by normalized address.
func (c *Cache) Entries() map[string]Entry {
	out := make(map[string]Entry, len(c.entries))
	for key, entry := range c.entries {
		out[key] = entry
	}

	return out
}

// Changed returns the entries stored with Put since the cache was created or loaded.
func (c *Cache) Changed() map[string]Entry {
	out := make(map[string]Entry, len(c.dirty))
	for key := range c.dirty {
		out[key] = c.entries[key]
	}

	return out
}

// Store persists a cache between runs.
type Store interface {
	Load(ctx context.Context) (*Cache, error)
	Save(ctx context.Context, c *Cache) error
}

// Open loads the cache from store. A store that cannot be read yields an empty cache.
func Open(ctx context.Context, store Store, log *slog.Logger) *Cache {
	c, err := store.Load(ctx)
	if err != nil || c == nil {
		log.WarnContext(ctx, "Geocode cache unusable, starting with an empty cache", "error", err)
		return New()
	}

	log.DebugContext(ctx, "Geocode cache loaded", "entries", c.Len())

	return c
}

// Flush saves the cache to store. Failures are logged and otherwise ignored.
func Flush(ctx context.Context, store Store, c *Cache, log *slog.Logger) {
	if err := store.Save(ctx, c); err != nil {
		log.WarnContext(ctx, "Failed to save geocode cache", "error", err)
		return
	}

	log.DebugContext(ctx, "Geocode cache saved", "entries", c.Len(), "changed", len(c.dirty))
}
