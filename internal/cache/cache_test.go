package cache_test

import (
	"testing"

	"github.com/UnknownOlympus/geocheck/internal/cache"
	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func rooftop() *geocoding.Result {
	return &geocoding.Result{
		Status:           geocoding.StatusOK,
		FormattedAddress: ptr("1 Main St, Springfield"),
		Latitude:         ptr(40.0001),
		Longitude:        ptr(-74.0001),
		ResultCount:      1,
		LocationType:     ptr(geocoding.LocationTypeRooftop),
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "1 Main St", "1 Main St"},
		{"surrounding whitespace", "  1 Main St \t", "1 Main St"},
		{"inner runs", "1   Main\t\tSt", "1 Main St"},
		{"newlines", "1 Main St\n Springfield", "1 Main St Springfield"},
		{"blank", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cache.NormalizeAddress(tt.in))
		})
	}
}

func TestCache(t *testing.T) {
	t.Run("miss on empty cache", func(t *testing.T) {
		c := cache.New()
		result, ok := c.Get("1 Main St")
		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("put then get whitespace variant", func(t *testing.T) {
		c := cache.New()
		c.Put("1 Main St", rooftop())

		result, ok := c.Get("  1  Main   St ")
		require.True(t, ok)
		assert.Equal(t, geocoding.StatusOK, result.Status)
		assert.InDelta(t, 40.0001, *result.Latitude, 1e-9)
		assert.Equal(t, "1 Main St, Springfield", *result.FormattedAddress)
		assert.Empty(t, result.Raw)
	})

	t.Run("put overwrites", func(t *testing.T) {
		c := cache.New()
		c.Put("1 Main St", rooftop())
		c.Put("1 Main St", &geocoding.Result{Status: geocoding.StatusZeroResults})

		result, ok := c.Get("1 Main St")
		require.True(t, ok)
		assert.Equal(t, geocoding.StatusZeroResults, result.Status)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("restored entries are not changed", func(t *testing.T) {
		c := cache.New()
		c.Restore("old", cache.Entry{Status: "OK", ResultCount: 1})
		c.Put("new", rooftop())

		assert.Len(t, c.Entries(), 2)
		changed := c.Changed()
		assert.Len(t, changed, 1)
		assert.Contains(t, changed, "new")
	})
}
