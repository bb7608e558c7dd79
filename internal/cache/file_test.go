package cache_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/geocheck/internal/cache"
	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Load(t *testing.T) {
	defer filet.CleanUp(t)
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		dir := filet.TmpDir(t, "")
		c, err := cache.NewFileStore(filepath.Join(dir, "absent.json")).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("valid file", func(t *testing.T) {
		dir := filet.TmpDir(t, "")
		path := filepath.Join(dir, "cache.json")
		filet.File(t, path, `{
  "version": 1,
  "entries": {
    "1 Main St": {"status": "OK", "formatted_address": "1 Main St", "latitude": 40.0001,
      "longitude": -74.0001, "result_count": 1, "partial_match": false,
      "location_type": "ROOFTOP", "error_message": null}
  }
}`)

		c, err := cache.NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		result, ok := c.Get("1 Main St")
		require.True(t, ok)
		assert.Equal(t, geocoding.StatusOK, result.Status)
		assert.Equal(t, "ROOFTOP", *result.LocationType)
		assert.Nil(t, result.ErrorMessage)
		assert.Empty(t, c.Changed())
	})

	t.Run("malformed entries are dropped", func(t *testing.T) {
		dir := filet.TmpDir(t, "")
		path := filepath.Join(dir, "cache.json")
		filet.File(t, path, `{"version": 1, "entries": {"good": {"status": "OK"}, "bad": "nope", "worse": 7}}`)

		c, err := cache.NewFileStore(path).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, c.Len())
		_, ok := c.Get("bad")
		assert.False(t, ok)
	})

	failures := []struct {
		name    string
		content string
	}{
		{"wrong version", `{"version": 2, "entries": {}}`},
		{"missing version", `{"entries": {}}`},
		{"missing entries", `{"version": 1}`},
		{"entries not an object", `{"version": 1, "entries": []}`},
		{"not json", `version=1`},
		{"not an object", `[1, 2, 3]`},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			dir := filet.TmpDir(t, "")
			path := filepath.Join(dir, "cache.json")
			filet.File(t, path, tt.content)

			c, err := cache.NewFileStore(path).Load(ctx)
			require.Error(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestFileStore_SaveRoundTrip(t *testing.T) {
	defer filet.CleanUp(t)
	ctx := context.Background()
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "cache.json")
	store := cache.NewFileStore(path)

	c := cache.New()
	c.Put(" 1 Main  St ", rooftop())
	c.Put("Nowhere", &geocoding.Result{Status: geocoding.StatusZeroResults})
	require.NoError(t, store.Save(ctx, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.InDelta(t, 1, doc["version"], 0)
	entries, ok := doc["entries"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, entries, "1 Main St")
	zero, ok := entries["Nowhere"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, zero, "latitude")
	assert.Nil(t, zero["latitude"])

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Entries(), loaded.Entries())
}

func TestFileStore_SaveFailure(t *testing.T) {
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "missing", "cache.json"))
	err := store.Save(context.Background(), cache.New())
	require.Error(t, err)
}
