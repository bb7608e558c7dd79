package geocoding_test

import (
	"testing"

	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T {
	return &v
}

func TestAmbiguityReason(t *testing.T) {
	tests := []struct {
		name   string
		result geocoding.Result
		want   string
	}{
		{
			name:   "rooftop single match is trustworthy",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 1, LocationType: ptr("ROOFTOP")},
			want:   "",
		},
		{
			name:   "location type is case insensitive",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 1, LocationType: ptr("rooftop")},
			want:   "",
		},
		{
			name:   "several results",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 2, PartialMatch: true, LocationType: ptr("ROOFTOP")},
			want:   "ambiguous: result_count=2",
		},
		{
			name:   "partial match",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 1, PartialMatch: true, LocationType: ptr("APPROXIMATE")},
			want:   "ambiguous: partial_match=true",
		},
		{
			name:   "interpolated location",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 1, LocationType: ptr("RANGE_INTERPOLATED")},
			want:   "ambiguous: location_type=RANGE_INTERPOLATED",
		},
		{
			name:   "missing location type",
			result: geocoding.Result{Status: geocoding.StatusOK, ResultCount: 1},
			want:   "ambiguous: location_type=UNKNOWN",
		},
		{
			name:   "status other than OK",
			result: geocoding.Result{Status: geocoding.StatusNoResults},
			want:   "not ok: status=NO_RESULTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, geocoding.AmbiguityReason(&tt.result))
		})
	}
}

func TestResult_Coordinates(t *testing.T) {
	t.Run("nil result", func(t *testing.T) {
		var result *geocoding.Result
		_, ok := result.Coordinates()
		assert.False(t, ok)
	})

	t.Run("missing longitude", func(t *testing.T) {
		result := geocoding.Result{Latitude: ptr(1.0)}
		_, ok := result.Coordinates()
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		result := geocoding.Result{Latitude: ptr(91.0), Longitude: ptr(0.0)}
		_, ok := result.Coordinates()
		assert.False(t, ok)
	})

	t.Run("valid", func(t *testing.T) {
		result := geocoding.Result{Latitude: ptr(45.0), Longitude: ptr(-120.0)}
		coords, ok := result.Coordinates()
		assert.True(t, ok)
		assert.InDelta(t, 45.0, coords.Latitude, 1e-9)
		assert.InDelta(t, -120.0, coords.Longitude, 1e-9)
	})
}

func TestStatus_Transient(t *testing.T) {
	assert.True(t, geocoding.StatusOverQueryLimit.Transient())
	assert.True(t, geocoding.StatusRequestDenied.Transient())
	assert.True(t, geocoding.StatusUnknownError.Transient())
	assert.False(t, geocoding.StatusOK.Transient())
	assert.False(t, geocoding.StatusZeroResults.Transient())
	assert.False(t, geocoding.StatusNoResults.Transient())
	assert.False(t, geocoding.StatusInvalidRequest.Transient())
}
