package table_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/UnknownOlympus/geocheck/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestOutputHeader(t *testing.T) {
	t.Run("appends report columns", func(t *testing.T) {
		assert.Equal(t,
			[]string{"id", "address", "google_latitude", "google_longitude", "distance_meters"},
			table.OutputHeader([]string{"id", "address"}),
		)
	})

	t.Run("keeps existing report columns in place", func(t *testing.T) {
		assert.Equal(t,
			[]string{"distance_meters", "id", "google_latitude", "google_longitude"},
			table.OutputHeader([]string{"distance_meters", "id"}),
		)
	})

	t.Run("does not alias the input", func(t *testing.T) {
		input := make([]string, 2, 8)
		copy(input, []string{"id", "address"})
		_ = table.OutputHeader(input)
		assert.Equal(t, []string{"id", "address"}, input)
	})
}

func TestWriteMismatches(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, table.WriteMismatches(&buf, []string{"id"}, nil))
		assert.Equal(t, "id,google_latitude,google_longitude,distance_meters\n", buf.String())
	})

	t.Run("rows", func(t *testing.T) {
		var buf bytes.Buffer
		err := table.WriteMismatches(&buf, []string{"id", "address", "distance_meters"}, []table.MismatchRecord{
			{
				Values:          []string{"1", "1 Main St, Springfield", "stale"},
				GoogleLatitude:  "40.0001",
				GoogleLongitude: "-74.0001",
				DistanceMeters:  "14.003",
			},
			{Values: []string{"2", "2 Main St", ""}},
		})
		require.NoError(t, err)

		assert.Equal(t,
			"id,address,distance_meters,google_latitude,google_longitude\n"+
				"1,\"1 Main St, Springfield\",14.003,40.0001,-74.0001\n"+
				"2,2 Main St,,,\n",
			buf.String(),
		)
	})

	t.Run("write failure", func(t *testing.T) {
		err := table.WriteMismatches(failingWriter{}, []string{"id"}, []table.MismatchRecord{{Values: []string{"1"}}})
		require.Error(t, err)
	})
}
