package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Columns appended to the mismatch report when the input does not already have them.
const (
	ColumnGoogleLatitude  = "google_latitude"
	ColumnGoogleLongitude = "google_longitude"
	ColumnDistanceMeters  = "distance_meters"
)

// MismatchRecord is one row of the mismatch report. Empty strings mean "not applicable".
type MismatchRecord struct {
	Values          []string
	GoogleLatitude  string
	GoogleLongitude string
	DistanceMeters  string
}

// OutputHeader returns the input header followed by the report columns it lacks.
func OutputHeader(input []string) []string {
	header := append([]string(nil), input...)
	for _, extra := range []string{ColumnGoogleLatitude, ColumnGoogleLongitude, ColumnDistanceMeters} {
		if indexOf(header, extra) < 0 {
			header = append(header, extra)
		}
	}

	return header
}

// WriteMismatches writes the report header and records to w as CSV.
func WriteMismatches(w io.Writer, input []string, records []MismatchRecord) error {
	header := OutputHeader(input)
	latIdx := indexOf(header, ColumnGoogleLatitude)
	lngIdx := indexOf(header, ColumnGoogleLongitude)
	distIdx := indexOf(header, ColumnDistanceMeters)

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write mismatch header: %w", err)
	}

	for _, record := range records {
		line := make([]string, len(header))
		copy(line, record.Values)
		line[latIdx] = record.GoogleLatitude
		line[lngIdx] = record.GoogleLongitude
		line[distIdx] = record.DistanceMeters

		if err := writer.Write(line); err != nil {
			return fmt.Errorf("failed to write mismatch row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush mismatch report: %w", err)
	}

	return nil
}
