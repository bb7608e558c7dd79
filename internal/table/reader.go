package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/UnknownOlympus/geocheck/internal/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader yields property rows from a CSV document with a header row.
// A leading byte order mark is dropped. Short lines are padded with empty values and
// values beyond the header are discarded.
type Reader struct {
	csv      *csv.Reader
	header   []string
	columns  Columns
	position [4]int
	count    int
}

// NewReader reads the header from r and resolves the requested columns against it.
func NewReader(r io.Reader, requested Columns) (*Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := Resolve(header, requested)
	if err != nil {
		return nil, err
	}

	return &Reader{
		csv:     reader,
		header:  header,
		columns: columns,
		position: [4]int{
			indexOf(header, columns.ID),
			indexOf(header, columns.Address),
			indexOf(header, columns.Latitude),
			indexOf(header, columns.Longitude),
		},
	}, nil
}

// Header returns the input column names.
func (r *Reader) Header() []string {
	return r.header
}

// Columns returns the header names the logical columns resolved to.
func (r *Reader) Columns() Columns {
	return r.columns
}

// Next returns the next row, or io.EOF when the input is exhausted.
func (r *Reader) Next() (models.Row, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.Row{}, io.EOF
		}
		return models.Row{}, fmt.Errorf("failed to read CSV row: %w", err)
	}

	r.count++

	values := make([]string, len(r.header))
	copy(values, record)

	return models.Row{
		Line:         r.count,
		ID:           values[r.position[0]],
		Address:      values[r.position[1]],
		RawLatitude:  values[r.position[2]],
		RawLongitude: values[r.position[3]],
		Values:       values,
	}, nil
}
