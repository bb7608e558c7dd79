// Package table reads property rows from CSV and writes the mismatch report.
package table

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoHeader is returned when the input has no header row.
	ErrNoHeader = errors.New("input CSV has no header row")
	// ErrMissingColumn is returned when a required column cannot be found in the header.
	ErrMissingColumn = errors.New("missing required column")
)

// Columns names the four logical columns a row needs.
type Columns struct {
	ID        string
	Address   string
	Latitude  string
	Longitude string
}

// DefaultColumns are the column names used when none are configured.
var DefaultColumns = Columns{
	ID:        "id",
	Address:   "address",
	Latitude:  "latitude",
	Longitude: "longitude",
}

// ResolveColumn finds requested in header, first by exact name and then ignoring case.
// label names the logical column in the error message.
func ResolveColumn(header []string, requested, label string) (string, error) {
	for _, name := range header {
		if name == requested {
			return name, nil
		}
	}

	// On duplicate case-insensitive matches the last one wins.
	resolved, found := "", false
	for _, name := range header {
		if strings.EqualFold(name, requested) {
			resolved, found = name, true
		}
	}
	if found {
		return resolved, nil
	}

	return "", fmt.Errorf("%w for %s: '%s'. Available columns: %s",
		ErrMissingColumn, label, requested, strings.Join(header, ", "))
}

// Resolve maps every requested column onto a header name.
func Resolve(header []string, requested Columns) (Columns, error) {
	var (
		resolved Columns
		err      error
	)

	if resolved.ID, err = ResolveColumn(header, requested.ID, "id"); err != nil {
		return Columns{}, err
	}
	if resolved.Address, err = ResolveColumn(header, requested.Address, "address"); err != nil {
		return Columns{}, err
	}
	if resolved.Latitude, err = ResolveColumn(header, requested.Latitude, "latitude"); err != nil {
		return Columns{}, err
	}
	if resolved.Longitude, err = ResolveColumn(header, requested.Longitude, "longitude"); err != nil {
		return Columns{}, err
	}

	return resolved, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}

	return -1
}
