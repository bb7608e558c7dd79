package models

import "strings"

// Row is a single line of the input table. The semantic fields are copied out of
// Values; Values keeps every column of the line, in header order, so the line can
// be written back unchanged.
type Row struct {
	Line         int      // Line is the 1-based data line number (header excluded).
	ID           string   // ID is the property identifier.
	Address      string   // Address is the text sent to the geocoder.
	RawLatitude  string   // RawLatitude is the stored latitude as it appears in the file.
	RawLongitude string   // RawLongitude is the stored longitude as it appears in the file.
	Values       []string // Values holds all columns of the line.
}

// Tag identifies the row in diagnostics.
func (r Row) Tag() string {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return "?"
	}

	return id
}
