package service

import (
	"strconv"

	"github.com/UnknownOlympus/geocheck/internal/models"
	"github.com/UnknownOlympus/geocheck/internal/table"
)

// Kind is the top-level decision for a row.
type Kind string

const (
	KindMatched    Kind = "matched"
	KindMismatched Kind = "mismatched"
	KindSkipped    Kind = "skipped"
)

// Reason refines a mismatch or a skip.
type Reason string

const (
	ReasonNone                     Reason = ""
	ReasonInvalidCoordinates       Reason = "invalid_coordinates"
	ReasonDistanceExceedsTolerance Reason = "distance_exceeds_tolerance"
	ReasonMissingAddress           Reason = "missing_address"
	ReasonAmbiguousResult          Reason = "ambiguous_result"
	ReasonGeocodeFailure           Reason = "geocode_failure"
)

// Outcome is the result of evaluating one row.
// Provider coordinates are set on mismatches when the provider gave usable ones;
// DistanceMeters is set only for distance mismatches.
type Outcome struct {
	Kind              Kind
	Reason            Reason
	ProviderLatitude  *float64
	ProviderLongitude *float64
	DistanceMeters    *float64
}

func matched() Outcome { return Outcome{Kind: KindMatched} }

func skipped(reason Reason) Outcome { return Outcome{Kind: KindSkipped, Reason: reason} }

// Mismatch renders the report record for a mismatched row.
func (o Outcome) Mismatch(row models.Row) table.MismatchRecord {
	record := table.MismatchRecord{Values: row.Values}
	if o.ProviderLatitude != nil {
		record.GoogleLatitude = strconv.FormatFloat(*o.ProviderLatitude, 'f', -1, 64)
	}
	if o.ProviderLongitude != nil {
		record.GoogleLongitude = strconv.FormatFloat(*o.ProviderLongitude, 'f', -1, 64)
	}
	if o.DistanceMeters != nil {
		record.DistanceMeters = strconv.FormatFloat(*o.DistanceMeters, 'f', 3, 64)
	}

	return record
}
