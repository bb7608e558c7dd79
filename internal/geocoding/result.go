package geocoding

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/geocheck/internal/geodesy"
	"github.com/UnknownOlympus/geocheck/internal/models"
)

// Status is the top-level status reported by the geocoding service.
type Status string

// Statuses returned by the Google Geocoding API, plus StatusNoResults.
const (
	StatusOK             Status = "OK"
	StatusZeroResults    Status = "ZERO_RESULTS"
	StatusOverQueryLimit Status = "OVER_QUERY_LIMIT"
	StatusRequestDenied  Status = "REQUEST_DENIED"
	StatusInvalidRequest Status = "INVALID_REQUEST"
	StatusUnknownError   Status = "UNKNOWN_ERROR"
	// StatusNoResults is not sent by the API. It replaces an "OK" status that came
	// with an empty result list, so that it is never mistaken for a usable match.
	StatusNoResults Status = "NO_RESULTS"
)

// LocationTypeRooftop is the most precise location type the geocoder reports.
const LocationTypeRooftop = "ROOFTOP"

// Transient reports whether the status describes the request or the account rather
// than the address itself.
func (s Status) Transient() bool {
	switch s {
	case StatusOverQueryLimit, StatusRequestDenied, StatusUnknownError:
		return true
	default:
		return false
	}
}

// Result is the normalized outcome of a single address lookup.
// Optional fields are nil when the provider did not send them or sent something unusable.
type Result struct {
	Status           Status
	FormattedAddress *string
	Latitude         *float64
	Longitude        *float64
	ResultCount      int
	PartialMatch     bool
	LocationType     *string
	ErrorMessage     *string

	// Raw is the undecoded provider payload. It is empty for cached results.
	Raw json.RawMessage
}

// Coordinates returns the provider coordinates and whether they are present and in range.
func (r *Result) Coordinates() (models.Coordinates, bool) {
	if r == nil || r.Latitude == nil || r.Longitude == nil {
		return models.Coordinates{}, false
	}
	if !geodesy.Valid(*r.Latitude, *r.Longitude) {
		return models.Coordinates{}, false
	}

	return models.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}, true
}

// AmbiguityReason explains why a result cannot be used as ground truth.
// It returns an empty string only for an OK status with exactly one result that is
// not a partial match and has rooftop precision. Conditions are checked in that order.
func AmbiguityReason(r *Result) string {
	if r.Status != StatusOK {
		return fmt.Sprintf("not ok: status=%s", r.Status)
	}

	if r.ResultCount != 1 {
		return fmt.Sprintf("ambiguous: result_count=%d", r.ResultCount)
	}

	if r.PartialMatch {
		return "ambiguous: partial_match=true"
	}

	locationType := "UNKNOWN"
	if r.LocationType != nil && *r.LocationType != "" {
		locationType = *r.LocationType
	}
	if !strings.EqualFold(locationType, LocationTypeRooftop) {
		return "ambiguous: location_type=" + locationType
	}

	return ""
}
