// Package service checks stored property coordinates against a geocoding provider.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/UnknownOlympus/geocheck/internal/geodesy"
	"github.com/UnknownOlympus/geocheck/internal/models"
)

// Lookup resolves an address, reporting whether the provider was actually called.
type Lookup interface {
	Geocode(ctx context.Context, address string) (*geocoding.Result, bool, error)
}

// Evaluator decides the outcome of single rows.
type Evaluator struct {
	lookup    Lookup
	tolerance float64
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration)
	log       *slog.Logger
}

// NewEvaluator creates an evaluator that flags rows whose stored coordinates are more than
// tolerance meters away from the provider's. delay is waited after every provider call.
func NewEvaluator(lookup Lookup, tolerance float64, delay time.Duration, log *slog.Logger) *Evaluator {
	return &Evaluator{
		lookup:    lookup,
		tolerance: tolerance,
		delay:     delay,
		sleep:     sleepContext,
		log:       log,
	}
}

// Evaluate runs the decision pipeline for row. Every skip and mismatch is logged with the row id.
func (e *Evaluator) Evaluate(ctx context.Context, row models.Row) Outcome {
	log := e.log.With("id", row.Tag(), "line", row.Line)

	address := strings.TrimSpace(row.Address)
	if address == "" {
		log.WarnContext(ctx, "Row skipped", "reason", "missing address (cannot geocode)")
		return skipped(ReasonMissingAddress)
	}

	stored, ok := parseCoordinates(row.RawLatitude, row.RawLongitude)
	if !ok {
		return e.invalidCoordinates(ctx, log, row, address)
	}

	result, err := e.geocode(ctx, address)
	if err != nil {
		log.WarnContext(ctx, "Row skipped", "reason", "geocode request error", "error", err)
		return skipped(ReasonGeocodeFailure)
	}

	provided, ok := result.Coordinates()
	if result.Status != geocoding.StatusOK || !ok {
		attrs := []any{"reason", "geocode failed", "status", result.Status}
		if result.ErrorMessage != nil {
			attrs = append(attrs, "error_message", *result.ErrorMessage)
		}
		log.WarnContext(ctx, "Row skipped", attrs...)
		return skipped(ReasonGeocodeFailure)
	}

	if reason := geocoding.AmbiguityReason(result); reason != "" {
		attrs := []any{"reason", reason}
		if result.FormattedAddress != nil {
			attrs = append(attrs, "formatted_address", *result.FormattedAddress)
		}
		log.WarnContext(ctx, "Row skipped", attrs...)
		return skipped(ReasonAmbiguousResult)
	}

	distance := geodesy.Distance(stored, provided)
	if distance <= e.tolerance {
		log.DebugContext(ctx, "Row matched", "distance_meters", distance)
		return matched()
	}

	log.WarnContext(ctx, "Row mismatched",
		"reason", "distance exceeds tolerance",
		"distance_meters", strconv.FormatFloat(distance, 'f', 3, 64),
		"tolerance_meters", e.tolerance,
	)

	return Outcome{
		Kind:              KindMismatched,
		Reason:            ReasonDistanceExceedsTolerance,
		ProviderLatitude:  &provided.Latitude,
		ProviderLongitude: &provided.Longitude,
		DistanceMeters:    &distance,
	}
}

// invalidCoordinates flags a row whose stored coordinates are unusable. The address is
// still looked up so that the report can carry trustworthy provider coordinates.
func (e *Evaluator) invalidCoordinates(ctx context.Context, log *slog.Logger, row models.Row, address string) Outcome {
	outcome := Outcome{Kind: KindMismatched, Reason: ReasonInvalidCoordinates}

	result, err := e.geocode(ctx, address)
	if err == nil && result.Status == geocoding.StatusOK && geocoding.AmbiguityReason(result) == "" {
		if provided, ok := result.Coordinates(); ok {
			outcome.ProviderLatitude = &provided.Latitude
			outcome.ProviderLongitude = &provided.Longitude
		}
	}

	log.WarnContext(ctx, "Row mismatched",
		"reason", "invalid/missing coordinates",
		"latitude", row.RawLatitude,
		"longitude", row.RawLongitude,
	)

	return outcome
}

// geocode looks the address up and waits the configured delay when the provider was called.
func (e *Evaluator) geocode(ctx context.Context, address string) (*geocoding.Result, error) {
	result, live, err := e.lookup.Geocode(ctx, address)
	if live && e.delay > 0 {
		e.sleep(ctx, e.delay)
	}

	return result, err
}

// parseCoordinates parses stored coordinates. Blank or unparsable values and
// out-of-range pairs are reported as not ok.
func parseCoordinates(rawLat, rawLng string) (models.Coordinates, bool) {
	lat, latOK := parseFloat(rawLat)
	lng, lngOK := parseFloat(rawLng)
	if !latOK || !lngOK || !geodesy.Valid(lat, lng) {
		return models.Coordinates{}, false
	}

	return models.Coordinates{Latitude: lat, Longitude: lng}, true
}

func parseFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
