package geocoding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"googlemaps.github.io/maps"
)

// GoogleAPIClient is the part of the Google Maps SDK client used by SDKProvider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// SDKProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It geocodes through the official SDK.
//
// The SDK folds every non-OK status into an error ("maps: STATUS - message") and returns
// ZERO_RESULTS as an empty list, so statuses are recovered from the error text and an
// empty list is reported as StatusNoResults.
type SDKProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// NewSDKProvider initializes a new SDKProvider with the given client and logger.
func NewSDKProvider(client GoogleAPIClient, log *slog.Logger) *SDKProvider {
	return &SDKProvider{client: client, log: log}
}

// Geocode takes a context and an address string as input and returns the normalized
// first result of the Google Maps SDK geocoding call.
func (sp *SDKProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	sp.log.DebugContext(ctx, "Geocoding using Google Maps SDK", "address", address)

	req := maps.GeocodingRequest{Address: address}
	geocodeResponse, err := sp.client.Geocode(ctx, &req)
	if err != nil {
		if status, message, ok := sdkStatus(err); ok {
			result := &Result{Status: status}
			if message != "" {
				result.ErrorMessage = &message
			}
			return result, nil
		}
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return &Result{Status: StatusNoResults}, nil
	}

	first := geocodeResponse[0]
	lat, lng := first.Geometry.Location.Lat, first.Geometry.Location.Lng

	return &Result{
		Status:           StatusOK,
		FormattedAddress: nonEmpty(first.FormattedAddress),
		Latitude:         &lat,
		Longitude:        &lng,
		ResultCount:      len(geocodeResponse),
		PartialMatch:     first.PartialMatch,
		LocationType:     nonEmpty(first.Geometry.LocationType),
	}, nil
}

// sdkStatus extracts an API status from an SDK error of the form "maps: STATUS - message".
func sdkStatus(err error) (Status, string, bool) {
	rest, found := strings.CutPrefix(err.Error(), "maps: ")
	if !found {
		return "", "", false
	}

	code, message, _ := strings.Cut(rest, " - ")
	status := Status(strings.TrimSpace(code))
	switch status {
	case StatusZeroResults, StatusOverQueryLimit, StatusRequestDenied, StatusInvalidRequest, StatusUnknownError:
		return status, strings.TrimSpace(message), true
	default:
		return "", "", false
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
