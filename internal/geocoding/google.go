package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// GoogleBaseURL is the forward geocoding endpoint of the Google Geocoding API.
const GoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// UserAgent is sent with every geocoding request.
const UserAgent = "geocheck/1.0 (https://github.com/UnknownOlympus/geocheck)"

// ErrInvalidPayload is returned when the geocoder answers with something that is not a JSON object.
var ErrInvalidPayload = errors.New("geocoding API returned an invalid payload")

// GoogleProvider geocodes addresses with plain HTTP calls to the Google Geocoding API
// and keeps the full status information of every response.
type GoogleProvider struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Geocoding API
	apiKey  string       // API key with geocoding access
	log     *slog.Logger // Logger for logging operations
}

// NewGoogleProvider creates a Google provider that sends requests through client.
func NewGoogleProvider(client HTTPClient, apiKey string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{
		client:  client,
		baseURL: GoogleBaseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// Geocode looks the address up and normalizes the answer. Any status sent by the API,
// including error statuses, is returned as a Result. Transport failures, non-2xx HTTP
// responses and payloads that are not JSON objects are returned as errors.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	reqURL, err := url.Parse(gp.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("address", address)
	query.Set("key", gp.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := gp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		gp.log.ErrorContext(ctx, "Google Maps API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("google maps API returned status %d: %s", resp.StatusCode, string(body))
	}

	gp.log.DebugContext(ctx, "Google Maps raw response", "body", string(body))

	result, err := normalizeResponse(body)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// normalizeResponse maps a Geocoding API payload onto Result. It is the only place
// that deals with the loosely typed response; missing or malformed fields become nil.
func normalizeResponse(body []byte) (*Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if raw == nil {
		return nil, ErrInvalidPayload
	}

	results, _ := raw["results"].([]any)
	result := &Result{
		Status:       Status(asText(raw["status"])),
		ErrorMessage: asString(raw["error_message"]),
		ResultCount:  len(results),
		Raw:          json.RawMessage(body),
	}

	if result.Status != StatusOK {
		return result, nil
	}

	if len(results) == 0 {
		result.Status = StatusNoResults
		return result, nil
	}

	first, _ := results[0].(map[string]any)
	result.FormattedAddress = asString(first["formatted_address"])
	result.PartialMatch, _ = first["partial_match"].(bool)

	if geometry, ok := first["geometry"].(map[string]any); ok {
		result.LocationType = asString(geometry["location_type"])
		if location, ok := geometry["location"].(map[string]any); ok {
			result.Latitude = asFloat(location["lat"])
			result.Longitude = asFloat(location["lng"])
		}
	}

	return result, nil
}

func asText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}

	return &s
}

func asFloat(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
