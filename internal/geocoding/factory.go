package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle talks to the Google Geocoding API over plain HTTP.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeGoogleSDK talks to the Google Geocoding API through the Google Maps SDK.
	ProviderTypeGoogleSDK ProviderType = "google-sdk"
)

// DefaultTimeout bounds a single geocoding request.
const DefaultTimeout = 20 * time.Second

// ErrMissingAPIKey is returned when a provider is requested without credentials.
var ErrMissingAPIKey = errors.New("API key is required for Google provider")

// ProviderConfig holds configuration for creating a geocoding provider.
type ProviderConfig struct {
	Type     ProviderType  // Type of provider to create
	APIKey   string        // API key for the Geocoding API
	Timeout  time.Duration // Per-request timeout, DefaultTimeout when zero
	CABundle string        // Optional extra PEM bundle to trust
	Logger   *slog.Logger  // Logger for the provider
}

// NewProvider creates a geocoding provider based on the provided configuration.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// Supported provider types:
// - "google": Google Geocoding API over HTTP (default)
// - "google-sdk": Google Geocoding API through googlemaps.github.io/maps
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeGoogleSDK:
		return newSDKProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates the HTTP Google provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := NewHTTPClient(timeoutOrDefault(config.Timeout), config.CABundle)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return NewGoogleProvider(client, config.APIKey, config.Logger), nil
}

// newSDKProvider creates a Google Maps SDK provider.
func newSDKProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	httpClient, err := NewHTTPClient(timeoutOrDefault(config.Timeout), config.CABundle)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client, err := maps.NewClient(
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewSDKProvider(client, config.Logger), nil
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}

	return timeout
}
