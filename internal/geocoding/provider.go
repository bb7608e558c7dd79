package geocoding

import (
	"context"
	"net/http"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input and returns the
// normalized result. Statuses reported by the service are part of the Result; an error
// means the lookup itself failed (transport, timeout, unreadable payload).
type Provider interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
