package geocoding

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// ErrEmptyBundle is returned when a CA bundle contains no usable certificate.
var ErrEmptyBundle = errors.New("CA bundle contains no certificates")

// wellKnownBundles are tried when the system certificate pool cannot be loaded.
var wellKnownBundles = []string{
	"/etc/ssl/certs/ca-certificates.crt",
	"/etc/pki/tls/certs/ca-bundle.crt",
	"/etc/ssl/ca-bundle.pem",
	"/etc/ssl/cert.pem",
	"/usr/local/etc/openssl/cert.pem",
}

// NewHTTPClient returns an HTTP client with the given timeout whose TLS configuration
// trusts the system roots plus the optional PEM bundle at caBundle.
func NewHTTPClient(timeout time.Duration, caBundle string) (*http.Client, error) {
	pool, err := certPool(caBundle)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

func certPool(caBundle string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
		for _, path := range wellKnownBundles {
			if pem, readErr := os.ReadFile(path); readErr == nil {
				pool.AppendCertsFromPEM(pem)
			}
		}
	}

	if caBundle == "" {
		return pool, nil
	}

	pem, err := os.ReadFile(caBundle)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA bundle: %w", err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBundle, caBundle)
	}

	return pool, nil
}
