package main

import (
	"fmt"
	"io"
	"time"

	"github.com/UnknownOlympus/geocheck/internal/config"
	"github.com/spf13/cobra"
)

// newRootCommand builds the geocheck command. The summary goes to stdout, everything else to stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geocheck",
		Short: "Validate property coordinates by re-geocoding their addresses",
		Long: `geocheck re-geocodes the address of every row of a property CSV with the Google
Geocoding API and compares the result with the stored latitude and longitude.
Rows further away than --tolerance-meters, and rows with missing or invalid
coordinates, are written to the mismatch report. A JSON summary is printed to
standard output.

The API key is read from GOOGLE_MAPS_API_KEY, which may be set in --env-file.
Every flag can also be set as a GEOCHECK_* environment variable, for example
GEOCHECK_TOLERANCE_METERS.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("%w: unexpected arguments %q", errUsage, args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	flags := cmd.Flags()
	flags.String("input", "", "path to input CSV (required)")
	flags.String("mismatches-output", "mismatches.csv", "path to write mismatched rows CSV")
	flags.String("summary-output", "", "optional path to write the summary as JSON")
	flags.String("id-column", "id", "column name for property id")
	flags.String("address-column", "address", "column name for address")
	flags.String("lat-column", "latitude", "column name for latitude")
	flags.String("lng-column", "longitude", "column name for longitude")
	flags.Float64("tolerance-meters", 0, "distance tolerance in meters for match vs mismatch (required)")
	flags.String("env-file", ".env", "path to a .env file to load if GOOGLE_MAPS_API_KEY is not set")
	flags.String("cache-file", "", "optional JSON cache file to reuse geocode results across runs")
	flags.String("cache-dsn", "", "optional PostgreSQL DSN to keep the geocode cache in (overrides --cache-file)")
	flags.Int("sleep-ms", 0, "delay after each geocoding request in milliseconds")
	flags.Int("max-rows", 0, "maximum number of rows to process (0 means all)")
	flags.Bool("dry-run", false, "do not call the geocoder; only validate the CSV header and required columns")
	flags.String("provider", "google", "geocoding provider: google or google-sdk")
	flags.Duration("timeout", 20*time.Second, "timeout of a single geocoding request")
	flags.String("ca-bundle", "", "extra PEM bundle of trusted certificate authorities")
	flags.String("metrics-output", "", "optional path to write Prometheus metrics in text format")
	flags.String("env", "development", "logging profile: local, development or production")
	flags.String("progress", "auto", "progress bar on stderr: auto, always or never")

	return cmd
}
