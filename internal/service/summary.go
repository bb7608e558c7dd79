package service

// Tally counts row outcomes over a run.
type Tally struct {
	TotalRows              int
	CheckedRows            int
	Matched                int
	Mismatched             int
	InvalidCoordMismatches int
	DistanceMismatches     int
	SkippedMissingAddress  int
	SkippedAmbiguous       int
	SkippedGeocodeFailure  int
}

// Add counts one evaluated row.
func (t *Tally) Add(o Outcome) {
	t.TotalRows++

	switch o.Kind {
	case KindMatched:
		t.CheckedRows++
		t.Matched++
	case KindMismatched:
		t.Mismatched++
		if o.Reason == ReasonInvalidCoordinates {
			t.InvalidCoordMismatches++
		} else {
			t.CheckedRows++
			t.DistanceMismatches++
		}
	case KindSkipped:
		switch o.Reason {
		case ReasonMissingAddress:
			t.SkippedMissingAddress++
		case ReasonAmbiguousResult:
			t.SkippedAmbiguous++
		default:
			t.SkippedGeocodeFailure++
		}
	}
}

// Accounted is the number of rows that reached a final decision.
func (t *Tally) Accounted() int {
	return t.CheckedRows + t.InvalidCoordMismatches +
		t.SkippedMissingAddress + t.SkippedAmbiguous + t.SkippedGeocodeFailure
}

// RunInfo holds the static parameters of a run that are echoed in the summary.
type RunInfo struct {
	Input            string
	MismatchesOutput string
	ToleranceMeters  float64
	CacheFile        string
}

// Summary is the machine-readable record of a run.
type Summary struct {
	Input                  string  `json:"input"`
	MismatchesOutput       string  `json:"mismatches_output"`
	ToleranceMeters        float64 `json:"tolerance_meters"`
	TotalRows              int     `json:"total_rows"`
	CheckedRows            int     `json:"checked_rows"`
	Matched                int     `json:"matched"`
	Mismatched             int     `json:"mismatched"`
	InvalidCoordMismatches int     `json:"invalid_coord_mismatches"`
	DistanceMismatches     int     `json:"distance_mismatches"`
	SkippedMissingAddress  int     `json:"skipped_missing_address"`
	SkippedAmbiguous       int     `json:"skipped_ambiguous"`
	SkippedGeocodeFailure  int     `json:"skipped_geocode_failure"`
	CacheFile              *string `json:"cache_file"`
	CacheHits              int     `json:"cache_hits"`
	CacheMisses            int     `json:"cache_misses"`
	AccountedRows          int     `json:"accounted_rows"`
}

// Summary builds the run summary. An empty CacheFile is reported as null.
func (t *Tally) Summary(info RunInfo, cacheHits, cacheMisses int) Summary {
	var cacheFile *string
	if info.CacheFile != "" {
		cacheFile = &info.CacheFile
	}

	return Summary{
		Input:                  info.Input,
		MismatchesOutput:       info.MismatchesOutput,
		ToleranceMeters:        info.ToleranceMeters,
		TotalRows:              t.TotalRows,
		CheckedRows:            t.CheckedRows,
		Matched:                t.Matched,
		Mismatched:             t.Mismatched,
		InvalidCoordMismatches: t.InvalidCoordMismatches,
		DistanceMismatches:     t.DistanceMismatches,
		SkippedMissingAddress:  t.SkippedMissingAddress,
		SkippedAmbiguous:       t.SkippedAmbiguous,
		SkippedGeocodeFailure:  t.SkippedGeocodeFailure,
		CacheFile:              cacheFile,
		CacheHits:              cacheHits,
		CacheMisses:            cacheMisses,
		AccountedRows:          t.Accounted(),
	}
}
