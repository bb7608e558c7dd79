package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/UnknownOlympus/geocheck/internal/metrics"
	"github.com/UnknownOlympus/geocheck/internal/models"
	"github.com/UnknownOlympus/geocheck/internal/table"
)

// RowSource yields input rows until it returns io.EOF.
type RowSource interface {
	Next() (models.Row, error)
}

// Progress is advanced once per evaluated row.
type Progress interface {
	Add(n int) error
}

// Report is what a run produced.
type Report struct {
	Tally       Tally
	Mismatches  []table.MismatchRecord
	Interrupted bool // Interrupted is set when the context ended before the input did.
}

// Checker evaluates every row of an input in order.
type Checker struct {
	evaluator *Evaluator
	metrics   *metrics.Metrics
	maxRows   int
	progress  Progress
	log       *slog.Logger
}

// NewChecker creates a checker. maxRows <= 0 means no limit; m and progress may be nil.
func NewChecker(evaluator *Evaluator, m *metrics.Metrics, maxRows int, progress Progress, log *slog.Logger) *Checker {
	return &Checker{
		evaluator: evaluator,
		metrics:   m,
		maxRows:   maxRows,
		progress:  progress,
		log:       log,
	}
}

// Run evaluates rows until the source is exhausted, the row limit is reached or ctx ends.
// A cancelled context is not an error: the report covers the rows evaluated so far.
func (c *Checker) Run(ctx context.Context, rows RowSource) (*Report, error) {
	report := &Report{}

	for {
		if ctx.Err() != nil {
			c.log.WarnContext(ctx, "Run interrupted", "rows", report.Tally.TotalRows)
			report.Interrupted = true
			break
		}
		if c.maxRows > 0 && report.Tally.TotalRows >= c.maxRows {
			c.log.InfoContext(ctx, "Row limit reached", "max_rows", c.maxRows)
			break
		}

		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input row %d: %w", report.Tally.TotalRows+1, err)
		}

		outcome := c.evaluator.Evaluate(ctx, row)
		report.Tally.Add(outcome)
		if outcome.Kind == KindMismatched {
			report.Mismatches = append(report.Mismatches, outcome.Mismatch(row))
		}

		if c.metrics != nil {
			c.metrics.RowsProcessed.WithLabelValues(string(outcome.Kind), string(outcome.Reason)).Inc()
		}
		if c.progress != nil {
			_ = c.progress.Add(1)
		}
	}

	c.log.InfoContext(ctx, "Rows evaluated",
		"total", report.Tally.TotalRows,
		"matched", report.Tally.Matched,
		"mismatched", report.Tally.Mismatched,
	)

	return report, nil
}
