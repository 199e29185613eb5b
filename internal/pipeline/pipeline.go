// Package pipeline runs one extraction: fetch every ticker sequentially,
// fold the results into a unified table, write the output files, and persist
// everything to the store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/guttosm/bistpulse/internal/domain/models"
	"github.com/guttosm/bistpulse/internal/export"
	"github.com/guttosm/bistpulse/internal/fetch"
	"github.com/guttosm/bistpulse/internal/logger"
	"github.com/guttosm/bistpulse/internal/storage"
)

// ErrNoTickersSucceeded marks a run where every ticker failed. Per-ticker
// failures are otherwise non-fatal; only a fully empty run (or a store
// failure) makes the process exit non-zero.
var ErrNoTickersSucceeded = errors.New("no tickers succeeded")

// Params are the request parameters of one run, already validated by the CLI
// against the provider vocabulary (the provider rejects unsupported
// combinations and the affected tickers surface as fetch failures).
type Params struct {
	Range    string
	Interval string
}

// Result is everything one run produced.
type Result struct {
	Run    models.Run
	Stats  models.RunStats
	Rows   []models.PriceRow
	Export export.Result
}

// Runner wires the pipeline dependencies. The ticker list is an immutable
// input; tests pass small fixture lists.
type Runner struct {
	fetcher  fetch.Fetcher
	exporter export.Exporter
	repo     storage.PricesRepository
	tickers  []string

	sleepMin time.Duration
	sleepMax time.Duration

	now func() time.Time
}

// NewRunner builds a Runner. sleepMin/sleepMax bound the random pause between
// consecutive ticker fetches; pass zeros to disable throttling (tests).
func NewRunner(f fetch.Fetcher, e export.Exporter, r storage.PricesRepository, tickers []string, sleepMin, sleepMax time.Duration) *Runner {
	return &Runner{
		fetcher:  f,
		exporter: e,
		repo:     r,
		tickers:  tickers,
		sleepMin: sleepMin,
		sleepMax: sleepMax,
		now:      time.Now,
	}
}

// Run executes one extraction. Files that were written stay on disk even when
// persistence fails afterwards.
func (r *Runner) Run(ctx context.Context, p Params) (*Result, error) {
	startedAt := r.now().UTC().Truncate(time.Second)
	runID := uuid.NewString()

	logger.L().Info().
		Str("run_id", runID).
		Str("range", p.Range).
		Str("interval", p.Interval).
		Int("tickers", len(r.tickers)).
		Msg("run start")

	rows, metas, stats, err := r.collect(ctx, p)
	if err != nil {
		return nil, err
	}

	logger.L().Info().
		Str("run_id", runID).
		Int("requested", stats.Requested).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed()).
		Int("rows", len(rows)).
		Msg("fetch done")
	if stats.Failed() > 0 {
		logger.L().Warn().
			Strs("failed_tickers", stats.FailedTickers).
			Msg("some tickers returned no data")
	}

	// Even an all-failed run writes header-only files.
	exp := r.exporter.Write(rows, p.Range, p.Interval, startedAt)
	if exp.CSVErr != nil {
		logger.L().Error().Err(exp.CSVErr).Str("path", exp.CSVPath).Msg("csv write failed")
	} else {
		logger.L().Info().Str("path", exp.CSVPath).Msg("csv written")
	}
	if exp.XLSXErr != nil {
		logger.L().Error().Err(exp.XLSXErr).Str("path", exp.XLSXPath).Msg("xlsx write failed")
	} else {
		logger.L().Info().Str("path", exp.XLSXPath).Msg("xlsx written")
	}

	run := models.Run{
		ID:        runID,
		Range:     p.Range,
		Interval:  p.Interval,
		StartedAt: startedAt,
		Requested: stats.Requested,
		Succeeded: stats.Succeeded,
		RowCount:  len(rows),
		CSVPath:   exp.CSVPath,
		XLSXPath:  exp.XLSXPath,
	}

	if err := r.repo.PersistRun(run, rows, metas); err != nil {
		return nil, fmt.Errorf("persist run %s: %w", runID, err)
	}
	logger.L().Info().Str("run_id", runID).Int("rows", len(rows)).Msg("store updated")

	res := &Result{Run: run, Stats: stats, Rows: rows, Export: exp}
	if stats.Succeeded == 0 {
		return res, ErrNoTickersSucceeded
	}
	return res, nil
}

// collect is the sequential fold over the ticker list. On a fetch error or an
// empty table the ticker is recorded as failed and the fold continues; there
// are no retries.
func (r *Runner) collect(ctx context.Context, p Params) ([]models.PriceRow, []models.SymbolMeta, models.RunStats, error) {
	stats := models.RunStats{Requested: len(r.tickers)}
	var unified []models.PriceRow
	var metas []models.SymbolMeta

	for i, sym := range r.tickers {
		if err := ctx.Err(); err != nil {
			return nil, nil, stats, fmt.Errorf("run aborted: %w", err)
		}

		start := time.Now()
		rows, meta, err := r.fetcher.Fetch(ctx, sym, p.Range, p.Interval)
		switch {
		case err != nil:
			stats.FailedTickers = append(stats.FailedTickers, sym)
			logger.L().Error().
				Int("idx", i+1).Int("total", len(r.tickers)).
				Str("ticker", sym).Err(err).
				Msg("ticker failed")
		case len(rows) == 0:
			stats.FailedTickers = append(stats.FailedTickers, sym)
			logger.L().Warn().
				Int("idx", i+1).Int("total", len(r.tickers)).
				Str("ticker", sym).
				Msg("no data in window")
		default:
			stats.Succeeded++
			unified = append(unified, rows...)
			if meta != nil {
				metas = append(metas, *meta)
			}
			logger.L().Info().
				Int("idx", i+1).Int("total", len(r.tickers)).
				Str("ticker", sym).Int("rows", len(rows)).
				Dur("elapsed", time.Since(start)).
				Msg("ticker done")
		}

		if i < len(r.tickers)-1 {
			if err := r.throttle(ctx); err != nil {
				return nil, nil, stats, fmt.Errorf("run aborted: %w", err)
			}
		}
	}

	return unified, metas, stats, nil
}

// throttle sleeps a random duration in [sleepMin, sleepMax], honoring
// cancellation.
func (r *Runner) throttle(ctx context.Context) error {
	if r.sleepMax <= 0 {
		return nil
	}
	d := r.sleepMin
	if r.sleepMax > r.sleepMin {
		d += time.Duration(rand.Int63n(int64(r.sleepMax - r.sleepMin)))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
