package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gradsift/gradsift/app/scrape"
	"github.com/gradsift/gradsift/app/standardize"
)

// ErrBusy is returned when a run is requested while the gate is held by
// another operation.
var ErrBusy = errors.New("another operation is already in progress")

// Runner drives one ingestion pass: fetch a page, parse it, clean and
// standardize its entries, store the batch, move to the next page. Pages are
// processed strictly in order; a run in flight blocks all other runs via the
// gate.
type Runner struct {
	gate              *Gate
	fetcher           *scrape.Fetcher
	parser            *scrape.Parser
	cleaner           *scrape.Cleaner
	standardizer      *standardize.Standardizer
	loader            *Loader
	abortOnFetchError bool
}

func NewRunner(gate *Gate, fetcher *scrape.Fetcher, parser *scrape.Parser, cleaner *scrape.Cleaner,
	standardizer *standardize.Standardizer, loader *Loader, abortOnFetchError bool) *Runner {
	return &Runner{
		gate:              gate,
		fetcher:           fetcher,
		parser:            parser,
		cleaner:           cleaner,
		standardizer:      standardizer,
		loader:            loader,
		abortOnFetchError: abortOnFetchError,
	}
}

// Start acquires the gate and launches the run in the background, returning
// immediately. ErrBusy when another operation holds the gate; the caller is
// expected to surface that as a rejection, not to queue.
func (r *Runner) Start(opts Options) error {
	if !r.gate.TryStart(OperationPull) {
		return ErrBusy
	}

	go func() {
		summary := r.Run(context.Background(), opts)
		r.gate.Finish(summary.Message())
	}()

	return nil
}

// Run executes the pipeline synchronously and reports what happened. A page
// that cannot be fetched or parsed is counted failed and either skipped or,
// when configured, aborts the run. A storage error always aborts. The run
// itself never returns an error; failures are carried in the summary.
func (r *Runner) Run(ctx context.Context, opts Options) Summary {
	summary := Summary{
		RunID:          uuid.New().String(),
		StartPage:      opts.StartPage,
		PagesRequested: opts.Pages,
		StartedAt:      time.Now().UTC(),
	}

	slog.Info("Data pull started", "run_id", summary.RunID, "start_page", opts.StartPage, "pages", opts.Pages)

	for i := 0; i < opts.Pages; i++ {
		page := opts.StartPage + i

		if i > 0 && opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}

		r.gate.SetMessage(fmt.Sprintf("Fetching page %d/%d", i+1, opts.Pages))

		data, err := r.fetcher.Run(ctx, page)
		if err != nil {
			summary.PagesFailed++
			summary.recordError(err)
			slog.Warn("Page fetch failed", "run_id", summary.RunID, "page", page, "error", err)

			if r.abortOnFetchError {
				break
			}
			continue
		}

		entries, skippedRows, err := r.parser.Run(data)
		if err != nil {
			summary.PagesFailed++
			summary.recordError(fmt.Errorf("failed to parse page %d: %w", page, err))
			slog.Warn("Page parse failed", "run_id", summary.RunID, "page", page, "error", err)

			if r.abortOnFetchError {
				break
			}
			continue
		}

		summary.PagesFetched++
		summary.EntriesParsed += len(entries)
		summary.ParseSkipped += skippedRows

		records := make([]Record, 0, len(entries))
		for _, entry := range entries {
			cleaned := r.cleaner.Run(entry)

			result, err := r.standardizer.Run(ctx, cleaned.Program)
			if err != nil {
				// The entry is stored anyway, with empty canonical fields.
				summary.ResolutionFailures++
				slog.Warn("Failed to standardize program", "run_id", summary.RunID, "program", cleaned.Program, "error", err)
				result = standardize.Result{}
			}

			records = append(records, Record{
				Entry:      cleaned,
				Program:    result.Program,
				University: result.University,
			})
		}

		inserted, skipped, err := r.loader.Run(records)
		summary.Inserted += inserted
		summary.Skipped += skipped

		if err != nil {
			summary.recordError(err)
			slog.Error("Failed to store page batch", "run_id", summary.RunID, "page", page, "error", err)
			break
		}
	}

	summary.FinishedAt = time.Now().UTC()

	slog.Info("Data pull finished", "run_id", summary.RunID,
		"pages_fetched", summary.PagesFetched, "pages_failed", summary.PagesFailed,
		"entries", summary.EntriesParsed, "inserted", summary.Inserted, "skipped", summary.Skipped,
		"resolution_failures", summary.ResolutionFailures,
		"duration", summary.FinishedAt.Sub(summary.StartedAt).String())

	return summary
}
