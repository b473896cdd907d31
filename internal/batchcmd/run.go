package batchcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/pdcheck/internal/books"
	"github.com/lehigh-university-libraries/pdcheck/internal/copyright"
	"github.com/lehigh-university-libraries/pdcheck/internal/ledger"
	"github.com/lehigh-university-libraries/pdcheck/internal/progress"
	"github.com/lehigh-university-libraries/pdcheck/internal/results"
)

// Determiner produces status determinations. *copyright.Engine satisfies it.
type Determiner interface {
	Determine(ctx context.Context, q copyright.Query) (*copyright.Determination, error)
}

// RunOptions configure a batch run.
type RunOptions struct {
	Input       string
	Output      string
	Limit       int
	LedgerPath  string
	Restart     bool
	Concurrency int
	Config      results.RunConfig
	// Stdout receives the summary; Stderr the progress bar.
	Stdout io.Writer
	Stderr io.Writer
}

func executeRun(ctx context.Context, engine Determiner, opts RunOptions) (*results.Batch, error) {
	slog.Info("Starting batch run", "input", opts.Input, "concurrency", opts.Concurrency)

	loader := books.NewLoader(opts.Input)
	var (
		list []books.Book
		err  error
	)
	if opts.Limit > 0 {
		list, err = loader.LoadSample(opts.Limit)
	} else {
		list, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load book list: %w", err)
	}
	slog.Info("Book list loaded", "books", len(list))

	input, err := filepath.Abs(opts.Input)
	if err != nil {
		input = opts.Input
	}

	var (
		led  *ledger.Ledger
		done map[string]results.Row
	)
	if opts.LedgerPath != "" {
		led, err = ledger.Open(ctx, opts.LedgerPath)
		if err != nil {
			return nil, err
		}
		defer led.Close()

		if opts.Restart {
			if err := led.Reset(ctx, input); err != nil {
				return nil, err
			}
		}
		done, err = led.Completed(ctx, input)
		if err != nil {
			return nil, err
		}
		slog.Info("Resuming from ledger", "ledger", led.Path(), "completed", len(done))
	}

	rows := make([]results.Row, len(list))
	bar := progress.NewBar(opts.Stderr, len(list), "books")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, max(opts.Concurrency, 1))

	for i, book := range list {
		if row, ok := done[book.ID]; ok {
			rows[i] = row
			bar.Add(1)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(idx int, book books.Book) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			if ctx.Err() != nil {
				return
			}

			slog.Debug("Processing book", "id", book.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(list)))
			row := processBook(ctx, engine, book)
			if ctx.Err() != nil {
				return
			}
			rows[idx] = row
			bar.Add(1)

			if led != nil && row.Error == "" {
				if err := led.Record(ctx, input, row); err != nil {
					slog.Warn("Failed to checkpoint row", "id", row.ID, "err", err)
				}
			}
		}(i, book)
	}
	wg.Wait()
	bar.Finish()

	if err := ctx.Err(); err != nil {
		if led != nil {
			return nil, fmt.Errorf("batch interrupted, rerun with --ledger %s to resume: %w", led.Path(), err)
		}
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	cfg := opts.Config
	cfg.Input = opts.Input
	cfg.Concurrency = opts.Concurrency
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	batch := &results.Batch{
		Config:  cfg,
		Summary: results.Summarize(rows),
		Results: rows,
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join("results", "batch-"+cfg.Timestamp+".yaml")
	}
	slog.Info("Saving results", "output", output)
	if err := results.Save(batch, output); err != nil {
		return nil, fmt.Errorf("failed to save results: %w", err)
	}

	results.PrintSummary(opts.Stdout, batch.Summary)
	fmt.Fprintf(opts.Stdout, "\nResults saved to: %s\n", output)
	fmt.Fprintf(opts.Stdout, "\nGenerate a detailed report with:\n")
	fmt.Fprintf(opts.Stdout, "  pdcheck batch report --results %s\n", output)

	return batch, nil
}

func processBook(ctx context.Context, engine Determiner, book books.Book) results.Row {
	row := results.Row{
		ID:             book.ID,
		Author:         book.Author,
		Title:          book.Title,
		Year:           book.Year,
		ExpectedStatus: book.ExpectedStatus,
	}

	start := time.Now()
	d, err := engine.Determine(ctx, copyright.Query{Author: book.Author, Title: book.Title, Year: book.Year})
	row.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		row.Error = err.Error()
		slog.Warn("Book failed", "id", book.ID, "err", err)
		return row
	}

	row.Status = d.Status
	row.Category = d.Category
	row.Agrees = results.Agreement(d.Status, book.ExpectedStatus)
	row.RenewalChecked = d.RenewalChecked
	row.Renewed = d.Renewed
	if m := d.Match; m != nil {
		row.Score = m.ConfidenceScore
		row.MatchedText = m.MatchedDisplayText
		row.RegistrationYear = m.MatchedYear
		if m.RegistrationNumber != nil {
			row.RegistrationNumber = *m.RegistrationNumber
		}
	}
	return row
}
