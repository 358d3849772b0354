// =============================================================================
// ASYCUDA Converter - Batch Runner
// =============================================================================
//
// The runner converts a set of workbooks concurrently and collects exactly one
// entry per input, in input order:
//
//   | Outcome  | Entry name          | Entry content                          |
//   |----------|---------------------|----------------------------------------|
//   | success  | <base>.xml          | the ASYCUDA document                   |
//   | failure  | <name>_ERROR.txt    | Conversion failed: <name> | Error: ... |
//
// CONCURRENCY:
//   Files run on a bounded pool of goroutines. Workers share only the
//   read-only converter and the Job counters. A failing or panicking file
//   produces its error entry and never affects its siblings.
//
// CANCELLATION:
//   When ctx is cancelled the runner stops starting new files. Files not yet
//   started get an error entry; files already running finish.
//
// =============================================================================

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ginjaninja78/asycuda-converter/internal/converter"
)

// ErrNoFiles is returned when a batch has no input.
var ErrNoFiles = errors.New("no files selected")

// FileInput is one workbook submitted to a batch. Uploads carry Data; local
// files carry Path and are read by the worker that converts them, so an
// unreadable file fails on its own entry.
type FileInput struct {
	Name string
	Data []byte
	Path string
}

// FileConverter converts one workbook. *converter.Converter satisfies it.
type FileConverter interface {
	Convert(ctx context.Context, name string, data []byte) converter.Result
}

// PathConverter is implemented by converters that read workbooks from disk
// themselves. *converter.Converter satisfies it.
type PathConverter interface {
	ConvertFile(ctx context.Context, path string) converter.Result
}

// Output is the result of one batch.
type Output struct {
	// Entries holds one result per input, in input order.
	Entries []converter.Result

	// Successful and Failed count the entries by outcome.
	Successful int
	Failed     int

	// Duration is the wall time of the batch.
	Duration time.Duration
}

// Runner executes batches.
type Runner struct {
	conv        FileConverter
	concurrency int
	logger      *slog.Logger
}

// NewRunner creates a runner converting at most concurrency files at once.
func NewRunner(conv FileConverter, concurrency int, logger *slog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{conv: conv, concurrency: concurrency, logger: logger}
}

// Run converts files and reports progress to job, which may be nil.
//
// RETURNS:
//   - The batch output with len(files) entries.
//   - ErrNoFiles if files is empty. Per-file failures are never returned
//     as errors.
func (r *Runner) Run(ctx context.Context, job *Job, files []FileInput) (*Output, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	start := time.Now()
	entries := make([]converter.Result, len(files))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	job.begin(len(files))

submit:
	for i, file := range files {
		// Cancellation is checked before acquiring a slot so a cancelled
		// batch never starts another file.
		if err := ctx.Err(); err != nil {
			r.skipRemaining(entries, files, i, job, err)
			break submit
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			r.skipRemaining(entries, files, i, job, ctx.Err())
			break submit
		}

		wg.Add(1)
		go func(i int, file FileInput) {
			defer wg.Done()
			defer func() { <-sem }()

			job.fileStarted(i, file.Name)
			entries[i] = r.convertOne(ctx, file)
			job.fileDone(entries[i].Success)
		}(i, file)
	}

	wg.Wait()
	job.complete()

	out := &Output{Entries: entries, Duration: time.Since(start)}
	for _, e := range entries {
		if e.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}

	r.logger.Info("batch finished",
		slog.Int("files", len(files)),
		slog.Int("successful", out.Successful),
		slog.Int("errors", out.Failed),
		slog.Duration("duration", out.Duration))

	return out, nil
}

// convertOne isolates one file: a panic becomes that file's error entry.
func (r *Runner) convertOne(ctx context.Context, file FileInput) (result converter.Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("unexpected panic during conversion",
				slog.String("file", file.Name), slog.Any("panic", p))
			result = converter.Failed(file.Name, fmt.Errorf("unexpected error: %v", p))
		}
	}()
	if file.Path != "" && file.Data == nil {
		return r.convertPath(ctx, file)
	}
	return r.conv.Convert(ctx, file.Name, file.Data)
}

func (r *Runner) convertPath(ctx context.Context, file FileInput) converter.Result {
	if pc, ok := r.conv.(PathConverter); ok {
		return pc.ConvertFile(ctx, file.Path)
	}
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return converter.Failed(file.Name, fmt.Errorf("failed to read file: %w", err))
	}
	return r.conv.Convert(ctx, file.Name, data)
}

// skipRemaining fills the entries of files[from:] with cancellation errors.
func (r *Runner) skipRemaining(entries []converter.Result, files []FileInput, from int, job *Job, cause error) {
	r.logger.Warn("batch cancelled", slog.Int("skipped", len(files)-from), slog.Any("error", cause))
	for j := from; j < len(files); j++ {
		entries[j] = converter.Failed(files[j].Name, fmt.Errorf("not converted: %w", cause))
		job.fileDone(false)
	}
}
