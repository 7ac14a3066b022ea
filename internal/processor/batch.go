package processor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of one file in a batch.
type FileResult struct {
	File   string  `json:"file"`
	Status string  `json:"status"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
	Err    error   `json:"-"`
}

// ErrDuplicateOutput reports that two inputs in one batch would write the
// same output file.
var ErrDuplicateOutput = errors.New("duplicate output path")

// BatchOptions configure a batch run. Template supplies every Options field
// except Input and Output.
type BatchOptions struct {
	Template    Options
	OutDir      string
	Concurrency int
	// OnDone is called after each file finishes. Calls may be concurrent.
	OnDone func(index int, r FileResult)
}

// Batch processes every file independently. A failing file does not stop the
// others; results keep the order of files.
func Batch(ctx context.Context, files []string, opts BatchOptions) []FileResult {
	results := make([]FileResult, len(files))
	outputs := destinations(files, opts)

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		g.Go(func() error {
			r := FileResult{File: file}
			if err := ctx.Err(); err != nil {
				r.Status, r.Err, r.Error = "skipped", err, err.Error()
				results[i] = r
				return nil
			}

			o := opts.Template
			o.Input = file
			o.Output = outputs[i].path

			var report *Report
			err := outputs[i].err
			if err == nil {
				report, err = Process(o)
			}
			if err != nil {
				r.Status, r.Err, r.Error = "error", err, err.Error()
			} else {
				r.Status, r.Report = "ok", report
			}
			results[i] = r
			if opts.OnDone != nil {
				opts.OnDone(i, r)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type destination struct {
	path string
	err  error
}

// destinations computes the output path of every file. When two files map
// to the same path, the first keeps it and the later ones get an error, so
// nothing is overwritten and no two writers share a file.
func destinations(files []string, opts BatchOptions) []destination {
	out := make([]destination, len(files))
	owner := make(map[string]string, len(files))
	for i, file := range files {
		path := OutputPath(file, opts.Template.Suffix)
		if opts.OutDir != "" {
			path = filepath.Join(opts.OutDir, filepath.Base(path))
		}
		out[i].path = path

		key := filepath.Clean(path)
		if first, ok := owner[key]; ok {
			out[i].err = fmt.Errorf("%w: %s is also the output of %s", ErrDuplicateOutput, path, first)
			continue
		}
		owner[key] = file
	}
	return out
}

// Failed counts results that did not succeed.
func Failed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Status != "ok" {
			n++
		}
	}
	return n
}
