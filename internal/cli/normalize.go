package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/sections"
)

// ErrNotNormalized is returned in check mode when a file would change.
var ErrNotNormalized = errors.New("document is not normalized")

// NormalizeOptions configures a batch run over files.
type NormalizeOptions struct {
	Files []string
	// Write rewrites changed files in place.
	Write bool
	// Check fails when any file would change.
	Check bool
	// Editing outputs the editing downcast instead of the data one.
	Editing bool
	// Concurrency bounds parallel files. Zero means one per CPU.
	Concurrency int
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path string `json:"path"`
	sections.Result
}

// NormalizeFiles repairs every file in parallel. Results keep the order of
// opts.Files.
func NormalizeFiles(ctx context.Context, engine *sections.Engine, opts NormalizeOptions) ([]FileResult, error) {
	if opts.Write && opts.Editing {
		return nil, fmt.Errorf("--write and --editing cannot be used together")
	}

	results := make([]FileResult, len(opts.Files))
	g, gctx := errgroup.WithContext(ctx)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for i, path := range opts.Files {
		g.Go(func() error {
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			res, err := engine.NormalizeContext(gctx, string(raw))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if opts.Editing {
				if res.HTML, err = engine.EditingHTML(gctx, string(raw)); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			if opts.Write && res.Changed {
				if err := os.WriteFile(path, []byte(res.HTML), 0o644); err != nil {
					return err
				}
			}
			results[i] = FileResult{Path: path, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Check {
		for _, r := range results {
			if r.Changed {
				return results, fmt.Errorf("%w: %s", ErrNotNormalized, r.Path)
			}
		}
	}
	return results, nil
}

// NormalizeStream repairs a single document read from r.
func NormalizeStream(ctx context.Context, engine *sections.Engine, r io.Reader, editing bool) (sections.Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return sections.Result{}, err
	}
	res, err := engine.NormalizeContext(ctx, string(raw))
	if err != nil || !editing {
		return res, err
	}
	res.HTML, err = engine.EditingHTML(ctx, string(raw))
	return res, err
}
