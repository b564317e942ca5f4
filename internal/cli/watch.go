package cli

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/sections/internal/presentation/tui"
)

// RunWatch normalizes the files, then does it again whenever a template
// changes, until ctx is cancelled.
func RunWatch(ctx *SignalContext, opts EngineOptions, nopts NormalizeOptions, out io.Writer) error {
	tui.PrintBanner(out)
	printSystemMessage(out, "Watching templates in '%s'.", opts.Dir)

	for {
		if !runWatchIteration(ctx, opts, nopts, out) {
			break
		}
	}

	if sig := ctx.Signal(); sig != nil {
		printSystemMessage(out, "Stopped (%s).", sig)
	}
	return nil
}

// runWatchIteration reports whether the watcher should run again.
func runWatchIteration(ctx *SignalContext, opts EngineOptions, nopts NormalizeOptions, out io.Writer) bool {
	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, _, logger, err := CreateEngine(iterCtx, opts)
	if err != nil {
		printSystemMessage(out, "Engine initialization failed: %v", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(2 * time.Second):
			return true
		}
	}

	results, err := NormalizeFiles(iterCtx, engine, nopts)
	if err != nil {
		logger.Error("Normalize failed", "err", err)
		printSystemMessage(out, "Normalize failed: %v", err)
	}
	for _, r := range results {
		status := "unchanged"
		if r.Changed {
			status = "repaired"
		}
		printSystemMessage(out, "%s: %s (%d cycles)", r.Path, status, r.Cycles)
	}

	watchCh, err := engine.Watch(iterCtx)
	if err != nil {
		logger.Error("Watcher unavailable", "err", err)
		printSystemMessage(out, "Templates cannot be watched: %v", err)
		return false
	}

	printSystemMessage(out, "Waiting for changes...")
	return waitForChange(ctx, watchCh, logger, out)
}

func waitForChange(ctx context.Context, watchCh <-chan string, logger *slog.Logger, out io.Writer) bool {
	select {
	case <-ctx.Done():
		return false
	case event, ok := <-watchCh:
		if !ok {
			return false
		}
		logger.Info("Change detected, triggering reload", "event", event)
		printSystemMessage(out, "Change detected in '%s'.", event)
		// Delay slightly to ensure file system is stable
		time.Sleep(100 * time.Millisecond)
		return true
	}
}
