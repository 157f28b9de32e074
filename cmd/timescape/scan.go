package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/timescape/pkg/timescape/config"
	"github.com/jamesainslie/timescape/pkg/timescape/events"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
	"github.com/jamesainslie/timescape/pkg/timescape/metacache"
	"github.com/jamesainslie/timescape/pkg/timescape/output"
	"github.com/jamesainslie/timescape/pkg/timescape/scan"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
	"github.com/jamesainslie/timescape/pkg/timescape/watch"
	"github.com/jamesainslie/timescape/pkg/timescape/window"
)

// runScan is the main command handler: index the library, build the
// timeline window, render it.
func runScan(_ *cobra.Command, args []string) error {
	libraryPath := viper.GetString("library.path")
	if len(args) > 0 {
		libraryPath = args[0]
	}

	expandedPath, err := config.ExpandPath(libraryPath)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("library does not exist: %s", absPath)
		}
		return fmt.Errorf("cannot access library: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("library is not a directory: %s", absPath)
	}

	zoom, ok := types.ParseZoomLevel(viper.GetString("timeline.zoom"))
	if !ok {
		return fmt.Errorf("invalid zoom level %q", viper.GetString("timeline.zoom"))
	}

	var pivot time.Time
	if pivotStr := viper.GetString("pivot"); pivotStr != "" {
		pivot, err = time.ParseInLocation("2006-01-02", pivotStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid pivot date %q: %w", pivotStr, err)
		}
	}

	outFormat := viper.GetString("output")
	if outFormat == "" {
		outFormat = "pretty"
	}
	formatter, err := output.Get(outFormat)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			outFormat, output.Available())
	}

	if err := initLogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logging.Close() }()

	opts := scan.Options{
		Extensions: viper.GetStringSlice("library.extensions"),
	}

	if viper.GetBool("cache.enabled") && !viper.GetBool("no_cache") {
		cache, cacheErr := openCache()
		if cacheErr != nil {
			logging.Get("cmd").Warn("cache unavailable, scanning without it", "error", cacheErr)
		} else {
			opts.Cache = cache
			defer func() { _ = cache.Close() }()
		}
	}

	ix := index.New()
	bc := events.New()
	defer bc.Close()

	pipeline := scan.New(ix, bc, opts)
	ctrl := window.NewController(ix, viper.GetInt("timeline.buffer_size"))

	// Graceful shutdown on interrupt.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The controller follows scan events so the window tracks the index
	// as it fills.
	sub := bc.Subscribe()
	defer bc.Unsubscribe(sub.ID)
	go ctrl.Run(ctx, sub)

	recursive := !viper.GetBool("no_recursive")
	maxDepth := viper.GetInt("library.max_depth")

	printInfo("Indexing %s...", absPath)
	start := time.Now()
	if err := pipeline.Start(ctx, absPath, recursive, maxDepth); err != nil {
		return fmt.Errorf("scan failed to start: %w", err)
	}
	pipeline.Wait()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		printInfo("Interrupted, stopping scan...")
		return nil
	}

	// Apply the requested view on top of the scan's default anchoring.
	if pivot.IsZero() {
		if earliest, ok := ix.Earliest(); ok {
			pivot = earliest.Taken
		} else {
			pivot = time.Now()
		}
	}
	ctrl.SetView(zoom, pivot)
	ctrl.CompleteJump()

	if err := render(formatter, absPath, ctrl, pipeline, elapsed); err != nil {
		return err
	}

	if viper.GetBool("watch") {
		return runWatch(ctx, ix, bc, opts, absPath, formatter, ctrl, pipeline, elapsed)
	}

	return nil
}

// render formats the controller's current window to stdout.
func render(formatter output.Formatter, source string, ctrl *window.Controller,
	pipeline *scan.Pipeline, elapsed time.Duration,
) error {
	stats := pipeline.Stats()

	result := &output.Result{
		Source:  source,
		Level:   ctrl.Level(),
		Pivot:   ctrl.Pivot(),
		Buckets: ctrl.Window(),
		Stats: output.ScanStats{
			DirsWalked:  stats.DirsWalked,
			FilesWalked: stats.FilesWalked,
			Indexed:     stats.Indexed,
			Skipped:     stats.Skipped,
			CacheHits:   stats.CacheHits,
			Duration:    elapsed,
		},
	}
	for _, scanErr := range pipeline.Errors() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: %s", scanErr.Path, scanErr.Error))
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// runWatch keeps indexing new photos until interrupted, re-rendering the
// window when the library changes.
func runWatch(ctx context.Context, ix *index.DateIndex, bc *events.Broadcaster,
	opts scan.Options, absPath string, formatter output.Formatter,
	ctrl *window.Controller, pipeline *scan.Pipeline, elapsed time.Duration,
) error {
	w, err := watch.New(ix, bc, opts)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Watch(absPath); err != nil {
		return fmt.Errorf("failed to watch library: %w", err)
	}
	go w.Run(ctx)

	printInfo("Watching %s for new photos (Ctrl-C to stop)...", absPath)

	sub := bc.Subscribe()
	defer bc.Unsubscribe(sub.ID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events:
			if !ok {
				return nil
			}
			if ev.Type != events.EventItemFound {
				continue
			}
			printInfo("\nLibrary changed:")
			if err := render(formatter, absPath, ctrl, pipeline, elapsed); err != nil {
				return err
			}
		}
	}
}

// openCache opens the capture-time cache at the configured path.
func openCache() (*metacache.Cache, error) {
	if err := config.EnsureCacheDir(); err != nil {
		return nil, err
	}
	path := viper.GetString("cache.path")
	if path == "" {
		path = config.DefaultCachePath()
	}
	return metacache.Open(path)
}
