// Package output provides formatters for displaying a timeline window
// in various output formats (pretty, plain).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// ScanStats contains statistics about the scan that built the index.
type ScanStats struct {
	// DirsWalked is the total number of directories traversed.
	DirsWalked int64 `json:"dirs_walked" yaml:"dirs_walked"`

	// FilesWalked is the total number of files examined.
	FilesWalked int64 `json:"files_walked" yaml:"files_walked"`

	// Indexed is the number of photos added to the index.
	Indexed int64 `json:"indexed" yaml:"indexed"`

	// Skipped is the number of files with no extractable capture time.
	Skipped int64 `json:"skipped" yaml:"skipped"`

	// CacheHits is the number of capture times served from the cache.
	CacheHits int64 `json:"cache_hits" yaml:"cache_hits"`

	// Duration is the total time taken to complete the scan.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result contains the complete output data for formatting: the current
// timeline window plus scan metadata.
type Result struct {
	// Source is the library root that was scanned.
	Source string `json:"source" yaml:"source"`

	// Level is the zoom level the window was built at.
	Level types.ZoomLevel `json:"level" yaml:"level"`

	// Pivot is the timestamp the window is centered on.
	Pivot time.Time `json:"pivot" yaml:"pivot"`

	// Buckets is the visible window, ascending and contiguous.
	Buckets []types.Bucket `json:"buckets" yaml:"buckets"`

	// Stats contains scan statistics.
	Stats ScanStats `json:"stats" yaml:"stats"`

	// Warnings contains any warning messages generated during the scan.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TotalPhotos returns the number of photos across all window buckets.
func (r *Result) TotalPhotos() int {
	var total int
	for i := range r.Buckets {
		total += r.Buckets[i].Count()
	}
	return total
}

// bucketLabel renders a bucket key at the precision of its kind.
func bucketLabel(b types.Bucket) string {
	switch b.Kind {
	case types.DecadeOfYears:
		return fmt.Sprintf("%ds", b.Key.Year())
	case types.YearOfMonths:
		return b.Key.Format("2006")
	case types.MonthOfDays:
		return b.Key.Format("2006-01")
	case types.DayOfHours:
		return b.Key.Format("2006-01-02")
	case types.HourOfMinutes:
		return b.Key.Format("2006-01-02 15:00")
	case types.MinuteOfSeconds:
		return b.Key.Format("2006-01-02 15:04")
	default:
		return b.Key.Format(time.RFC3339)
	}
}

// formatDuration renders a duration rounded to a readable precision.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
