// Package scan walks a photo tree, extracts a capture time per image with a
// fallback chain, and populates the date index. Scans run in the background
// and are cooperatively cancellable; starting a new scan supersedes any scan
// still in flight.
package scan

import (
	"os"
	"strings"
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/metacache"
)

// DefaultExtensions are the image extensions indexed when none are configured.
var DefaultExtensions = []string{".jpg", ".jpeg"}

// Options configures the scan pipeline.
type Options struct {
	// Extensions are the file extensions to index, matched
	// case-insensitively. Empty uses DefaultExtensions.
	Extensions []string

	// Timestamp extracts the capture time for a file. Nil uses the default
	// chain: EXIF DateTimeOriginal, DateTimeDigitized, DateTime, then the
	// filesystem creation time. An error skips the file.
	Timestamp func(path string, info os.FileInfo) (time.Time, error)

	// Cache is an optional extracted-timestamp cache consulted by mtime.
	// If nil, caching is disabled.
	Cache *metacache.Cache
}

// Validate applies defaults for unset options.
func (o *Options) Validate() error {
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	if o.Timestamp == nil {
		o.Timestamp = extractTaken
	}
	return nil
}

// Matches reports whether path has one of the configured extensions.
func (o *Options) Matches(path string) bool {
	for _, ext := range o.Extensions {
		if strings.HasSuffix(strings.ToLower(path), strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
