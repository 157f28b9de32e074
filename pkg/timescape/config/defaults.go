// Package config provides configuration management for the timescape
// timeline browser.
package config

// Default configuration values for timescape.
const (
	// DefaultLibraryPath is the photo library scanned when none is specified.
	DefaultLibraryPath = "~/Pictures"

	// DefaultBufferSize is the number of buckets kept on each side of the
	// timeline pivot.
	DefaultBufferSize = 3

	// DefaultMaxDepth is the directory recursion limit for library scans.
	DefaultMaxDepth = 32

	// DefaultZoom is the zoom level the timeline opens at.
	DefaultZoom = "years"
)

// DefaultExtensions contains the image extensions indexed by default.
var DefaultExtensions = []string{".jpg", ".jpeg"}
