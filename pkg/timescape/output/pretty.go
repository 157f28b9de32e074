package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// PrettyFormatter formats the window with colors and styling using
// lipgloss. It produces a visually appealing output suitable for
// terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTimeline(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}

	return nil
}

// formatHeader builds the header box with library and scan metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	var lines []string

	libraryLabel := LabelStyle.Render("Library:")
	libraryValue := ValueStyle.Render(r.Source)
	lines = append(lines, fmt.Sprintf("%s %s", libraryLabel, libraryValue))

	var infoParts []string

	zoomLabel := LabelStyle.Render("Zoom:")
	zoomValue := ValueStyle.Render(r.Level.String())
	infoParts = append(infoParts, fmt.Sprintf("%s %s", zoomLabel, zoomValue))

	pivotLabel := LabelStyle.Render("Pivot:")
	pivotValue := ValueStyle.Render(r.Pivot.Format("2006-01-02 15:04:05"))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", pivotLabel, pivotValue))

	scannedLabel := LabelStyle.Render("Scanned:")
	scannedValue := ValueStyle.Render(fmt.Sprintf("%s files in %s",
		humanize.Comma(r.Stats.FilesWalked), formatDuration(r.Stats.Duration)))
	infoParts = append(infoParts, fmt.Sprintf("%s %s", scannedLabel, scannedValue))

	lines = append(lines, strings.Join(infoParts, "  "))

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTimeline builds one row per bucket: label, unit strip, count.
func (f *PrettyFormatter) formatTimeline(r *Result) string {
	if len(r.Buckets) == 0 {
		return MutedStyle.Render("  Timeline window is empty\n")
	}

	maxLabelWidth := 0
	for _, b := range r.Buckets {
		if n := len(bucketLabel(b)); n > maxLabelWidth {
			maxLabelWidth = n
		}
	}

	var sb strings.Builder
	for _, b := range r.Buckets {
		label := padLeft(bucketLabel(b), maxLabelWidth)
		if f.containsPivot(b, r) {
			label = PivotStyle.Render(label)
		} else {
			label = BucketStyle.Render(label)
		}

		count := ""
		if n := b.Count(); n > 0 {
			count = CountStyle.Render(humanize.Comma(int64(n)))
		}

		sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", label, f.renderStrip(b), count))
	}
	return sb.String()
}

// renderStrip draws one glyph per unit slot.
func (f *PrettyFormatter) renderStrip(b types.Bucket) string {
	var sb strings.Builder
	for _, u := range b.Units {
		if len(u.Items) > 0 {
			sb.WriteString(FilledStyle.Render("▪"))
		} else {
			sb.WriteString(MutedStyle.Render("·"))
		}
	}
	return sb.String()
}

// containsPivot reports whether the window pivot falls inside bucket b.
func (f *PrettyFormatter) containsPivot(b types.Bucket, r *Result) bool {
	return !r.Pivot.Before(b.Key) && r.Pivot.Before(b.End())
}

// formatFooter builds the footer box with window totals.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	var parts []string

	photosLabel := LabelStyle.Render("Photos in window:")
	photosValue := ValueStyle.Render(humanize.Comma(int64(r.TotalPhotos())))
	parts = append(parts, fmt.Sprintf("%s %s", photosLabel, photosValue))

	indexedLabel := LabelStyle.Render("Indexed:")
	indexedValue := ValueStyle.Render(humanize.Comma(r.Stats.Indexed))
	parts = append(parts, fmt.Sprintf("%s %s", indexedLabel, indexedValue))

	if r.Stats.CacheHits > 0 {
		cacheLabel := LabelStyle.Render("Cache hits:")
		cacheValue := MutedStyle.Render(humanize.Comma(r.Stats.CacheHits))
		parts = append(parts, fmt.Sprintf("%s %s", cacheLabel, cacheValue))
	}

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings renders scan warnings.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(WarningStyle.Render("warning: " + w))
		sb.WriteString("\n")
	}
	return sb.String()
}

// padLeft pads s with spaces on the left to the given width.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
