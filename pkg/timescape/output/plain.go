package output

import (
	"bytes"
	"strconv"
	"text/tabwriter"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// PlainFormatter formats the window as a simple tab-separated table.
// It produces plain text output suitable for scripting and piping.
// No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	// Use tabwriter for aligned columns
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	if _, err := tw.Write([]byte("BUCKET\tUNITS\tPHOTOS\n")); err != nil {
		return err
	}

	for _, b := range r.Buckets {
		row := bucketLabel(b) + "\t" + unitStrip(b) + "\t" +
			strconv.Itoa(b.Count()) + "\n"
		if _, err := tw.Write([]byte(row)); err != nil {
			return err
		}
	}

	return tw.Flush()
}

// unitStrip renders one character per unit slot: '#' where the slot has
// photos, '.' where it is covered but empty.
func unitStrip(b types.Bucket) string {
	strip := make([]byte, len(b.Units))
	for i, u := range b.Units {
		if len(u.Items) > 0 {
			strip[i] = '#'
		} else {
			strip[i] = '.'
		}
	}
	return string(strip)
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
