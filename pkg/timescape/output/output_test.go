package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/timescape/pkg/timescape/bucket"
	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// windowResult builds a Result over a year of months with two photos in
// March 2023.
func windowResult(t *testing.T) *Result {
	t.Helper()

	ix := index.New()
	ix.Insert(types.Photo{Path: "/lib/a.jpg", Taken: time.Date(2023, 3, 5, 0, 0, 0, 0, time.Local)})
	ix.Insert(types.Photo{Path: "/lib/b.jpg", Taken: time.Date(2023, 3, 9, 0, 0, 0, 0, time.Local)})

	pivot := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	buckets := bucket.BuildWindow(types.ZoomMonths, pivot, 1, types.Both, ix)
	require.Len(t, buckets, 3)

	return &Result{
		Source:  "/lib",
		Level:   types.ZoomMonths,
		Pivot:   pivot,
		Buckets: buckets,
		Stats: ScanStats{
			FilesWalked: 2,
			Indexed:     2,
			Duration:    250 * time.Millisecond,
		},
	}
}

func TestPlainFormatter_Format(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, windowResult(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	// Header + one row per bucket
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "BUCKET"))
	assert.Contains(t, lines[0], "PHOTOS")

	assert.Contains(t, lines[1], "2022")
	assert.Contains(t, lines[2], "2023")
	assert.Contains(t, lines[3], "2024")

	// 2023 row: 12 month slots, March filled, 2 photos.
	assert.Contains(t, lines[2], "..#.........")
	assert.Contains(t, lines[2], "2")
}

func TestPlainFormatter_EmptyWindow(t *testing.T) {
	formatter := &PlainFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{Source: "/lib"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "BUCKET"))
}

func TestPrettyFormatter_Format(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, windowResult(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/lib")
	assert.Contains(t, out, "months")
	assert.Contains(t, out, "2023")
	assert.Contains(t, out, "Photos in window:")
}

func TestPrettyFormatter_EmptyWindow(t *testing.T) {
	formatter := &PrettyFormatter{}
	var buf bytes.Buffer

	err := formatter.Format(&buf, &Result{Source: "/lib"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Timeline window is empty")
}

func TestBucketLabel(t *testing.T) {
	key := time.Date(2024, 2, 29, 14, 5, 0, 0, time.Local)

	tests := []struct {
		kind types.BucketKind
		want string
	}{
		{types.DecadeOfYears, "2024s"},
		{types.YearOfMonths, "2024"},
		{types.MonthOfDays, "2024-02"},
		{types.DayOfHours, "2024-02-29"},
		{types.HourOfMinutes, "2024-02-29 14:00"},
		{types.MinuteOfSeconds, "2024-02-29 14:05"},
	}

	for _, tt := range tests {
		got := bucketLabel(types.Bucket{Key: key, Kind: tt.kind})
		assert.Equal(t, tt.want, got, "kind %v", tt.kind)
	}
}

func TestRegistry(t *testing.T) {
	names := Available()
	assert.Contains(t, names, "plain")
	assert.Contains(t, names, "pretty")

	f, err := Get("plain")
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = Get("nope")
	assert.Error(t, err)
}

func TestTotalPhotos(t *testing.T) {
	r := windowResult(t)
	assert.Equal(t, 2, r.TotalPhotos())
}
