package scan

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeExifFixture writes a minimal little-endian TIFF. With a dateTime it
// carries an EXIF sub-IFD holding DateTimeOriginal; with an empty string it
// carries only an ImageWidth entry, so the block exists but has no date tag.
func writeExifFixture(t *testing.T, path, dateTime string) {
	t.Helper()

	var buf []byte
	le := binary.LittleEndian
	u16 := func(v uint16) { buf = le.AppendUint16(buf, v) }
	u32 := func(v uint32) { buf = le.AppendUint32(buf, v) }

	buf = append(buf, 'I', 'I', 0x2a, 0x00)
	u32(8)
	if dateTime == "" {
		u16(1)
		u16(0x0100) // ImageWidth
		u16(3)      // SHORT
		u32(1)
		u32(1)
		u32(0)
	} else {
		u16(1)
		u16(0x8769) // ExifIFDPointer
		u16(4)      // LONG
		u32(1)
		u32(26)
		u32(0)
		// Sub-IFD at offset 26, string payload at 44.
		u16(1)
		u16(0x9003) // DateTimeOriginal
		u16(2)      // ASCII
		u32(uint32(len(dateTime) + 1))
		u32(44)
		u32(0)
		buf = append(buf, dateTime...)
		buf = append(buf, 0)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestExtractTakenReadsExifDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.jpg")
	writeExifFixture(t, path, "2023:05:04 10:20:30")
	info, err := os.Stat(path)
	require.NoError(t, err)

	taken, err := extractTaken(path, info)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 4, 10, 20, 30, 0, time.Local), taken)
}

func TestExtractTakenFallsBackToCreateTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "undated.jpg")
	writeExifFixture(t, path, "")
	info, err := os.Stat(path)
	require.NoError(t, err)

	taken, err := extractTaken(path, info)
	require.NoError(t, err)
	// Fixture was just written, so its creation time is current.
	assert.WithinDuration(t, time.Now(), taken, time.Minute)
}

func TestExtractTakenRejectsFileWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	_, err = extractTaken(path, info)
	assert.Error(t, err)
}
