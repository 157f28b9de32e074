package scan

import (
	"errors"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifTimeLayout is the timestamp format used by EXIF date tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// errNoDateTag indicates that no usable EXIF date tag was found.
var errNoDateTag = errors.New("no usable exif date tag")

// dateTagOrder is the fallback chain for capture-time tags.
var dateTagOrder = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// extractTaken determines the capture time for a file: EXIF tags in fallback
// order, then the filesystem creation time when the EXIF block exists but
// carries no usable date tag. Files without EXIF data at all are skipped.
func extractTaken(path string, info os.FileInfo) (time.Time, error) {
	taken, err := exifTaken(path)
	if err == nil {
		return taken, nil
	}
	if errors.Is(err, errNoDateTag) {
		return getCreateTime(info), nil
	}
	return time.Time{}, err
}

// exifTaken reads the first parseable EXIF date tag from the file.
func exifTaken(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer func() { _ = f.Close() }()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}

	for _, name := range dateTagOrder {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		taken, err := time.ParseInLocation(exifTimeLayout, value, time.Local)
		if err != nil {
			continue
		}
		return taken, nil
	}
	return time.Time{}, errNoDateTag
}
