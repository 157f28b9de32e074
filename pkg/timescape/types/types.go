// Package types provides core data types for the timescape timeline engine.
// It defines the photo record, the zoom level and bucket enumerations, and
// the bucket/base-unit view structures handed to consumers.
package types

import (
	"time"
)

// Photo is a single timestamped item discovered by a scan.
// It is immutable once created and owned by the index after insertion.
type Photo struct {
	// Path is the absolute path to the image file.
	Path string `json:"path"`

	// Taken is the capture time extracted from metadata, or the best
	// available fallback.
	Taken time.Time `json:"taken"`
}

// ZoomLevel identifies the granularity of the timeline window.
// Levels form a total order; adjacent levels are reachable by a single
// In or Out step only.
type ZoomLevel int

// Zoom levels from widest to narrowest.
const (
	ZoomYears ZoomLevel = iota
	ZoomMonths
	ZoomDays
	ZoomHours
	ZoomMinutes
	ZoomSeconds
)

// String returns the human-readable name of the zoom level.
func (z ZoomLevel) String() string {
	switch z {
	case ZoomYears:
		return "years"
	case ZoomMonths:
		return "months"
	case ZoomDays:
		return "days"
	case ZoomHours:
		return "hours"
	case ZoomMinutes:
		return "minutes"
	case ZoomSeconds:
		return "seconds"
	default:
		return "unknown"
	}
}

// In returns the next narrower zoom level, clamped at ZoomSeconds.
func (z ZoomLevel) In() ZoomLevel {
	if z >= ZoomSeconds {
		return ZoomSeconds
	}
	return z + 1
}

// Out returns the next wider zoom level, clamped at ZoomYears.
func (z ZoomLevel) Out() ZoomLevel {
	if z <= ZoomYears {
		return ZoomYears
	}
	return z - 1
}

// Kind returns the bucket kind produced at this zoom level.
func (z ZoomLevel) Kind() BucketKind {
	switch z {
	case ZoomYears:
		return DecadeOfYears
	case ZoomMonths:
		return YearOfMonths
	case ZoomDays:
		return MonthOfDays
	case ZoomHours:
		return DayOfHours
	case ZoomMinutes:
		return HourOfMinutes
	default:
		return MinuteOfSeconds
	}
}

// ParseZoomLevel parses a zoom level name as used in config and CLI flags.
func ParseZoomLevel(s string) (ZoomLevel, bool) {
	switch s {
	case "years":
		return ZoomYears, true
	case "months":
		return ZoomMonths, true
	case "days":
		return ZoomDays, true
	case "hours":
		return ZoomHours, true
	case "minutes":
		return ZoomMinutes, true
	case "seconds":
		return ZoomSeconds, true
	default:
		return ZoomYears, false
	}
}

// UnitType identifies the granularity of a single slot inside a bucket.
type UnitType int

// Base unit granularities.
const (
	UnitYear UnitType = iota
	UnitMonth
	UnitDay
	UnitHour
	UnitMinute
	UnitSecond
)

// String returns the human-readable name of the unit type.
func (u UnitType) String() string {
	switch u {
	case UnitYear:
		return "year"
	case UnitMonth:
		return "month"
	case UnitDay:
		return "day"
	case UnitHour:
		return "hour"
	case UnitMinute:
		return "minute"
	case UnitSecond:
		return "second"
	default:
		return "unknown"
	}
}

// BucketKind identifies the shape of a timeline bucket. Each kind
// corresponds 1:1 with a zoom level.
type BucketKind int

// Bucket kinds from widest to narrowest.
const (
	DecadeOfYears BucketKind = iota
	YearOfMonths
	MonthOfDays
	DayOfHours
	HourOfMinutes
	MinuteOfSeconds
)

// String returns the human-readable name of the bucket kind.
func (k BucketKind) String() string {
	switch k {
	case DecadeOfYears:
		return "decade"
	case YearOfMonths:
		return "year"
	case MonthOfDays:
		return "month"
	case DayOfHours:
		return "day"
	case HourOfMinutes:
		return "hour"
	case MinuteOfSeconds:
		return "minute"
	default:
		return "unknown"
	}
}

// UnitType returns the granularity of the slots inside a bucket of this kind.
func (k BucketKind) UnitType() UnitType {
	switch k {
	case DecadeOfYears:
		return UnitYear
	case YearOfMonths:
		return UnitMonth
	case MonthOfDays:
		return UnitDay
	case DayOfHours:
		return UnitHour
	case HourOfMinutes:
		return UnitMinute
	default:
		return UnitSecond
	}
}

// BaseUnit is one slot inside a bucket: a single year of a decade, a single
// day of a month, and so on. Items is nil when no photos fall into the slot;
// nil is the "no data" signal, distinct from an empty slice.
type BaseUnit struct {
	// Type is the granularity of this slot.
	Type UnitType `json:"type"`

	// Value is the slot's position within its parent: year number for
	// UnitYear, 1-12 for UnitMonth, 1-31 for UnitDay, 0-23 for UnitHour,
	// 0-59 for UnitMinute and UnitSecond.
	Value int `json:"value"`

	// Items holds the photos whose timestamp falls into this slot,
	// ascending by capture time, or nil when there are none.
	Items []Photo `json:"items,omitempty"`
}

// Bucket is one calendar-aligned unit of the timeline window at the current
// zoom level: a decade of years, a year of months, a month of days, etc.
// Units is always fully populated; empty slots carry nil Items.
// Buckets are views over the index and must not be mutated by consumers.
type Bucket struct {
	// Key is the start of the bucket's calendar span: decade start,
	// year start, month start, day start, hour start or minute start.
	Key time.Time `json:"key"`

	// Kind is the shape of this bucket.
	Kind BucketKind `json:"kind"`

	// Units are the fixed slots of the bucket in ascending order.
	Units []BaseUnit `json:"units"`
}

// End returns the exclusive end of the bucket's span: Key advanced by
// len(Units) steps of the base unit granularity. Advancement is calendar
// aware so month lengths and leap years are handled exactly.
func (b Bucket) End() time.Time {
	n := len(b.Units)
	switch b.Kind {
	case DecadeOfYears:
		return b.Key.AddDate(n, 0, 0)
	case YearOfMonths:
		return b.Key.AddDate(0, n, 0)
	case MonthOfDays:
		return b.Key.AddDate(0, 0, n)
	case DayOfHours:
		// A full day is one calendar day, not 24 wall-clock hours, so
		// DST-transition days still end at the next midnight.
		return b.Key.AddDate(0, 0, 1)
	case HourOfMinutes:
		return b.Key.Add(time.Duration(n) * time.Minute)
	default:
		return b.Key.Add(time.Duration(n) * time.Second)
	}
}

// Duration returns the bucket's calendar span.
func (b Bucket) Duration() time.Duration {
	return b.End().Sub(b.Key)
}

// Count returns the total number of photos across all slots.
func (b Bucket) Count() int {
	total := 0
	for _, u := range b.Units {
		total += len(u.Items)
	}
	return total
}

// GetOption selects which side of the pivot a window build covers.
type GetOption int

// Window build directions.
const (
	// Both builds bufferSize parent units on each side of the pivot.
	Both GetOption = iota

	// Pre builds only buckets before the pivot's parent unit.
	Pre

	// Post builds only buckets after the pivot's parent unit.
	Post
)

// JumpRequest is a one-shot instruction to scroll the view to Target once
// the matching bucket is realized in the window. The consumer clears Active
// after satisfying it.
type JumpRequest struct {
	Active bool      `json:"active"`
	Target time.Time `json:"target"`
}
