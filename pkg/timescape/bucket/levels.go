package bucket

import (
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// levelSpec describes how one zoom level carves time into parent buckets and
// fixed slots. Grouping and slot lookup share the same composite key: an item
// timestamp truncated to the slot granularity.
type levelSpec struct {
	unit types.UnitType

	// parentStart snaps a time to the start of the parent bucket containing it.
	parentStart func(t time.Time) time.Time

	// slots returns the slot count for a parent key. Fixed for every level
	// except MonthOfDays, which uses the month's actual day count.
	slots func(key time.Time) int

	// slotKey returns the composite key for slot i of a parent.
	slotKey func(key time.Time, i int) time.Time

	// slotValue returns the BaseUnit value for slot i of a parent.
	slotValue func(key time.Time, i int) int

	// truncate maps an item timestamp to its slot's composite key.
	truncate func(t time.Time) time.Time
}

// daysInMonth returns the calendar-correct day count of the month containing t.
func daysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

var levelSpecs = map[types.ZoomLevel]levelSpec{
	types.ZoomYears: {
		unit: types.UnitYear,
		parentStart: func(t time.Time) time.Time {
			decade := t.Year() - t.Year()%10
			return time.Date(decade, 1, 1, 0, 0, 0, 0, t.Location())
		},
		slots: func(time.Time) int { return 10 },
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year()+i, 1, 1, 0, 0, 0, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return key.Year() + i },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		},
	},
	types.ZoomMonths: {
		unit: types.UnitMonth,
		parentStart: func(t time.Time) time.Time {
			return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
		},
		slots: func(time.Time) int { return 12 },
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year(), time.Month(i+1), 1, 0, 0, 0, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return i + 1 },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		},
	},
	types.ZoomDays: {
		unit: types.UnitDay,
		parentStart: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		},
		slots: daysInMonth,
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year(), key.Month(), i+1, 0, 0, 0, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return i + 1 },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		},
	},
	types.ZoomHours: {
		unit: types.UnitHour,
		parentStart: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		},
		slots: func(time.Time) int { return 24 },
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year(), key.Month(), key.Day(), i, 0, 0, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return i },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		},
	},
	types.ZoomMinutes: {
		unit: types.UnitMinute,
		parentStart: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
		},
		slots: func(time.Time) int { return 60 },
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year(), key.Month(), key.Day(), key.Hour(), i, 0, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return i },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
		},
	},
	types.ZoomSeconds: {
		unit: types.UnitSecond,
		parentStart: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
		},
		slots: func(time.Time) int { return 60 },
		slotKey: func(key time.Time, i int) time.Time {
			return time.Date(key.Year(), key.Month(), key.Day(), key.Hour(), key.Minute(), i, 0, key.Location())
		},
		slotValue: func(key time.Time, i int) int { return i },
		truncate: func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
		},
	},
}

// addParent advances t by n parent units of the given zoom level using
// calendar-aware arithmetic. Negative n steps backwards.
func addParent(level types.ZoomLevel, t time.Time, n int) time.Time {
	switch level {
	case types.ZoomYears:
		return t.AddDate(10*n, 0, 0)
	case types.ZoomMonths:
		return t.AddDate(n, 0, 0)
	case types.ZoomDays:
		return t.AddDate(0, n, 0)
	case types.ZoomHours:
		return t.AddDate(0, 0, n)
	case types.ZoomMinutes:
		return t.Add(time.Duration(n) * time.Hour)
	default:
		return t.Add(time.Duration(n) * time.Minute)
	}
}
