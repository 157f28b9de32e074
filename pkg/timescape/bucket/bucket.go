// Package bucket turns a date range and the photo index into an ordered
// sequence of hierarchical timeline buckets. Building is pure and stateless:
// buckets are cheap views over the index, recomputed on demand.
package bucket

import (
	"time"

	"github.com/jamesainslie/timescape/pkg/timescape/index"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
	"github.com/jamesainslie/timescape/pkg/timescape/types"
)

// Build returns one bucket per calendar parent unit intersecting
// [start, end], ascending by key, each with its full fixed slot range.
// Slots without photos carry nil Items. An inverted range yields an
// empty result, never an error.
func Build(level types.ZoomLevel, start, end time.Time, ix *index.DateIndex) []types.Bucket {
	if start.After(end) {
		logging.Get("bucket").Warn("inverted bucket range",
			"level", level.String(), "start", start, "end", end)
		return nil
	}

	spec := levelSpecs[level]
	kind := level.Kind()

	// Single pass: group matched photos by their timestamp truncated to
	// the slot granularity. Slot lookup below uses the same key, so an
	// absent key uniformly means an empty slot at every level.
	matched := ix.Range(start, end)
	groups := make(map[time.Time][]types.Photo, len(matched))
	for _, p := range matched {
		k := spec.truncate(p.Taken)
		groups[k] = append(groups[k], p)
	}

	var out []types.Bucket
	for key := spec.parentStart(start); !key.After(end); key = addParent(level, key, 1) {
		n := spec.slots(key)
		units := make([]types.BaseUnit, 0, n)
		for i := 0; i < n; i++ {
			units = append(units, types.BaseUnit{
				Type:  spec.unit,
				Value: spec.slotValue(key, i),
				Items: groups[spec.slotKey(key, i)],
			})
		}
		out = append(out, types.Bucket{Key: key, Kind: kind, Units: units})
	}
	return out
}

// WindowRange computes the date range for a window of buckets around a pivot:
// buffer parent units on each side for Both, or a single parent step on one
// side for Pre and Post edge refills.
func WindowRange(level types.ZoomLevel, pivot time.Time, buffer int, opt types.GetOption) (start, end time.Time) {
	if opt == types.Post {
		start = addParent(level, pivot, 1)
	} else {
		start = addParent(level, pivot, -buffer)
	}
	if opt == types.Pre {
		end = addParent(level, pivot, -1)
	} else {
		end = addParent(level, pivot, buffer)
	}
	return start, end
}

// BuildWindow builds the buckets for a window around pivot, combining
// WindowRange and Build.
func BuildWindow(level types.ZoomLevel, pivot time.Time, buffer int, opt types.GetOption, ix *index.DateIndex) []types.Bucket {
	start, end := WindowRange(level, pivot, buffer, opt)
	return Build(level, start, end, ix)
}

// ParentStart snaps t to the start of the parent bucket containing it at the
// given zoom level: decade start for ZoomYears, year start for ZoomMonths,
// and so on.
func ParentStart(level types.ZoomLevel, t time.Time) time.Time {
	return levelSpecs[level].parentStart(t)
}
