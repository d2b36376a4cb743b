package domain

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals (aEnd == bStart) do not
// overlap: the end boundary is exclusive. This single predicate covers
// B starting inside A, B ending inside A and full containment either way;
// the repository mirrors it in its SQL filter and the validator reuses it
// for in-memory post-filtering.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DayBounds returns the half-open [00:00, next 00:00) window containing t,
// in t's location. Used for day-bucketed schedule queries.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
