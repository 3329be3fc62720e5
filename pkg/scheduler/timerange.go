package scheduler

import (
	"time"
)

// TimeRange contains a half-open time range [Begin, End)
type TimeRange struct {
	Begin time.Time
	End   time.Time
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Begin)
}

// timerangesOverlap is the half-open overlap test used uniformly for
// order-vs-order and order-vs-unavailable-hour checks
func timerangesOverlap(first TimeRange, second TimeRange) bool {
	return first.Begin.Before(second.End) && first.End.After(second.Begin)
}

func isTimerangeEntirelyInTimerange(first TimeRange, second TimeRange) bool {
	if (first.Begin.After(second.Begin) || first.Begin.Equal(second.Begin)) && (first.End.Before(second.End) || first.End.Equal(second.End)) {
		return true
	}
	return false
}

func isTimepointInTimerange(timestamp time.Time, timeRange TimeRange) bool {
	return timestamp.After(timeRange.Begin) && timestamp.Before(timeRange.End)
}

// areTimerangesAdjacent reports whether two ranges touch without overlapping
func areTimerangesAdjacent(first TimeRange, second TimeRange) bool {
	return first.End.Equal(second.Begin) || second.End.Equal(first.Begin)
}

// overlapAmount returns the length of the intersection of two ranges, or zero
// if they do not overlap
func overlapAmount(first TimeRange, second TimeRange) time.Duration {
	begin := first.Begin
	if second.Begin.After(begin) {
		begin = second.Begin
	}
	end := first.End
	if second.End.Before(end) {
		end = second.End
	}
	if !end.After(begin) {
		return 0
	}
	return end.Sub(begin)
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// hourRange converts an unavailable hour on a date into its blocked interval
func hourRange(date time.Time, hour int) TimeRange {
	begin := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
	return TimeRange{Begin: begin, End: begin.Add(time.Hour)}
}
