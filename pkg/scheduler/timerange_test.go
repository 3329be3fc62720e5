package scheduler

import (
	"testing"
	"time"
)

func TestTimerangesOverlapHalfOpen(t *testing.T) {
	first := TimeRange{at(9, 0), at(11, 0)}

	if !timerangesOverlap(first, TimeRange{at(10, 0), at(12, 0)}) {
		t.Error("partial overlap not detected")
	}
	if !timerangesOverlap(first, TimeRange{at(9, 30), at(10, 30)}) {
		t.Error("contained range not detected")
	}
	if !timerangesOverlap(first, TimeRange{at(8, 0), at(13, 0)}) {
		t.Error("containing range not detected")
	}
	if timerangesOverlap(first, TimeRange{at(11, 0), at(13, 0)}) {
		t.Error("touching ranges must not overlap")
	}
	if timerangesOverlap(first, TimeRange{at(7, 0), at(9, 0)}) {
		t.Error("touching ranges must not overlap")
	}
	if timerangesOverlap(first, TimeRange{at(12, 0), at(13, 0)}) {
		t.Error("disjoint ranges must not overlap")
	}
}

func TestIsTimerangeEntirelyInTimerange(t *testing.T) {
	if !isTimerangeEntirelyInTimerange(TimeRange{at(9, 0), at(10, 0)}, TimeRange{at(9, 0), at(11, 0)}) {
		t.Error()
	}
	if isTimerangeEntirelyInTimerange(TimeRange{at(8, 0), at(10, 0)}, TimeRange{at(9, 0), at(11, 0)}) {
		t.Error()
	}
}

func TestIsTimepointInTimerange(t *testing.T) {
	timeRange := TimeRange{at(9, 0), at(11, 0)}

	if !isTimepointInTimerange(at(10, 0), timeRange) {
		t.Error()
	}
	if isTimepointInTimerange(at(9, 0), timeRange) {
		t.Error("begin is exclusive for point checks")
	}
	if isTimepointInTimerange(at(11, 0), timeRange) {
		t.Error()
	}
}

func TestAreTimerangesAdjacent(t *testing.T) {
	if !areTimerangesAdjacent(TimeRange{at(9, 0), at(11, 0)}, TimeRange{at(11, 0), at(12, 0)}) {
		t.Error()
	}
	if !areTimerangesAdjacent(TimeRange{at(11, 0), at(12, 0)}, TimeRange{at(9, 0), at(11, 0)}) {
		t.Error()
	}
	if areTimerangesAdjacent(TimeRange{at(9, 0), at(11, 0)}, TimeRange{at(10, 0), at(12, 0)}) {
		t.Error()
	}
}

func TestOverlapAmount(t *testing.T) {
	first := TimeRange{at(9, 0), at(11, 0)}

	if got := overlapAmount(first, TimeRange{at(10, 0), at(12, 0)}); got != time.Hour {
		t.Errorf("expected 1h, got %s", got)
	}
	if got := overlapAmount(first, TimeRange{at(11, 0), at(12, 0)}); got != 0 {
		t.Errorf("expected 0, got %s", got)
	}
	if got := overlapAmount(first, TimeRange{at(9, 30), at(10, 30)}); got != time.Hour {
		t.Errorf("expected 1h, got %s", got)
	}
}

func TestHourRange(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	blocked := hourRange(date, 14)

	if !blocked.Begin.Equal(time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected begin %s", blocked.Begin)
	}
	if blocked.Duration() != time.Hour {
		t.Errorf("unexpected duration %s", blocked.Duration())
	}
}
