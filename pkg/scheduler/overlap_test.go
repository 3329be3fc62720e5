package scheduler

import (
	"testing"
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveRangePrecedence(t *testing.T) {
	begin := at(9, 0)
	end := at(13, 0)

	// remaining work wins over the stored end
	remaining := 1.5
	order := datamodel.OrderEntry{
		BeginTimestamp:       &begin,
		EndTimestamp:         &end,
		TimeRemainingInHours: &remaining,
		DurationInHours:      4,
	}
	effective, ok := EffectiveRange(order)
	require.True(t, ok)
	assert.Equal(t, begin, effective.Begin)
	assert.Equal(t, begin.Add(90*time.Minute), effective.End)

	// without remaining work the stored end is used
	order.TimeRemainingInHours = nil
	effective, ok = EffectiveRange(order)
	require.True(t, ok)
	assert.Equal(t, end, effective.End)

	// zero remaining work falls through to the stored end as well
	zero := 0.0
	order.TimeRemainingInHours = &zero
	effective, ok = EffectiveRange(order)
	require.True(t, ok)
	assert.Equal(t, end, effective.End)

	// without a usable stored end the duration fills in
	order.TimeRemainingInHours = nil
	order.EndTimestamp = nil
	effective, ok = EffectiveRange(order)
	require.True(t, ok)
	assert.Equal(t, begin.Add(4*time.Hour), effective.End)
}

func TestEffectiveRangeUnplacedOrder(t *testing.T) {
	_, ok := EffectiveRange(datamodel.OrderEntry{DurationInHours: 2})
	assert.False(t, ok)

	// a begin without any way to derive a positive end is unusable
	begin := at(9, 0)
	_, ok = EffectiveRange(datamodel.OrderEntry{BeginTimestamp: &begin})
	assert.False(t, ok)
}

func TestFindConflictReturnsNilWhenFree(t *testing.T) {
	conflict := FindConflict(1, 1, TimeRange{at(9, 0), at(11, 0)}, nil, nil)
	assert.Nil(t, conflict)
}

func TestFindConflictIgnoresSelfAndNonOccupying(t *testing.T) {
	self := scheduledOrder(1, 1, at(9, 0), at(11, 0))
	held := scheduledOrder(2, 1, at(9, 0), at(11, 0))
	held.Status = datamodel.OrderStatusOnHold
	done := scheduledOrder(3, 1, at(9, 0), at(11, 0))
	done.Status = datamodel.OrderStatusCompleted

	conflict := FindConflict(1, 1, TimeRange{at(9, 0), at(11, 0)},
		[]datamodel.OrderEntry{self, held, done}, nil)
	assert.Nil(t, conflict)
}

func TestFindConflictDeterministicTieBreak(t *testing.T) {
	proposed := TimeRange{at(9, 0), at(12, 0)}

	early := scheduledOrder(7, 1, at(10, 0), at(11, 0))
	earlier := scheduledOrder(9, 1, at(9, 30), at(10, 30))
	sameBeginLowerId := scheduledOrder(4, 1, at(9, 30), at(11, 30))

	// earliest begin wins, then the lowest order id
	conflict := FindConflict(1, 1, proposed,
		[]datamodel.OrderEntry{early, earlier, sameBeginLowerId}, nil)
	require.NotNil(t, conflict)
	assert.Equal(t, 4, conflict.With.OrderId)

	// an order beats an unavailable hour starting at the same instant
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	conflict = FindConflict(1, 1, proposed,
		[]datamodel.OrderEntry{scheduledOrder(5, 1, at(10, 0), at(11, 0))},
		[]datamodel.UnavailabilityEntry{{MachineId: 1, Date: date, Hour: 10}})
	require.NotNil(t, conflict)
	assert.Equal(t, datamodel.ConflictKindOrder, conflict.With.Kind)
	assert.Equal(t, 5, conflict.With.OrderId)

	// an earlier unavailable hour beats a later order
	conflict = FindConflict(1, 1, proposed,
		[]datamodel.OrderEntry{scheduledOrder(5, 1, at(11, 0), at(12, 0))},
		[]datamodel.UnavailabilityEntry{{MachineId: 1, Date: date, Hour: 10}})
	require.NotNil(t, conflict)
	assert.Equal(t, datamodel.ConflictKindUnavailability, conflict.With.Kind)
}

func TestFindConflictCarriesPlacementContext(t *testing.T) {
	blocking := scheduledOrder(7, 3, at(10, 0), at(11, 0))
	conflict := FindConflict(42, 3, TimeRange{at(9, 0), at(12, 0)},
		[]datamodel.OrderEntry{blocking}, nil)

	require.NotNil(t, conflict)
	assert.Equal(t, 42, conflict.OrderId)
	assert.Equal(t, 3, conflict.MachineId)
	assert.Equal(t, at(9, 0), conflict.ProposedBegin)
	assert.Equal(t, at(12, 0), conflict.ProposedEnd)
	assert.Equal(t, blocking.OrderNumber, conflict.With.OrderNumber)
}
