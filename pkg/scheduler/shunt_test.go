package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The canonical board scenario: A occupies Machine 1 from 09:00 to 11:00 and
// B (2h) is dropped at 10:00.
func dragConflictFixture(t *testing.T) (*Engine, *fakeRepository, datamodel.Conflict) {
	t.Helper()

	repo := newFakeRepository()
	repo.machines[1] = datamodel.Machine{Id: 1, Name: "Mill 1", Status: datamodel.MachineStatusActive}
	repo.orders[1] = scheduledOrder(1, 1, at(9, 0), at(11, 0))
	repo.orders[2] = backlogOrder(2, 2)

	engine := New(repo)
	result, err := engine.Schedule(context.Background(), 2, 1, at(10, 0), at(12, 0))
	require.NoError(t, err)
	require.NotNil(t, result.Conflict)
	require.Equal(t, 1, result.Conflict.With.OrderId)

	return engine, repo, *result.Conflict
}

func TestShuntRightLeavesIntervalsAdjacent(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntRight)
	require.NoError(t, err)
	require.True(t, result.Placed)
	require.Nil(t, result.Conflict)

	// A is shifted right by proposedEnd - A.begin = 3h: exactly far enough
	// that A starts where B ends.
	shifted := repo.orders[1]
	assert.Equal(t, at(12, 0), *shifted.BeginTimestamp)
	assert.Equal(t, at(14, 0), *shifted.EndTimestamp)

	placed := repo.orders[2]
	assert.Equal(t, at(10, 0), *placed.BeginTimestamp)
	assert.Equal(t, at(12, 0), *placed.EndTimestamp)

	assert.True(t, areTimerangesAdjacent(
		TimeRange{Begin: *placed.BeginTimestamp, End: *placed.EndTimestamp},
		TimeRange{Begin: *shifted.BeginTimestamp, End: *shifted.EndTimestamp}))
}

func TestShuntLeftLeavesIntervalsAdjacent(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntLeft)
	require.NoError(t, err)
	require.True(t, result.Placed)

	// A is shifted left by A.end - proposedBegin = 1h: its end now touches
	// B's begin. Minimal displacement, not a fixed increment.
	shifted := repo.orders[1]
	assert.Equal(t, at(8, 0), *shifted.BeginTimestamp)
	assert.Equal(t, at(10, 0), *shifted.EndTimestamp)

	placed := repo.orders[2]
	assert.Equal(t, at(10, 0), *placed.BeginTimestamp)
	assert.Equal(t, at(12, 0), *placed.EndTimestamp)
}

func TestShuntRightSecondaryConflictAbortsWithoutMutation(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	// Order 3 sits right where A would land.
	repo.orders[3] = scheduledOrder(3, 1, at(12, 0), at(14, 0))

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntRight)
	require.NoError(t, err)
	assert.False(t, result.Placed)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, 3, result.Conflict.With.OrderId)

	// Nothing moved: A keeps its slot, B stays in the backlog.
	assert.Equal(t, at(9, 0), *repo.orders[1].BeginTimestamp)
	assert.Equal(t, at(11, 0), *repo.orders[1].EndTimestamp)
	assert.Equal(t, datamodel.OrderStatusNotScheduled, repo.orders[2].Status)
	assert.Nil(t, repo.orders[2].MachineId)
}

func TestShuntSecondaryConflictAfterCommittedShift(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	// A second blocker inside B's slot that the reported conflict does not
	// name. Shifting A left clears A's overlap, so the shift commits; placing
	// B then runs into order 3.
	repo.orders[3] = scheduledOrder(3, 1, at(11, 0), at(11, 30))

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntLeft)
	require.NoError(t, err)
	assert.False(t, result.Placed)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, 3, result.Conflict.With.OrderId)

	// The shift stays committed, the dragged order stays unplaced: the two
	// are never left overlapping.
	shifted := repo.orders[1]
	assert.Equal(t, at(8, 0), *shifted.BeginTimestamp)
	assert.Equal(t, at(10, 0), *shifted.EndTimestamp)
	assert.Equal(t, datamodel.OrderStatusNotScheduled, repo.orders[2].Status)
	assert.Nil(t, repo.orders[2].MachineId)
}

func TestShuntLeftBlockedByUnavailableHour(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	// Hour 8 is off-time, which is exactly where A would be shifted to.
	repo.unavailable = append(repo.unavailable, datamodel.UnavailabilityEntry{
		MachineId: 1,
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Hour:      8,
	})

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntLeft)
	require.NoError(t, err)
	assert.False(t, result.Placed)
	require.NotNil(t, result.Conflict)
	assert.Equal(t, datamodel.ConflictKindUnavailability, result.Conflict.With.Kind)

	assert.Equal(t, at(9, 0), *repo.orders[1].BeginTimestamp)
	assert.Equal(t, datamodel.OrderStatusNotScheduled, repo.orders[2].Status)
}

func TestShuntCannotResolveUnavailabilityConflict(t *testing.T) {
	repo := newFakeRepository()
	repo.machines[1] = datamodel.Machine{Id: 1, Name: "Mill 1", Status: datamodel.MachineStatusActive}
	repo.orders[2] = backlogOrder(2, 1)
	repo.unavailable = append(repo.unavailable, datamodel.UnavailabilityEntry{
		MachineId: 1,
		Date:      time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Hour:      14,
	})

	engine := New(repo)
	result, err := engine.Schedule(context.Background(), 2, 1, at(14, 0), at(15, 0))
	require.NoError(t, err)
	require.NotNil(t, result.Conflict)

	var validationErr *ValidationError
	_, err = engine.ResolveByShunting(context.Background(), *result.Conflict, ShuntRight)
	require.ErrorAs(t, err, &validationErr)
}

func TestShuntRefusesToMoveRunningOrder(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	running := repo.orders[1]
	running.Status = datamodel.OrderStatusInProgress
	repo.orders[1] = running

	var validationErr *ValidationError
	_, err := engine.ResolveByShunting(context.Background(), conflict, ShuntRight)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "cannot be shifted")
}

func TestShuntWithStaleConflictPlacesDirectly(t *testing.T) {
	engine, repo, conflict := dragConflictFixture(t)

	// A was unscheduled by someone else between the conflict report and the
	// resolution click.
	require.NoError(t, engine.Unschedule(context.Background(), 1))

	result, err := engine.ResolveByShunting(context.Background(), conflict, ShuntRight)
	require.NoError(t, err)
	assert.True(t, result.Placed)
	assert.Equal(t, at(10, 0), *repo.orders[2].BeginTimestamp)
	assert.Equal(t, datamodel.OrderStatusNotScheduled, repo.orders[1].Status)
}

func TestParseShuntDirection(t *testing.T) {
	direction, err := ParseShuntDirection("left")
	require.NoError(t, err)
	assert.Equal(t, ShuntLeft, direction)

	direction, err = ParseShuntDirection("right")
	require.NoError(t, err)
	assert.Equal(t, ShuntRight, direction)

	_, err = ParseShuntDirection("up")
	assert.Error(t, err)
}
