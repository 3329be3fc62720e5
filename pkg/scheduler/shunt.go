package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

// ShuntDirection selects whether the conflicting order is shifted earlier or
// later in time
type ShuntDirection string

const (
	ShuntLeft  ShuntDirection = "left"
	ShuntRight ShuntDirection = "right"
)

func ParseShuntDirection(s string) (ShuntDirection, error) {
	switch ShuntDirection(s) {
	case ShuntLeft, ShuntRight:
		return ShuntDirection(s), nil
	}
	return "", fmt.Errorf("unknown shunt direction %q", s)
}

// ResolveByShunting resolves an order-vs-order conflict by shifting the
// conflicting, already scheduled order just far enough in the requested
// direction that its interval becomes adjacent to the proposed one:
//
//	left:  shift amount = conflicting end - proposed begin
//	right: shift amount = proposed end - conflicting begin
//
// The shifted placement is validated before anything persists; a secondary
// conflict aborts the resolution with that conflict and no mutation. This is
// strictly single-hop: the engine never cascades into further shunts.
//
// After a committed shift the original placement runs as a second, separately
// validated step. If that step finds a new conflict the shift stays committed,
// the dragged order stays unplaced, and the conflict is reported; the two
// orders are never left overlapping.
func (e *Engine) ResolveByShunting(
	ctx context.Context,
	conflict datamodel.Conflict,
	direction ShuntDirection) (result PlacementResult, err error) {

	if conflict.With.Kind != datamodel.ConflictKindOrder {
		return PlacementResult{}, newValidationError("unavailable hours cannot be shifted; pick a different slot")
	}

	proposed := TimeRange{Begin: conflict.ProposedBegin, End: conflict.ProposedEnd}

	// The dragged order gets the full hard validation again: the conflict
	// descriptor may be minutes old and the machine or order may have changed.
	_, machine, err := e.validatePlacementRequest(ctx, conflict.OrderId, conflict.MachineId, proposed.Begin, proposed.End)
	if err != nil {
		return PlacementResult{}, err
	}

	blocking, err := e.repository.GetOrder(ctx, conflict.With.OrderId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return PlacementResult{}, newValidationError("conflicting order %d no longer exists", conflict.With.OrderId)
		}
		return PlacementResult{}, err
	}

	if !e.machineLocks.TryLock(machine.Id) {
		return PlacementResult{}, fmt.Errorf("could not acquire scheduling lock for machine %d", machine.Id)
	}
	defer e.machineLocks.Unlock(machine.Id)

	effective, occupies := EffectiveRange(blocking)
	stale := !occupies ||
		blocking.MachineId == nil ||
		*blocking.MachineId != machine.Id ||
		!datamodel.IsOccupying(blocking.Status)
	if stale {
		// The conflict evaporated since it was reported; just place the order.
		zap.S().Debugf("Conflict with order %d is stale, placing order %d directly", blocking.Id, conflict.OrderId)
		return e.placeLocked(ctx, conflict.OrderId, machine.Id, proposed)
	}

	if blocking.Status != datamodel.OrderStatusScheduled {
		return PlacementResult{}, newValidationError(
			"order %s is %s and cannot be shifted",
			blocking.OrderNumber,
			blocking.Status)
	}

	var shifted TimeRange
	switch direction {
	case ShuntLeft:
		amount := effective.End.Sub(proposed.Begin)
		shifted = TimeRange{Begin: effective.Begin.Add(-amount), End: effective.End.Add(-amount)}
	case ShuntRight:
		amount := proposed.End.Sub(effective.Begin)
		shifted = TimeRange{Begin: effective.Begin.Add(amount), End: effective.End.Add(amount)}
	default:
		return PlacementResult{}, newValidationError("unknown shunt direction %q", direction)
	}

	if !timerangesOverlap(proposed, effective) {
		// No overlap left to clear; place the order without moving anything.
		return e.placeLocked(ctx, conflict.OrderId, machine.Id, proposed)
	}

	secondary, err := e.checkPlacement(ctx, blocking.Id, machine.Id, shifted)
	if err != nil {
		return PlacementResult{}, err
	}
	if secondary != nil {
		zap.S().Infof(
			"Shunting order %d %s would collide with %s at %s, aborting resolution",
			blocking.Id,
			direction,
			secondary.With.Kind,
			secondary.With.Begin)
		return PlacementResult{Conflict: secondary}, nil
	}

	err = e.repository.PersistPlacement(ctx, blocking.Id, machine.Id, shifted.Begin, shifted.End)
	if err != nil {
		return PlacementResult{}, err
	}

	return e.placeLocked(ctx, conflict.OrderId, machine.Id, proposed)
}
