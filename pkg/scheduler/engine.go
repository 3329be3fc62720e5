// Copyright 2024 The planboard authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EagleChen/mapmutex"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Repository implementations when the requested
// machine or order does not exist
var ErrNotFound = errors.New("not found")

// Repository is the persistence collaborator of the engine. Implementations
// must return current data inside a placement critical section; the engine
// re-reads occupancy under the machine lock before every commit.
type Repository interface {
	GetMachine(ctx context.Context, machineId int) (datamodel.Machine, error)
	GetOrder(ctx context.Context, orderId int) (datamodel.OrderEntry, error)

	// GetOccupyingOrders returns every order on the machine whose status
	// occupies a time slot (see datamodel.IsOccupying). No time window is
	// applied on purpose: effective ends are recomputed from remaining work,
	// so a stored-end prefilter could miss conflicts.
	GetOccupyingOrders(ctx context.Context, machineId int) ([]datamodel.OrderEntry, error)

	// GetUnavailableHours returns the unavailability entries of a machine for
	// all dates touched by [from, to)
	GetUnavailableHours(ctx context.Context, machineId int, from time.Time, to time.Time) ([]datamodel.UnavailabilityEntry, error)

	// PersistPlacement writes machine, begin, end, the production mirror
	// columns and the SCHEDULED status in one statement
	PersistPlacement(ctx context.Context, orderId int, machineId int, begin time.Time, end time.Time) error

	// PersistUnschedule clears the placement columns and resets the status to
	// NOT SCHEDULED
	PersistUnschedule(ctx context.Context, orderId int) error
}

// ValidationError is a non-recoverable rejection: the attempted action is
// discarded and no shunt resolution is offered
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PlacementResult is the outcome of a schedule or shunt call. Conflict is set
// instead of an error because an overlap is recoverable via shunting, unlike a
// validation failure.
type PlacementResult struct {
	Conflict *datamodel.Conflict
	Placed   bool
}

// Engine validates and persists placements. Placements on the same machine are
// serialized through a per-machine lock and re-checked against fresh repository
// reads inside the critical section, so the overlap check is authoritative
// within one process.
type Engine struct {
	repository   Repository
	machineLocks *mapmutex.Mutex
}

func New(repository Repository) *Engine {
	return &Engine{
		repository: repository,
		machineLocks: mapmutex.NewCustomizedMapMutex(
			800,
			100000000,
			10,
			1.1,
			0.2), // default configs: maxDelay:  100000000, // 0.1 second baseDelay: 10,        // 10 nanosecond
	}
}

// Schedule validates the proposed placement and persists it on success.
// Validation order: order exists, machine exists and is ACTIVE, work centers
// match, interval is sane, then the overlap check. An overlap is reported as a
// Conflict in the result, not as an error.
func (e *Engine) Schedule(
	ctx context.Context,
	orderId int,
	machineId int,
	begin time.Time,
	end time.Time) (result PlacementResult, err error) {

	order, machine, err := e.validatePlacementRequest(ctx, orderId, machineId, begin, end)
	if err != nil {
		return PlacementResult{}, err
	}

	if !e.machineLocks.TryLock(machine.Id) {
		return PlacementResult{}, fmt.Errorf("could not acquire scheduling lock for machine %d", machine.Id)
	}
	defer e.machineLocks.Unlock(machine.Id)

	return e.placeLocked(ctx, order.Id, machine.Id, TimeRange{Begin: begin, End: end})
}

// Unschedule clears the placement of an order. It never fails validation:
// unscheduling an order that is not scheduled is a no-op in effect.
func (e *Engine) Unschedule(ctx context.Context, orderId int) error {
	order, err := e.repository.GetOrder(ctx, orderId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return newValidationError("order %d not found", orderId)
		}
		return err
	}

	if order.MachineId == nil && order.BeginTimestamp == nil && order.Status == datamodel.OrderStatusNotScheduled {
		zap.S().Debugf("Order %d is already unscheduled, nothing to do", orderId)
		return nil
	}

	return e.repository.PersistUnschedule(ctx, order.Id)
}

// validatePlacementRequest runs the hard validations that precede any overlap
// check. These failures are terminal; no conflict resolution applies.
func (e *Engine) validatePlacementRequest(
	ctx context.Context,
	orderId int,
	machineId int,
	begin time.Time,
	end time.Time) (order datamodel.OrderEntry, machine datamodel.Machine, err error) {

	order, err = e.repository.GetOrder(ctx, orderId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return order, machine, newValidationError("order %d not found", orderId)
		}
		return order, machine, err
	}

	machine, err = e.repository.GetMachine(ctx, machineId)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return order, machine, newValidationError("machine %d not found", machineId)
		}
		return order, machine, err
	}

	if machine.Status != datamodel.MachineStatusActive {
		return order, machine, newValidationError("machine %s is %s and cannot be scheduled", machine.Name, machine.Status)
	}

	if order.WorkCenter != "" && order.WorkCenter != machine.WorkCenter {
		return order, machine, newValidationError(
			"work center mismatch: order %s belongs to %s, machine %s belongs to %s",
			order.OrderNumber,
			order.WorkCenter,
			machine.Name,
			machine.WorkCenter)
	}

	if !end.After(begin) {
		return order, machine, newValidationError("placement end must be after begin")
	}

	return order, machine, nil
}

// placeLocked runs the overlap check against fresh reads and commits on pass.
// The caller must hold the machine lock.
func (e *Engine) placeLocked(ctx context.Context, orderId int, machineId int, proposed TimeRange) (PlacementResult, error) {
	conflict, err := e.checkPlacement(ctx, orderId, machineId, proposed)
	if err != nil {
		return PlacementResult{}, err
	}
	if conflict != nil {
		zap.S().Debugf(
			"Placement of order %d on machine %d rejected: %s conflict at %s",
			orderId,
			machineId,
			conflict.With.Kind,
			conflict.With.Begin)
		return PlacementResult{Conflict: conflict}, nil
	}

	err = e.repository.PersistPlacement(ctx, orderId, machineId, proposed.Begin, proposed.End)
	if err != nil {
		return PlacementResult{}, err
	}
	return PlacementResult{Placed: true}, nil
}

func (e *Engine) checkPlacement(ctx context.Context, orderId int, machineId int, proposed TimeRange) (*datamodel.Conflict, error) {
	occupying, err := e.repository.GetOccupyingOrders(ctx, machineId)
	if err != nil {
		return nil, err
	}

	unavailable, err := e.repository.GetUnavailableHours(ctx, machineId, proposed.Begin, proposed.End)
	if err != nil {
		return nil, err
	}

	return FindConflict(orderId, machineId, proposed, occupying, unavailable), nil
}
