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

package services

import (
	"context"
	"time"

	"github.com/open-planboard/planboard/cmd/planboard-api/database"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/models"
	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/open-planboard/planboard/pkg/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	repo   scheduler.Repository
	engine *scheduler.Engine

	placementOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planboard_placements_total",
		Help: "Placement attempts by outcome (placed, conflict, rejected, error)",
	}, []string{"outcome"})
	conflictsByKind = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planboard_conflicts_total",
		Help: "Reported placement conflicts by kind",
	}, []string{"kind"})
	shuntsByDirection = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planboard_shunts_total",
		Help: "Shunt resolutions by direction and outcome",
	}, []string{"direction", "outcome"})
)

// Setup wires the scheduling engine to the database and registers the change
// feed handlers that keep the tiered caches consistent. Call once on startup,
// after database.Connect and internal.InitCache.
func Setup() {
	repo = &postgresRepository{}
	engine = scheduler.New(repo)

	internal.OnChange(func(event datamodel.ChangeEvent) {
		switch event.Entity {
		case datamodel.ChangeEntityMachine:
			internal.InvalidateTiered(internal.MachineListKey())
		case datamodel.ChangeEntityUnavailability:
			internal.InvalidateAvailabilityIndex()
		}
	})
}

// ScheduleOrder places an order on a machine. A conflict comes back in the
// result, not as an error, so the controller can answer 409 with a descriptor
// the client can hand to ResolveShunt.
func ScheduleOrder(ctx context.Context, orderId int, request models.ScheduleOrderRequest) (result scheduler.PlacementResult, order datamodel.OrderEntry, err error) {
	result, err = engine.Schedule(ctx, orderId, request.MachineId, request.Begin, request.End)
	if err != nil {
		if _, ok := err.(*scheduler.ValidationError); ok {
			placementOutcomes.WithLabelValues("rejected").Inc()
		} else {
			placementOutcomes.WithLabelValues("error").Inc()
		}
		return
	}

	if result.Conflict != nil {
		placementOutcomes.WithLabelValues("conflict").Inc()
		conflictsByKind.WithLabelValues(result.Conflict.With.Kind).Inc()
		return result, order, nil
	}

	placementOutcomes.WithLabelValues("placed").Inc()
	order, err = GetOrder(orderId)
	if err != nil {
		return
	}

	zap.S().Infof("Scheduled order %s on machine %d at %s", order.OrderNumber, request.MachineId, request.Begin)
	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityOrder,
		Operation: datamodel.ChangeOperationUpdate,
		Id:        order.Id,
		Payload:   order,
	})
	return result, order, nil
}

// UnscheduleOrder sends an order back to the backlog
func UnscheduleOrder(ctx context.Context, orderId int) (order datamodel.OrderEntry, err error) {
	err = engine.Unschedule(ctx, orderId)
	if err != nil {
		return
	}

	order, err = GetOrder(orderId)
	if err != nil {
		return
	}

	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityOrder,
		Operation: datamodel.ChangeOperationUpdate,
		Id:        order.Id,
		Payload:   order,
	})
	return order, nil
}

// ResolveShunt shifts the conflicting order aside and retries the placement.
// Both affected orders come back so the client can redraw them without a
// refetch.
func ResolveShunt(ctx context.Context, orderId int, request models.ShuntRequest) (result scheduler.PlacementResult, order datamodel.OrderEntry, conflicting datamodel.OrderEntry, err error) {
	direction, err := scheduler.ParseShuntDirection(request.Direction)
	if err != nil {
		err = &scheduler.ValidationError{Reason: err.Error()}
		return
	}

	conflict := datamodel.Conflict{
		ProposedBegin: request.Begin,
		ProposedEnd:   request.End,
		OrderId:       orderId,
		MachineId:     request.MachineId,
		With: datamodel.ConflictingEntity{
			Kind:    datamodel.ConflictKindOrder,
			OrderId: request.ConflictingOrderId,
		},
	}

	result, err = engine.ResolveByShunting(ctx, conflict, direction)
	if err != nil {
		shuntsByDirection.WithLabelValues(string(direction), "rejected").Inc()
		return
	}
	if result.Conflict != nil {
		shuntsByDirection.WithLabelValues(string(direction), "conflict").Inc()
		conflictsByKind.WithLabelValues(result.Conflict.With.Kind).Inc()
	} else {
		shuntsByDirection.WithLabelValues(string(direction), "resolved").Inc()
	}

	order, err = GetOrder(orderId)
	if err != nil {
		return
	}
	conflicting, err = GetOrder(request.ConflictingOrderId)
	if err != nil {
		return
	}

	for _, changed := range []datamodel.OrderEntry{order, conflicting} {
		internal.PublishChange(datamodel.ChangeEvent{
			Entity:    datamodel.ChangeEntityOrder,
			Operation: datamodel.ChangeOperationUpdate,
			Id:        changed.Id,
			Payload:   changed,
		})
	}
	return result, order, conflicting, nil
}

// postgresRepository backs the scheduling engine with the orderTable,
// machineTable and unavailabilityTable
type postgresRepository struct{}

func (r *postgresRepository) GetMachine(ctx context.Context, machineId int) (datamodel.Machine, error) {
	return GetMachine(machineId)
}

func (r *postgresRepository) GetOrder(ctx context.Context, orderId int) (datamodel.OrderEntry, error) {
	return GetOrder(orderId)
}

func (r *postgresRepository) GetOccupyingOrders(ctx context.Context, machineId int) (orders []datamodel.OrderEntry, err error) {
	sqlStatement := `SELECT ` + orderColumns + ` FROM orderTable WHERE machineId = $1 AND status = ANY($2)`

	rows, err := database.Query(sqlStatement, machineId, []string{datamodel.OrderStatusScheduled, datamodel.OrderStatusInProgress})
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var order datamodel.OrderEntry
		order, err = scanOrderRaw(rows)
		if err != nil {
			database.ErrorHandling(sqlStatement, err, false)
			return
		}
		orders = append(orders, order)
	}
	err = rows.Err()
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	return orders, nil
}

func (r *postgresRepository) GetUnavailableHours(ctx context.Context, machineId int, from time.Time, to time.Time) ([]datamodel.UnavailabilityEntry, error) {
	// widen to whole days: the table stores a midnight date plus an hour.
	// Always an uncached read: the overlap check runs inside the placement
	// critical section and must see an hour blocked moments ago, which the
	// tiered index only learns about after the change feed round-trip.
	dayFrom := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	return fetchUnavailability(machineId, dayFrom, to)
}

func (r *postgresRepository) PersistPlacement(ctx context.Context, orderId int, machineId int, begin time.Time, end time.Time) (err error) {
	sqlStatement := `
		UPDATE orderTable
		SET machineId            = $2,
		    beginTimestamp       = $3,
		    endTimestamp         = $4,
		    productionBegin      = $3,
		    productionEnd        = $4,
		    status               = $5,
		    timeRemainingInHours = NULL
		WHERE id = $1`

	_, err = database.Exec(sqlStatement, orderId, machineId, begin, end, datamodel.OrderStatusScheduled)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	return nil
}

func (r *postgresRepository) PersistUnschedule(ctx context.Context, orderId int) (err error) {
	sqlStatement := `
		UPDATE orderTable
		SET machineId       = NULL,
		    beginTimestamp  = NULL,
		    endTimestamp    = NULL,
		    productionBegin = NULL,
		    productionEnd   = NULL,
		    status          = $2
		WHERE id = $1`

	_, err = database.Exec(sqlStatement, orderId, datamodel.OrderStatusNotScheduled)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	return nil
}
