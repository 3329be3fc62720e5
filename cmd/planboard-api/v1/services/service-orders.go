package services

import (
	"fmt"

	"github.com/open-planboard/planboard/cmd/planboard-api/database"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/models"
	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

// GetOrders lists orders with optional status/machine/time-window filters. The
// window filter keeps orders whose placement overlaps [from, to).
func GetOrders(request models.GetOrdersRequest) (orders []datamodel.OrderEntry, err error) {
	sqlStatement := `SELECT ` + orderColumns + ` FROM orderTable WHERE 1 = 1`
	var args []any

	if request.Status != "" {
		args = append(args, request.Status)
		sqlStatement += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if request.MachineId != nil {
		args = append(args, *request.MachineId)
		sqlStatement += fmt.Sprintf(" AND machineId = $%d", len(args))
	}
	if request.From != nil && request.To != nil {
		args = append(args, *request.From, *request.To)
		sqlStatement += fmt.Sprintf(" AND beginTimestamp < $%d AND endTimestamp > $%d", len(args), len(args)-1)
	}
	sqlStatement += " ORDER BY id"

	rows, err := database.Query(sqlStatement, args...)
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

func GetOrder(orderId int) (order datamodel.OrderEntry, err error) {
	sqlStatement := `SELECT ` + orderColumns + ` FROM orderTable WHERE id = $1`

	return scanOrderRaw(database.QueryRow(sqlStatement, orderId))
}

// CreateOrder adds a backlog order. Orders always start unscheduled; placement
// happens through the scheduling endpoints.
func CreateOrder(request models.CreateOrderRequest) (order datamodel.OrderEntry, err error) {
	sqlStatement := `
		INSERT INTO orderTable (orderNumber, workCenter, status, durationInHours)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + orderColumns

	order, err = scanOrderRaw(database.QueryRow(
		sqlStatement,
		request.OrderNumber,
		request.WorkCenter,
		datamodel.OrderStatusNotScheduled,
		request.DurationInHours))
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}

	zap.S().Infof("Created order %s (%d)", order.OrderNumber, order.Id)
	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityOrder,
		Operation: datamodel.ChangeOperationInsert,
		Id:        order.Id,
		Payload:   order,
	})
	return order, nil
}

// UpdateOrder patches the descriptive fields of an order. Placement fields
// (machine, begin, end) are owned by the scheduling endpoints and cannot be
// touched here.
func UpdateOrder(orderId int, request models.UpdateOrderRequest) (order datamodel.OrderEntry, err error) {
	if request.Status != nil && !datamodel.IsValidOrderStatus(*request.Status) {
		return order, fmt.Errorf("unknown order status %q", *request.Status)
	}
	if request.DurationInHours != nil && *request.DurationInHours <= 0 {
		return order, fmt.Errorf("durationInHours must be positive")
	}

	sqlStatement := `
		UPDATE orderTable
		SET orderNumber          = COALESCE($2::text, orderNumber),
		    workCenter           = COALESCE($3::text, workCenter),
		    status               = COALESCE($4::text, status),
		    durationInHours      = COALESCE($5::double precision, durationInHours),
		    timeRemainingInHours = COALESCE($6::double precision, timeRemainingInHours)
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err = scanOrderRaw(database.QueryRow(
		sqlStatement,
		orderId,
		request.OrderNumber,
		request.WorkCenter,
		request.Status,
		request.DurationInHours,
		request.TimeRemainingInHours))
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

func DeleteOrder(orderId int) (err error) {
	sqlStatement := `DELETE FROM orderTable WHERE id = $1`

	tag, err := database.Exec(sqlStatement, orderId)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityOrder,
		Operation: datamodel.ChangeOperationDelete,
		Id:        orderId,
	})
	return nil
}
