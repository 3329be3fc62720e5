package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/open-planboard/planboard/pkg/scheduler"
)

// orderColumns is the column list every order query selects, in scanOrderRaw order
const orderColumns = `id, orderNumber, workCenter, machineId, beginTimestamp, endTimestamp, productionBegin, productionEnd, status, durationInHours, timeRemainingInHours`

func scanOrderRaw(row pgx.Row) (order datamodel.OrderEntry, err error) {
	var raw datamodel.OrdersRaw
	err = row.Scan(
		&raw.Id,
		&raw.OrderNumber,
		&raw.WorkCenter,
		&raw.MachineId,
		&raw.BeginTimestamp,
		&raw.EndTimestamp,
		&raw.ProductionBegin,
		&raw.ProductionEnd,
		&raw.Status,
		&raw.DurationInHours,
		&raw.TimeRemainingInHours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order, scheduler.ErrNotFound
		}
		return order, err
	}
	return datamodel.OrderFromRaw(raw), nil
}

func scanMachine(row pgx.Row) (machine datamodel.Machine, err error) {
	err = row.Scan(&machine.Id, &machine.Name, &machine.WorkCenter, &machine.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return machine, scheduler.ErrNotFound
		}
		return machine, err
	}
	return machine, nil
}
