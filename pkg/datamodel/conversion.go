package datamodel

// OrderFromRaw folds the nullable columns of a scanned order row into an OrderEntry
func OrderFromRaw(raw OrdersRaw) (order OrderEntry) {
	order = OrderEntry{
		Id:              raw.Id,
		OrderNumber:     raw.OrderNumber,
		WorkCenter:      raw.WorkCenter,
		Status:          raw.Status,
		DurationInHours: raw.DurationInHours,
	}
	if raw.MachineId.Valid {
		machineId := int(raw.MachineId.Int64)
		order.MachineId = &machineId
	}
	if raw.BeginTimestamp.Valid {
		begin := raw.BeginTimestamp.Time
		order.BeginTimestamp = &begin
	}
	if raw.EndTimestamp.Valid {
		end := raw.EndTimestamp.Time
		order.EndTimestamp = &end
	}
	if raw.ProductionBegin.Valid {
		begin := raw.ProductionBegin.Time
		order.ProductionBegin = &begin
	}
	if raw.ProductionEnd.Valid {
		end := raw.ProductionEnd.Time
		order.ProductionEnd = &end
	}
	if raw.TimeRemainingInHours.Valid {
		remaining := raw.TimeRemainingInHours.Float64
		order.TimeRemainingInHours = &remaining
	}
	return order
}
