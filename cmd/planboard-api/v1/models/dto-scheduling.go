package models

import (
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
)

type ScheduleOrderRequest struct {
	Begin     time.Time `json:"begin" binding:"required"`
	End       time.Time `json:"end" binding:"required"`
	MachineId int       `json:"machineId" binding:"required"`
}

type ScheduleOrderResponse struct {
	Order datamodel.OrderEntry `json:"order"`
}

// ShuntRequest asks the resolver to shift the conflicting order out of the way
// and then retry the original placement. It carries the conflict descriptor
// the 409 response returned, so the resolver can re-validate against current
// data instead of trusting the client.
type ShuntRequest struct {
	Begin              time.Time `json:"begin" binding:"required"`
	End                time.Time `json:"end" binding:"required"`
	Direction          string    `json:"direction" binding:"required"`
	MachineId          int       `json:"machineId" binding:"required"`
	ConflictingOrderId int       `json:"conflictingOrderId" binding:"required"`
}

type ShuntResponse struct {
	Order       datamodel.OrderEntry `json:"order"`
	Conflicting datamodel.OrderEntry `json:"conflicting"`
}
