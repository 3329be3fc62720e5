package models

import (
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
)

type OrderUriRequest struct {
	OrderId int `uri:"orderId" binding:"required"`
}

// GetOrdersRequest filters the backlog/board listing. All filters are
// optional; MachineId and Status narrow the listing, From/To keep only orders
// whose placement overlaps the window.
type GetOrdersRequest struct {
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
	MachineId *int       `form:"machineId"`
	Status    string     `form:"status"`
}

type GetOrdersResponse struct {
	Orders []datamodel.OrderEntry `json:"orders"`
}

type CreateOrderRequest struct {
	OrderNumber     string  `json:"orderNumber" binding:"required"`
	WorkCenter      string  `json:"workCenter"`
	DurationInHours float64 `json:"durationInHours" binding:"required,gt=0"`
}

type UpdateOrderRequest struct {
	OrderNumber          *string  `json:"orderNumber"`
	WorkCenter           *string  `json:"workCenter"`
	Status               *string  `json:"status"`
	DurationInHours      *float64 `json:"durationInHours"`
	TimeRemainingInHours *float64 `json:"timeRemainingInHours"`
}
