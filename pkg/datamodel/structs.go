package datamodel

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Machine is a production machine that orders can be scheduled onto
type Machine struct {
	Name       string `json:"name"`
	WorkCenter string `json:"workCenter"`
	Status     string `json:"status"`
	Id         int    `json:"id"`
}

// OrderEntry contains a production order and its (possibly empty) placement
type OrderEntry struct {
	BeginTimestamp       *time.Time `json:"beginTimestamp"`
	EndTimestamp         *time.Time `json:"endTimestamp"`
	ProductionBegin      *time.Time `json:"productionBegin"`
	ProductionEnd        *time.Time `json:"productionEnd"`
	MachineId            *int       `json:"machineId"`
	TimeRemainingInHours *float64   `json:"timeRemainingInHours"`
	OrderNumber          string     `json:"orderNumber"`
	WorkCenter           string     `json:"workCenter"`
	Status               string     `json:"status"`
	DurationInHours      float64    `json:"durationInHours"`
	Id                   int        `json:"id"`
}

// OrdersRaw is the scan target for order rows, before nullable columns are folded into OrderEntry
type OrdersRaw struct {
	BeginTimestamp       pq.NullTime
	EndTimestamp         pq.NullTime
	ProductionBegin      pq.NullTime
	ProductionEnd        pq.NullTime
	MachineId            sql.NullInt64
	TimeRemainingInHours sql.NullFloat64
	OrderNumber          string
	WorkCenter           string
	Status               string
	DurationInHours      float64
	Id                   int
}

// UnavailabilityEntry marks a single hour of a day during which a machine cannot be scheduled.
// Hour h on date d blocks the interval [d+h:00, d+h+1:00).
type UnavailabilityEntry struct {
	Date      time.Time `json:"date"`
	MachineId int       `json:"machineId"`
	Hour      int       `json:"hour"`
}

// ConflictingEntity describes what a proposed placement collided with:
// either an already scheduled order or an unavailable hour.
type ConflictingEntity struct {
	Begin       time.Time `json:"begin"`
	End         time.Time `json:"end"`
	OrderId     int       `json:"orderId"`     // 0 for unavailable hours
	OrderNumber string    `json:"orderNumber"` // empty for unavailable hours
	Kind        string    `json:"kind"`        // ConflictKindOrder or ConflictKindUnavailability
}

const (
	ConflictKindOrder          = "order"
	ConflictKindUnavailability = "unavailability"
)

// Conflict is returned instead of an error when a placement overlaps something
// recoverable. It carries enough context for the caller to offer shift-left /
// shift-right resolution.
type Conflict struct {
	ProposedBegin time.Time         `json:"proposedBegin"`
	ProposedEnd   time.Time         `json:"proposedEnd"`
	With          ConflictingEntity `json:"with"`
	OrderId       int               `json:"orderId"`
	MachineId     int               `json:"machineId"`
}

// ChangeEvent is published on the change feed after every successful mutation
type ChangeEvent struct {
	Payload   any    `json:"payload,omitempty"`
	Entity    string `json:"entity"`
	Operation string `json:"operation"`
	Id        int    `json:"id"`
}

const (
	ChangeEntityMachine        = "machine"
	ChangeEntityOrder          = "order"
	ChangeEntityUnavailability = "unavailability"

	ChangeOperationInsert = "insert"
	ChangeOperationUpdate = "update"
	ChangeOperationDelete = "delete"
)
