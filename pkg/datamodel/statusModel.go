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

package datamodel

const (
	// OrderStatusNotScheduled means that the order sits in the backlog without a machine or time slot
	OrderStatusNotScheduled = "NOT SCHEDULED"

	// OrderStatusScheduled means that the order has a machine and a time slot, but production has not started
	OrderStatusScheduled = "SCHEDULED"

	// OrderStatusInProgress means that the order is currently being produced.
	// This status is set by shop-floor reporting, never by the scheduler, but a
	// running order still occupies its machine for overlap purposes.
	OrderStatusInProgress = "IN PROGRESS"

	// OrderStatusCompleted means that production for the order has finished
	OrderStatusCompleted = "COMPLETED"

	// OrderStatusOnHold means that the order is paused and does not occupy a machine
	OrderStatusOnHold = "ON HOLD"
)

const (
	// MachineStatusActive means that the machine is available as a scheduling target
	MachineStatusActive = "ACTIVE"

	// MachineStatusInactive means that the machine is switched off and cannot be scheduled
	MachineStatusInactive = "INACTIVE"

	// MachineStatusMaintenance means that the machine is under maintenance and cannot be scheduled
	MachineStatusMaintenance = "MAINTENANCE"
)

// IsOccupying reports whether an order in the given status blocks its machine's
// time slot. Scheduled and running orders occupy; backlog, held and completed
// orders do not.
func IsOccupying(orderStatus string) bool {
	return orderStatus == OrderStatusScheduled || orderStatus == OrderStatusInProgress
}

// IsValidOrderStatus reports whether the given string is a known order status
func IsValidOrderStatus(orderStatus string) bool {
	switch orderStatus {
	case OrderStatusNotScheduled, OrderStatusScheduled, OrderStatusInProgress, OrderStatusCompleted, OrderStatusOnHold:
		return true
	}
	return false
}

// IsValidMachineStatus reports whether the given string is a known machine status
func IsValidMachineStatus(machineStatus string) bool {
	switch machineStatus {
	case MachineStatusActive, MachineStatusInactive, MachineStatusMaintenance:
		return true
	}
	return false
}
