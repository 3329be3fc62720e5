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
	"fmt"

	"github.com/open-planboard/planboard/cmd/planboard-api/database"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/models"
	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

// GetMachines returns all machines, served from the tiered cache when possible
func GetMachines() (machines []datamodel.Machine, err error) {
	if internal.GetTieredJSON(internal.MachineListKey(), &machines) {
		return machines, nil
	}

	sqlStatement := `SELECT id, name, workCenter, status FROM machineTable ORDER BY name`

	rows, err := database.Query(sqlStatement)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var machine datamodel.Machine
		err = rows.Scan(&machine.Id, &machine.Name, &machine.WorkCenter, &machine.Status)
		if err != nil {
			database.ErrorHandling(sqlStatement, err, false)
			return
		}
		machines = append(machines, machine)
	}
	err = rows.Err()
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}

	internal.SetTieredJSON(internal.MachineListKey(), machines)
	return machines, nil
}

func GetMachine(machineId int) (machine datamodel.Machine, err error) {
	sqlStatement := `SELECT id, name, workCenter, status FROM machineTable WHERE id = $1`

	return scanMachine(database.QueryRow(sqlStatement, machineId))
}

func CreateMachine(request models.CreateMachineRequest) (machine datamodel.Machine, err error) {
	status := request.Status
	if status == "" {
		status = datamodel.MachineStatusActive
	}
	if !datamodel.IsValidMachineStatus(status) {
		return machine, fmt.Errorf("unknown machine status %q", status)
	}

	sqlStatement := `INSERT INTO machineTable (name, workCenter, status) VALUES ($1, $2, $3) RETURNING id, name, workCenter, status`

	machine, err = scanMachine(database.QueryRow(sqlStatement, request.Name, request.WorkCenter, status))
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}

	zap.S().Infof("Created machine %s (%d)", machine.Name, machine.Id)
	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityMachine,
		Operation: datamodel.ChangeOperationInsert,
		Id:        machine.Id,
		Payload:   machine,
	})
	return machine, nil
}

func UpdateMachine(machineId int, request models.UpdateMachineRequest) (machine datamodel.Machine, err error) {
	if request.Status != nil && !datamodel.IsValidMachineStatus(*request.Status) {
		return machine, fmt.Errorf("unknown machine status %q", *request.Status)
	}

	sqlStatement := `
		UPDATE machineTable
		SET name       = COALESCE($2::text, name),
		    workCenter = COALESCE($3::text, workCenter),
		    status     = COALESCE($4::text, status)
		WHERE id = $1
		RETURNING id, name, workCenter, status`

	machine, err = scanMachine(database.QueryRow(sqlStatement, machineId, request.Name, request.WorkCenter, request.Status))
	if err != nil {
		return
	}

	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityMachine,
		Operation: datamodel.ChangeOperationUpdate,
		Id:        machine.Id,
		Payload:   machine,
	})
	return machine, nil
}

func DeleteMachine(machineId int) (err error) {
	sqlStatement := `DELETE FROM machineTable WHERE id = $1`

	tag, err := database.Exec(sqlStatement, machineId)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	if tag.RowsAffected() == 0 {
		return nil // already gone, nothing to announce
	}

	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityMachine,
		Operation: datamodel.ChangeOperationDelete,
		Id:        machineId,
	})
	return nil
}
