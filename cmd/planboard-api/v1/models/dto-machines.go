package models

import "github.com/open-planboard/planboard/pkg/datamodel"

type MachineUriRequest struct {
	MachineId int `uri:"machineId" binding:"required"`
}

type GetMachinesResponse struct {
	Machines []datamodel.Machine `json:"machines"`
}

type CreateMachineRequest struct {
	Name       string `json:"name" binding:"required"`
	WorkCenter string `json:"workCenter"`
	Status     string `json:"status"`
}

type UpdateMachineRequest struct {
	Name       *string `json:"name"`
	WorkCenter *string `json:"workCenter"`
	Status     *string `json:"status"`
}
