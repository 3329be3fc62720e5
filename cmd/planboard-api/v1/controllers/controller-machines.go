package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-planboard/planboard/cmd/planboard-api/helpers"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/models"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/services"
	"github.com/open-planboard/planboard/pkg/scheduler"
)

func GetMachinesHandler(c *gin.Context) {
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	machines, err := services.GetMachines()
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.GetMachinesResponse{Machines: machines})
}

func GetMachineHandler(c *gin.Context) {
	var request models.MachineUriRequest

	err := c.BindUri(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	machine, err := services.GetMachine(request.MachineId)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			helpers.HandleNotFound(c, "machine", request.MachineId)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

func CreateMachineHandler(c *gin.Context) {
	var request models.CreateMachineRequest

	err := c.BindJSON(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	machine, err := services.CreateMachine(request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	c.JSON(http.StatusCreated, machine)
}

func UpdateMachineHandler(c *gin.Context) {
	var uriRequest models.MachineUriRequest
	var request models.UpdateMachineRequest

	err := c.BindUri(&uriRequest)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	err = c.BindJSON(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	machine, err := services.UpdateMachine(uriRequest.MachineId, request)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			helpers.HandleNotFound(c, "machine", uriRequest.MachineId)
			return
		}
		helpers.HandleInvalidInputError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

func DeleteMachineHandler(c *gin.Context) {
	var request models.MachineUriRequest

	err := c.BindUri(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	err = services.DeleteMachine(request.MachineId)
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
