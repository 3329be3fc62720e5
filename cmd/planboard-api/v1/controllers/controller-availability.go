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

func GetUnavailabilityHandler(c *gin.Context) {
	var uriRequest models.MachineUriRequest
	var request models.GetUnavailabilityRequest

	err := c.BindUri(&uriRequest)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	err = c.BindQuery(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	entries, err := services.GetUnavailability(uriRequest.MachineId, request.From, request.To)
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.GetUnavailabilityResponse{Entries: entries})
}

// SetUnavailabilityHandler replaces the blocked hours of a machine on one
// date. Hours already covered by scheduled work are rejected with 400.
func SetUnavailabilityHandler(c *gin.Context) {
	var uriRequest models.MachineUriRequest
	var request models.SetUnavailabilityRequest

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

	err = services.SetUnavailability(c.Request.Context(), uriRequest.MachineId, request.Date, request.Hours)
	if err != nil {
		var validationError *scheduler.ValidationError
		if errors.As(err, &validationError) {
			helpers.HandleValidationError(c, validationError.Reason)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func DeleteUnavailabilityHandler(c *gin.Context) {
	var uriRequest models.MachineUriRequest
	var request models.DeleteUnavailabilityRequest

	err := c.BindUri(&uriRequest)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	err = c.BindQuery(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	err = services.DeleteUnavailability(uriRequest.MachineId, request.Date)
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
