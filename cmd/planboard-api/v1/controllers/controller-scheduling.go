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

// ScheduleOrderHandler drops an order onto a machine slot. 200 on success,
// 400 on a terminal validation failure, 409 with the conflict descriptor when
// the slot overlaps an existing entry.
func ScheduleOrderHandler(c *gin.Context) {
	var uriRequest models.OrderUriRequest
	var request models.ScheduleOrderRequest

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

	result, order, err := services.ScheduleOrder(c.Request.Context(), uriRequest.OrderId, request)
	if err != nil {
		var validationError *scheduler.ValidationError
		if errors.As(err, &validationError) {
			helpers.HandleValidationError(c, validationError.Reason)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	if result.Conflict != nil {
		helpers.HandleConflict(c, result.Conflict)
		return
	}
	c.JSON(http.StatusOK, models.ScheduleOrderResponse{Order: order})
}

func UnscheduleOrderHandler(c *gin.Context) {
	var uriRequest models.OrderUriRequest

	err := c.BindUri(&uriRequest)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	order, err := services.UnscheduleOrder(c.Request.Context(), uriRequest.OrderId)
	if err != nil {
		var validationError *scheduler.ValidationError
		if errors.As(err, &validationError) {
			helpers.HandleValidationError(c, validationError.Reason)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ScheduleOrderResponse{Order: order})
}

// ShuntHandler resolves a reported conflict by shifting the blocking order
// left or right and retrying the placement. A secondary conflict comes back as
// another 409; the client may not chain shunts server-side.
func ShuntHandler(c *gin.Context) {
	var uriRequest models.OrderUriRequest
	var request models.ShuntRequest

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

	result, order, conflicting, err := services.ResolveShunt(c.Request.Context(), uriRequest.OrderId, request)
	if err != nil {
		var validationError *scheduler.ValidationError
		if errors.As(err, &validationError) {
			helpers.HandleValidationError(c, validationError.Reason)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	if result.Conflict != nil {
		helpers.HandleConflict(c, result.Conflict)
		return
	}
	c.JSON(http.StatusOK, models.ShuntResponse{Order: order, Conflicting: conflicting})
}
