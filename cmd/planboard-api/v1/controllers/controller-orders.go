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

func GetOrdersHandler(c *gin.Context) {
	var request models.GetOrdersRequest

	err := c.BindQuery(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	orders, err := services.GetOrders(request)
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.GetOrdersResponse{Orders: orders})
}

func GetOrderHandler(c *gin.Context) {
	var request models.OrderUriRequest

	err := c.BindUri(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	order, err := services.GetOrder(request.OrderId)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			helpers.HandleNotFound(c, "order", request.OrderId)
			return
		}
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func CreateOrderHandler(c *gin.Context) {
	var request models.CreateOrderRequest

	err := c.BindJSON(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	order, err := services.CreateOrder(request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func UpdateOrderHandler(c *gin.Context) {
	var uriRequest models.OrderUriRequest
	var request models.UpdateOrderRequest

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

	order, err := services.UpdateOrder(uriRequest.OrderId, request)
	if err != nil {
		if errors.Is(err, scheduler.ErrNotFound) {
			helpers.HandleNotFound(c, "order", uriRequest.OrderId)
			return
		}
		helpers.HandleInvalidInputError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func DeleteOrderHandler(c *gin.Context) {
	var request models.OrderUriRequest

	err := c.BindUri(&request)
	if err != nil {
		helpers.HandleInvalidInputError(c, err)
		return
	}
	if helpers.CheckIfUserIsAllowed(c) != nil {
		return
	}

	err = services.DeleteOrder(request.OrderId)
	if err != nil {
		helpers.HandleInternalServerError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
