package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/open-planboard/planboard/cmd/planboard-api/v1/controllers"
	"go.uber.org/zap"
)

// SetupRestAPI initializes the REST API and starts listening
func SetupRestAPI(accounts gin.Accounts, version string) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - Logs to stdout.
	//   - RFC3339 with UTC time format.
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Healthcheck
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "online")
	})

	apiString := fmt.Sprintf("/api/v%s", version)

	v1 := router.Group(apiString, gin.BasicAuth(accounts))
	{
		v1.GET("/machines", controllers.GetMachinesHandler)
		v1.POST("/machines", controllers.CreateMachineHandler)
		v1.GET("/machines/:machineId", controllers.GetMachineHandler)
		v1.PATCH("/machines/:machineId", controllers.UpdateMachineHandler)
		v1.DELETE("/machines/:machineId", controllers.DeleteMachineHandler)

		v1.GET("/machines/:machineId/unavailability", controllers.GetUnavailabilityHandler)
		v1.PUT("/machines/:machineId/unavailability", controllers.SetUnavailabilityHandler)
		v1.DELETE("/machines/:machineId/unavailability", controllers.DeleteUnavailabilityHandler)

		v1.GET("/orders", controllers.GetOrdersHandler)
		v1.POST("/orders", controllers.CreateOrderHandler)
		v1.GET("/orders/:orderId", controllers.GetOrderHandler)
		v1.PATCH("/orders/:orderId", controllers.UpdateOrderHandler)
		v1.DELETE("/orders/:orderId", controllers.DeleteOrderHandler)

		v1.POST("/orders/:orderId/schedule", controllers.ScheduleOrderHandler)
		v1.POST("/orders/:orderId/unschedule", controllers.UnscheduleOrderHandler)
		v1.POST("/orders/:orderId/shunt", controllers.ShuntHandler)
	}

	err := router.Run(":80")
	if err != nil {
		zap.S().Fatalf("Failed to start REST API: %s", err)
	}
}
