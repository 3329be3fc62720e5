package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// testRouter skips the basic-auth middleware but still provides the
// authenticated identity the handlers check for
func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(gin.AuthUserKey, "planner")
	})
	return router
}

func TestShuntHandlerAnswers400OnUnknownDirection(t *testing.T) {
	router := testRouter()
	router.POST("/orders/:orderId/shunt", ShuntHandler)

	body := `{
		"begin": "2024-01-10T10:00:00Z",
		"end": "2024-01-10T12:00:00Z",
		"direction": "sideways",
		"machineId": 1,
		"conflictingOrderId": 2
	}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/orders/1/shunt", strings.NewReader(body))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "sideways")
}

func TestSetUnavailabilityHandlerAnswers400OnOutOfRangeHour(t *testing.T) {
	router := testRouter()
	router.PUT("/machines/:machineId/unavailability", SetUnavailabilityHandler)

	body := `{"date": "2024-01-10T00:00:00Z", "hours": [24]}`
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/machines/1/unavailability", strings.NewReader(body))
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "out of range")
}
