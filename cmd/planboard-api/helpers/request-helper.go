package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

func HandleInternalServerError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInternalServerError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}

	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Internal server error",
		"error", erx,
	)

	c.JSON(
		http.StatusInternalServerError,
		gin.H{
			"error":   erx,
			"status":  http.StatusInternalServerError,
			"message": "The server had an internal error.",
		})
}

func HandleInvalidInputError(c *gin.Context, err error) {
	if c == nil {
		panic("HandleInvalidInputError: c is nil")
	}
	if err == nil {
		err = errors.New("unknown error")
	}
	erx := internal.SanitizeString(err.Error())
	zap.S().Errorw(
		"Invalid input error",
		"error", erx,
	)

	c.JSON(
		http.StatusBadRequest,
		gin.H{
			"error":   erx,
			"status":  http.StatusBadRequest,
			"message": "You have provided a wrong input. Please check your parameters.",
		})
}

// HandleValidationError rejects a scheduling request that failed a hard
// precondition. Unlike a conflict there is nothing to resolve; the action is
// discarded.
func HandleValidationError(c *gin.Context, reason string) {
	if c == nil {
		panic("HandleValidationError: c is nil")
	}
	erx := internal.SanitizeString(reason)
	zap.S().Infow(
		"Placement rejected",
		"reason", erx,
	)

	c.JSON(
		http.StatusBadRequest,
		gin.H{
			"error":   erx,
			"status":  http.StatusBadRequest,
			"message": "The placement is not valid.",
		})
}

// HandleConflict answers with 409 and the conflict descriptor so the client
// can offer shift-left / shift-right resolution
func HandleConflict(c *gin.Context, conflict *datamodel.Conflict) {
	if c == nil {
		panic("HandleConflict: c is nil")
	}
	zap.S().Infow(
		"Placement conflict",
		"orderId", conflict.OrderId,
		"machineId", conflict.MachineId,
		"kind", conflict.With.Kind,
	)

	c.JSON(
		http.StatusConflict,
		gin.H{
			"status":   http.StatusConflict,
			"message":  "The requested slot overlaps an existing entry.",
			"conflict": conflict,
		})
}

func HandleNotFound(c *gin.Context, what string, id int) {
	if c == nil {
		panic("HandleNotFound: c is nil")
	}

	c.JSON(
		http.StatusNotFound,
		gin.H{
			"error":   fmt.Sprintf("%s %d not found", what, id),
			"status":  http.StatusNotFound,
			"message": fmt.Sprintf("The requested %s was not found.", what),
			"route":   c.FullPath(),
		})
}

// CheckIfUserIsAllowed checks if the authenticated user may access the board.
// Every basic-auth account on this deployment sees the same board, so only the
// presence of an authenticated identity is verified here.
func CheckIfUserIsAllowed(c *gin.Context) error {
	user := c.MustGet(gin.AuthUserKey)
	if user == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		zap.S().Infof("Anonymous user rejected")
		return fmt.Errorf("anonymous user rejected")
	}
	return nil
}
