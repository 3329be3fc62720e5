package models

import (
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
)

type GetUnavailabilityRequest struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}

type GetUnavailabilityResponse struct {
	Entries []datamodel.UnavailabilityEntry `json:"entries"`
}

// SetUnavailabilityRequest replaces the unavailable hours of a machine on one
// date. An empty hour list clears the date.
type SetUnavailabilityRequest struct {
	Date  time.Time `json:"date" binding:"required"`
	Hours []int     `json:"hours"`
}

type DeleteUnavailabilityRequest struct {
	Date time.Time `form:"date" binding:"required"`
}
