package services

import (
	"context"
	"testing"
	"time"

	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/open-planboard/planboard/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GetUnavailability is the read-through cache for the GET endpoint. The
// scheduling repository must never route through it: an entry cached before an
// hour was blocked would let a placement slip into fresh off-time, so
// postgresRepository.GetUnavailableHours reads via fetchUnavailability only.
func TestGetUnavailabilityServesFromTieredCache(t *testing.T) {
	internal.InitCache("", "", 0, "true")

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	seeded := []datamodel.UnavailabilityEntry{{MachineId: 1, Date: from, Hour: 14}}
	internal.SetTieredJSON(internal.AvailabilityIndexKey(1, from, to), seeded)

	got, err := GetUnavailability(1, from, to)
	require.NoError(t, err)
	assert.Equal(t, seeded, got)
}

func TestSetUnavailabilityRejectsOutOfRangeHours(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	// an out-of-range hour is a validation rejection, not a remote failure
	var validationErr *scheduler.ValidationError

	err := SetUnavailability(context.Background(), 1, date, []int{24})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "out of range")

	err = SetUnavailability(context.Background(), 1, date, []int{-1})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "out of range")
}
