package services

import (
	"context"
	"testing"
	"time"

	"github.com/open-planboard/planboard/cmd/planboard-api/v1/models"
	"github.com/open-planboard/planboard/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveShuntRejectsUnknownDirection(t *testing.T) {
	request := models.ShuntRequest{
		Begin:              time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
		End:                time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		Direction:          "sideways",
		MachineId:          1,
		ConflictingOrderId: 2,
	}

	// the bad direction has to surface as a validation rejection so the
	// controller answers 400 instead of 500
	var validationErr *scheduler.ValidationError
	_, _, _, err := ResolveShunt(context.Background(), 1, request)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reason, "sideways")
}
