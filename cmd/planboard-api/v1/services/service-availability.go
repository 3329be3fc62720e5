package services

import (
	"context"
	"fmt"
	"time"

	"github.com/open-planboard/planboard/cmd/planboard-api/database"
	"github.com/open-planboard/planboard/internal"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"github.com/open-planboard/planboard/pkg/scheduler"
	"github.com/rung/go-safecast"
	"go.uber.org/zap"
)

// GetUnavailability returns the unavailable hours of a machine for all dates
// in [from, to), served from the tiered availability index when possible
func GetUnavailability(machineId int, from time.Time, to time.Time) (entries []datamodel.UnavailabilityEntry, err error) {
	cacheKey := internal.AvailabilityIndexKey(machineId, from, to)
	if internal.GetTieredJSON(cacheKey, &entries) {
		return entries, nil
	}

	entries, err = fetchUnavailability(machineId, from, to)
	if err != nil {
		return
	}

	internal.SetTieredJSON(cacheKey, entries)
	return entries, nil
}

// fetchUnavailability reads the unavailable hours straight from the database.
// The scheduling repository must use this instead of GetUnavailability: a
// cached window can miss an hour blocked moments ago, and the overlap check
// inside the placement critical section has to see it.
func fetchUnavailability(machineId int, from time.Time, to time.Time) (entries []datamodel.UnavailabilityEntry, err error) {
	sqlStatement := `SELECT machineId, date, hour FROM unavailabilityTable WHERE machineId = $1 AND date >= $2 AND date < $3 ORDER BY date, hour`

	rows, err := database.Query(sqlStatement, machineId, from, to)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var entry datamodel.UnavailabilityEntry
		err = rows.Scan(&entry.MachineId, &entry.Date, &entry.Hour)
		if err != nil {
			database.ErrorHandling(sqlStatement, err, false)
			return
		}
		entries = append(entries, entry)
	}
	err = rows.Err()
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	return entries, nil
}

// SetUnavailability replaces the unavailable hours of a machine on one date.
// An hour that an occupying order overlaps cannot be blocked: off-time must be
// carved out before work is planned into it, not after. Range and occupancy
// rejections come back as scheduler.ValidationError; anything else is a remote
// failure.
func SetUnavailability(ctx context.Context, machineId int, date time.Time, hours []int) (err error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	castHours := make([]int32, 0, len(hours))
	for _, hour := range hours {
		var hour32 int32
		hour32, err = safecast.Int32(hour)
		if err != nil || hour32 < 0 || hour32 > 23 {
			return &scheduler.ValidationError{Reason: fmt.Sprintf("hour %d is out of range", hour)}
		}
		castHours = append(castHours, hour32)
	}

	occupying, err := repo.GetOccupyingOrders(ctx, machineId)
	if err != nil {
		return err
	}
	for _, hour := range castHours {
		blocked := scheduler.TimeRange{
			Begin: date.Add(time.Duration(hour) * time.Hour),
			End:   date.Add(time.Duration(hour+1) * time.Hour),
		}
		if conflict := scheduler.FindConflict(0, machineId, blocked, occupying, nil); conflict != nil {
			return &scheduler.ValidationError{Reason: fmt.Sprintf(
				"hour %d on %s is occupied by order %s",
				hour,
				date.Format("2006-01-02"),
				conflict.With.OrderNumber)}
		}
	}

	// delete and insert commit together, so a failure never leaves the date
	// with half the old and half the new hours
	tx, err := database.DBConnPool.Begin(ctx)
	if err != nil {
		database.ErrorHandling("BEGIN", err, false)
		return
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	deleteStatement := `DELETE FROM unavailabilityTable WHERE machineId = $1 AND date = $2`
	_, err = tx.Exec(ctx, deleteStatement, machineId, date)
	if err != nil {
		database.ErrorHandling(deleteStatement, err, false)
		return
	}

	insertStatement := `INSERT INTO unavailabilityTable (machineId, date, hour) SELECT $1, $2, unnest($3::int[]) ON CONFLICT DO NOTHING`
	_, err = tx.Exec(ctx, insertStatement, machineId, date, castHours)
	if err != nil {
		database.ErrorHandling(insertStatement, err, false)
		return
	}

	err = tx.Commit(ctx)
	if err != nil {
		database.ErrorHandling("COMMIT", err, false)
		return
	}

	zap.S().Infof("Replaced off-time for machine %d on %s: %d hours", machineId, date.Format("2006-01-02"), len(castHours))
	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityUnavailability,
		Operation: datamodel.ChangeOperationUpdate,
		Id:        machineId,
	})
	return nil
}

// DeleteUnavailability clears all unavailable hours of a machine on one date
func DeleteUnavailability(machineId int, date time.Time) (err error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	sqlStatement := `DELETE FROM unavailabilityTable WHERE machineId = $1 AND date = $2`

	tag, err := database.Exec(sqlStatement, machineId, date)
	if err != nil {
		database.ErrorHandling(sqlStatement, err, false)
		return
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	internal.PublishChange(datamodel.ChangeEvent{
		Entity:    datamodel.ChangeEntityUnavailability,
		Operation: datamodel.ChangeOperationDelete,
		Id:        machineId,
	})
	return nil
}
