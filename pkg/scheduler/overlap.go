package scheduler

import (
	"time"

	"github.com/open-planboard/planboard/pkg/datamodel"
)

// EffectiveRange returns the interval an occupying order actually blocks on its
// machine. The end is recomputed from the remaining work when available, so a
// partially completed order blocks less than its stored end claims:
//  1. begin + TimeRemainingInHours when remaining time is known and positive
//  2. the stored end timestamp when it lies after begin
//  3. begin + DurationInHours as the fallback
//
// The bool result is false when the order carries no usable placement at all.
func EffectiveRange(order datamodel.OrderEntry) (TimeRange, bool) {
	if order.BeginTimestamp == nil {
		return TimeRange{}, false
	}
	begin := *order.BeginTimestamp

	var end time.Time
	switch {
	case order.TimeRemainingInHours != nil && *order.TimeRemainingInHours > 0:
		end = begin.Add(hoursToDuration(*order.TimeRemainingInHours))
	case order.EndTimestamp != nil && order.EndTimestamp.After(begin):
		end = *order.EndTimestamp
	default:
		end = begin.Add(hoursToDuration(order.DurationInHours))
	}

	if !end.After(begin) {
		return TimeRange{}, false
	}
	return TimeRange{Begin: begin, End: end}, true
}

// FindConflict tests a proposed placement against the occupying orders and the
// unavailable hours of a machine. It returns nil when the interval is free.
//
// When several entities conflict at once the result is deterministic: the
// entity whose interval begins earliest wins, an order beats an unavailable
// hour on equal begins, and among orders the lowest id wins.
func FindConflict(
	orderId int,
	machineId int,
	proposed TimeRange,
	occupying []datamodel.OrderEntry,
	unavailable []datamodel.UnavailabilityEntry) *datamodel.Conflict {

	var best *datamodel.ConflictingEntity

	for _, other := range occupying {
		if other.Id == orderId {
			continue
		}
		if !datamodel.IsOccupying(other.Status) {
			continue
		}
		effective, ok := EffectiveRange(other)
		if !ok {
			continue
		}
		if !timerangesOverlap(proposed, effective) {
			continue
		}
		candidate := datamodel.ConflictingEntity{
			Kind:        datamodel.ConflictKindOrder,
			OrderId:     other.Id,
			OrderNumber: other.OrderNumber,
			Begin:       effective.Begin,
			End:         effective.End,
		}
		best = pickConflictingEntity(best, candidate)
	}

	for _, entry := range unavailable {
		blocked := hourRange(entry.Date, entry.Hour)
		if !timerangesOverlap(proposed, blocked) {
			continue
		}
		candidate := datamodel.ConflictingEntity{
			Kind:  datamodel.ConflictKindUnavailability,
			Begin: blocked.Begin,
			End:   blocked.End,
		}
		best = pickConflictingEntity(best, candidate)
	}

	if best == nil {
		return nil
	}
	return &datamodel.Conflict{
		OrderId:       orderId,
		MachineId:     machineId,
		ProposedBegin: proposed.Begin,
		ProposedEnd:   proposed.End,
		With:          *best,
	}
}

func pickConflictingEntity(current *datamodel.ConflictingEntity, candidate datamodel.ConflictingEntity) *datamodel.ConflictingEntity {
	if current == nil {
		return &candidate
	}
	if candidate.Begin.Before(current.Begin) {
		return &candidate
	}
	if current.Begin.Before(candidate.Begin) {
		return current
	}
	// equal begins: orders win over unavailable hours, then lowest order id
	if candidate.Kind == datamodel.ConflictKindOrder && current.Kind == datamodel.ConflictKindUnavailability {
		return &candidate
	}
	if candidate.Kind == datamodel.ConflictKindOrder && current.Kind == datamodel.ConflictKindOrder && candidate.OrderId < current.OrderId {
		return &candidate
	}
	return current
}
