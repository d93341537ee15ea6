package settlement

import (
	"sort"
	"time"

	"talkbid/models"
)

// Verdict is the completion decision for a booking's held payment.
type Verdict string

const (
	VerdictCapture Verdict = "capture"
	VerdictRelease Verdict = "release"
)

// ReasonCode explains a verdict.
type ReasonCode string

const (
	ReasonCompletedSuccessfully ReasonCode = "completed_successfully"
	ReasonHostNoShow            ReasonCode = "host_no_show"
	ReasonNotEndedByDuration    ReasonCode = "not_ended_by_duration"
	ReasonHostJoinedAfterStart  ReasonCode = "host_joined_after_start"
	ReasonHostLeftDuringTalk    ReasonCode = "host_left_during_talk"

	// Degraded-path reasons, used only when the event log is empty.
	ReasonCallEndNotRecorded   ReasonCode = "call_end_time_not_recorded"
	ReasonEndedBeforeScheduled ReasonCode = "ended_before_scheduled_end"
	ReasonActualDurationTooLow ReasonCode = "actual_duration_less_than_scheduled"
)

// Decision is the outcome of the completion determination.
type Decision struct {
	Verdict Verdict
	Reason  ReasonCode
}

func release(reason ReasonCode) Decision {
	return Decision{Verdict: VerdictRelease, Reason: reason}
}

// Decide determines whether a booking's held payment should be captured or
// released. Pure and deterministic over its inputs.
//
// With a non-empty event log the contractual rule is evaluated in fixed
// order, short-circuiting at the first failing condition: the host must have
// joined, the room must have ended by natural timeout, and the host must have
// been present from no later than the scheduled start through the scheduled
// end. With an empty log (the provider never delivered events for this
// booking) the decision falls back to the booking's own client-reported
// timestamps, a documented looser approximation.
func Decide(booking models.Booking, events []models.CallEvent) Decision {
	if len(events) == 0 {
		return decideDegraded(booking)
	}

	// Delivery order is not occurrence order; evaluate against the log
	// sorted by provider event time.
	log := make([]models.CallEvent, len(events))
	copy(log, events)
	sort.SliceStable(log, func(i, j int) bool {
		if !log[i].EventAt.Equal(log[j].EventAt) {
			return log[i].EventAt.Before(log[j].EventAt)
		}
		return log[i].ReceivedAt.Before(log[j].ReceivedAt)
	})

	var (
		firstHostJoin *time.Time
		lastHostLeave *time.Time
		lastRoomEnd   *time.Time
		endedNatural  bool
	)
	for i := range log {
		ev := log[i]
		switch ev.Type {
		case models.CallEventParticipantJoined:
			if ev.ParticipantID == booking.HostID && firstHostJoin == nil {
				t := ev.EventAt
				firstHostJoin = &t
			}
		case models.CallEventParticipantLeft:
			if ev.ParticipantID == booking.HostID {
				t := ev.EventAt
				lastHostLeave = &t
			}
		case models.CallEventMeetingEnded:
			t := ev.EventAt
			lastRoomEnd = &t
			if ev.RoomEndReason == models.RoomEndReasonDuration {
				endedNatural = true
			}
		}
	}

	// 1. Host participation.
	if firstHostJoin == nil {
		return release(ReasonHostNoShow)
	}

	// 2. Natural termination: the provider timed the room out itself, not a
	// manual hangup.
	if !endedNatural {
		return release(ReasonNotEndedByDuration)
	}

	// 3. Uninterrupted host presence across the contractual window. Joining
	// early from a waiting room is fine; the earliest join is what counts.
	scheduledEnd := booking.ScheduledEnd()
	if firstHostJoin.After(booking.ScheduledStart) {
		return release(ReasonHostJoinedAfterStart)
	}
	if lastHostLeave != nil {
		// A leave at or after the scheduled end is a clean finish, even if
		// a later room-end follows. Only a leave strictly before the end
		// counts as an interruption.
		if lastHostLeave.Before(scheduledEnd) {
			return release(ReasonHostLeftDuringTalk)
		}
	} else if lastRoomEnd.Before(scheduledEnd) {
		// No leave events: the host implicitly stayed until the room closed,
		// which must be no earlier than the scheduled end.
		return release(ReasonHostLeftDuringTalk)
	}

	return Decision{Verdict: VerdictCapture, Reason: ReasonCompletedSuccessfully}
}

// decideDegraded evaluates the booking's own timestamp fields when the event
// log is empty. It trusts actualDurationMinutes as recorded and does not try
// to reconstruct an early leave, since without a log there is no leave signal
// to check against.
func decideDegraded(booking models.Booking) Decision {
	if booking.HostJoinedAt == nil {
		return release(ReasonHostNoShow)
	}
	if booking.HostJoinedAt.After(booking.ScheduledStart) {
		return release(ReasonHostJoinedAfterStart)
	}
	if booking.CallEndedAt == nil {
		return release(ReasonCallEndNotRecorded)
	}
	if booking.CallEndedAt.Before(booking.ScheduledEnd()) {
		return release(ReasonEndedBeforeScheduled)
	}
	if booking.ActualDurationMinutes < booking.DurationMinutes {
		return release(ReasonActualDurationTooLow)
	}
	return Decision{Verdict: VerdictCapture, Reason: ReasonCompletedSuccessfully}
}
