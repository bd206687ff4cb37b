// Package availability derives a donor's position in the availability state machine.
// States are never stored; they are evaluated from the donor record and an instant.
package availability

import (
	"time"

	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/eligibility"
)

var pauseHours = []int{1, 4, 8, 24}

// PauseHours lists the durations a donor may schedule unavailability for.
func PauseHours() []int {
	return append([]int(nil), pauseHours...)
}

// PauseDuration validates hours and converts it to a duration.
func PauseDuration(hours int) (time.Duration, error) {
	for _, h := range pauseHours {
		if h == hours {
			return time.Duration(hours) * time.Hour, nil
		}
	}
	return 0, domain.ErrInvalidPauseDuration
}

// Evaluate returns the state of d at now. Hard lock wins over a schedule,
// a schedule wins over the manual flag.
func Evaluate(d domain.Donor, now time.Time) domain.AvailabilityState {
	switch {
	case eligibility.IsHardLocked(d, now):
		return domain.AvailabilityHardLocked
	case scheduleActive(d, now):
		return domain.AvailabilityScheduledPause
	case d.IsAvailable:
		return domain.AvailabilityOnline
	default:
		return domain.AvailabilityPaused
	}
}

// IsEffectivelyAvailable reports whether d should receive alerts at now.
func IsEffectivelyAvailable(d domain.Donor, now time.Time) bool {
	return Evaluate(d, now) == domain.AvailabilityOnline
}

// Outcome describes what a reconcile step observed.
type Outcome struct {
	Donor           domain.Donor
	State           domain.AvailabilityState
	HardLocked      bool
	ScheduleElapsed bool
	ElapsedAt       time.Time
}

// Reconcile applies deadlines that have passed by now: an elapsed schedule is
// cleared and reported. The manual flag is left untouched. The returned donor
// is a copy; d is not modified.
func Reconcile(d domain.Donor, now time.Time) Outcome {
	out := Outcome{}
	if d.ScheduledReactivationAt != nil && !now.Before(*d.ScheduledReactivationAt) {
		out.ScheduleElapsed = true
		out.ElapsedAt = *d.ScheduledReactivationAt
		d.ScheduledReactivationAt = nil
	}
	out.Donor = d
	out.HardLocked = eligibility.IsHardLocked(d, now)
	out.State = Evaluate(d, now)
	return out
}

func scheduleActive(d domain.Donor, now time.Time) bool {
	return d.ScheduledReactivationAt != nil && now.Before(*d.ScheduledReactivationAt)
}
