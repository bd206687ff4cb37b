// Package eligibility holds the pure donation rules: who may register, how long a
// donor recovers after giving blood and when availability is locked.
//
// Nothing here caches a decision. Every predicate is recomputed from stored facts
// and the instant passed in, so clock advancement alone can change the outcome.
package eligibility

import (
	"time"

	"github.com/spec-kit/redlink/internal/domain"
)

const (
	MinAge         = 18
	MinWeightKg    = 50.0
	RecoveryWindow = 90 * 24 * time.Hour
	// LockDonationCount is the number of accepted donations that locks availability.
	LockDonationCount = 2
)

// CheckRegistration returns the first violated registration rule, age before weight.
func CheckRegistration(age int, weightKg float64) error {
	if age < MinAge {
		return domain.ErrIneligibleAge
	}
	if weightKg < MinWeightKg {
		return domain.ErrIneligibleWeight
	}
	return nil
}

// IsEligibleToRegister reports whether a donor with these attributes may register.
func IsEligibleToRegister(age int, weightKg float64) bool {
	return CheckRegistration(age, weightKg) == nil
}

// RecoveryDeadline is the instant the recovery window after a donation closes.
func RecoveryDeadline(lastDonation time.Time) time.Time {
	return lastDonation.Add(RecoveryWindow)
}

// IsInRecovery reports whether now falls inside the recovery window of lastDonation.
func IsInRecovery(lastDonation *time.Time, now time.Time) bool {
	if lastDonation == nil {
		return false
	}
	return now.Before(RecoveryDeadline(*lastDonation))
}

// IsHardLocked reports whether the donor is barred from changing availability.
func IsHardLocked(d domain.Donor, now time.Time) bool {
	return d.DonationCount >= LockDonationCount || IsInRecovery(d.LastDonationAt, now)
}

// RecordDonation returns a copy of d with the donation at now applied.
func RecordDonation(d domain.Donor, now time.Time) domain.Donor {
	at := now
	d.DonationCount++
	d.LastDonationAt = &at
	return d
}
