package domain

import "time"

// Donor is a session-scoped donor profile. It lives from authentication until logout.
type Donor struct {
	ID                      string
	Name                    string
	BloodGroup              BloodGroup
	Age                     int
	WeightKg                float64
	LastDonationAt          *time.Time
	DonationCount           int
	IsAvailable             bool
	ScheduledReactivationAt *time.Time
	CredentialHash          string
	CreatedAt               time.Time
}

// AvailabilityState is the derived position of a donor in the availability machine.
type AvailabilityState string

const (
	AvailabilityOnline         AvailabilityState = "ONLINE"
	AvailabilityPaused         AvailabilityState = "PAUSED"
	AvailabilityScheduledPause AvailabilityState = "SCHEDULED_PAUSE"
	AvailabilityHardLocked     AvailabilityState = "HARD_LOCKED"
)
