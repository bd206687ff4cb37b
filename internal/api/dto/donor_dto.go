package dto

import (
	"time"

	"github.com/spec-kit/redlink/internal/domain"
)

// DonorLoginRequest payload for donor login and first registration.
// LastDonationDate accepts RFC 3339 or a plain YYYY-MM-DD date.
type DonorLoginRequest struct {
	Name             string  `json:"name"`
	BloodGroup       string  `json:"blood_group"`
	Age              int     `json:"age"`
	WeightKg         float64 `json:"weight_kg"`
	LastDonationDate string  `json:"last_donation_date"`
	Credential       string  `json:"credential"`
}

// AvailabilityRequest toggles the manual availability flag.
type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

// ScheduleRequest asks for a timed pause.
type ScheduleRequest struct {
	Hours int `json:"hours"`
}

// BloodGroupRequest changes the donor's blood group.
type BloodGroupRequest struct {
	BloodGroup string `json:"blood_group"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DonorView is the donor profile with its derived availability.
type DonorView struct {
	ID                      string                   `json:"id"`
	Name                    string                   `json:"name"`
	BloodGroup              domain.BloodGroup        `json:"blood_group"`
	Age                     int                      `json:"age"`
	WeightKg                float64                  `json:"weight_kg"`
	LastDonationAt          *time.Time               `json:"last_donation_at"`
	DonationCount           int                      `json:"donation_count"`
	IsAvailable             bool                     `json:"is_available"`
	ScheduledReactivationAt *time.Time               `json:"scheduled_reactivation_at"`
	State                   domain.AvailabilityState `json:"state"`
	EffectivelyAvailable    bool                     `json:"effectively_available"`
	HardLocked              bool                     `json:"hard_locked"`
	RecoveryDeadline        *time.Time               `json:"recovery_deadline"`
	EvaluatedAt             time.Time                `json:"evaluated_at"`
}

// FeedResponse lists the requests relevant to the donor.
type FeedResponse struct {
	Donor    DonorView     `json:"donor"`
	Requests []RequestView `json:"requests"`
}
