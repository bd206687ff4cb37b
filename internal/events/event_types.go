package events

import (
	"time"

	"github.com/spec-kit/redlink/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated     EventType = "request_created"
	EventRequestResolved    EventType = "request_resolved"
	EventDonorAlerted       EventType = "donor_alerted"
	EventReactivationPrompt EventType = "reactivation_prompt"
	EventHardLockAdvisory   EventType = "hard_lock_advisory"
	EventHardLockReleased   EventType = "hard_lock_released"
	EventDonorSessionClosed EventType = "donor_session_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	DonorID   string    `json:"donor_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	HospitalName string            `json:"hospital_name"`
	BloodGroup   domain.BloodGroup `json:"blood_group"`
	Quantity     int               `json:"quantity"`
}

// RequestResolvedPayload payload.
type RequestResolvedPayload struct {
	Status     domain.RequestStatus `json:"status"`
	BloodGroup domain.BloodGroup    `json:"blood_group"`
}

// DonorAlertedPayload carries the pair an alert was raised for.
type DonorAlertedPayload struct {
	Request domain.Request `json:"request"`
	Donor   domain.Donor   `json:"donor"`
}

// ReactivationPromptPayload asks the donor to confirm they are back.
type ReactivationPromptPayload struct {
	ScheduledFor time.Time                `json:"scheduled_for"`
	State        domain.AvailabilityState `json:"state"`
}

// HardLockAdvisoryPayload explains why availability is locked.
type HardLockAdvisoryPayload struct {
	DonationCount    int        `json:"donation_count"`
	RecoveryDeadline *time.Time `json:"recovery_deadline,omitempty"`
}

// HardLockReleasedPayload payload.
type HardLockReleasedPayload struct {
	State domain.AvailabilityState `json:"state"`
}
