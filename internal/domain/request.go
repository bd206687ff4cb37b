package domain

import "time"

// RequestStatus enumerates the lifecycle of an emergency request.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusAccepted RequestStatus = "ACCEPTED"
	RequestStatusIgnored  RequestStatus = "IGNORED"
)

// Resolved reports whether the status is terminal.
func (s RequestStatus) Resolved() bool {
	return s == RequestStatusAccepted || s == RequestStatusIgnored
}

const (
	MinRequestQuantity = 1
	MaxRequestQuantity = 10
)

// Request is an emergency call for blood units broadcast by a hospital.
// Status only moves from PENDING to ACCEPTED or IGNORED.
type Request struct {
	ID                 string
	HospitalName       string
	BloodGroup         BloodGroup
	Quantity           int
	Timestamp          time.Time
	Status             RequestStatus
	AcceptedByDonorID  *string
	RespondedByDonorID *string
	ResolvedAt         *time.Time
}

// Pending reports whether the request still awaits a donor response.
func (r Request) Pending() bool {
	return r.Status == RequestStatusPending
}
