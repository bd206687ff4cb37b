package dto

import (
	"time"

	"github.com/spec-kit/redlink/internal/domain"
)

// CreateRequestRequest payload for a hospital broadcast.
type CreateRequestRequest struct {
	HospitalName string `json:"hospital_name"`
	BloodGroup   string `json:"blood_group"`
	Quantity     int    `json:"quantity"`
}

// RespondRequest carries a donor's answer, ACCEPTED or IGNORED.
type RespondRequest struct {
	Response string `json:"response"`
}

// RequestView response.
type RequestView struct {
	ID                 string               `json:"id"`
	HospitalName       string               `json:"hospital_name"`
	BloodGroup         domain.BloodGroup    `json:"blood_group"`
	Quantity           int                  `json:"quantity"`
	Timestamp          time.Time            `json:"timestamp"`
	Status             domain.RequestStatus `json:"status"`
	AcceptedByDonorID  *string              `json:"accepted_by_donor_id"`
	RespondedByDonorID *string              `json:"responded_by_donor_id"`
	ResolvedAt         *time.Time           `json:"resolved_at"`
}

// NewRequestView maps a domain request.
func NewRequestView(r domain.Request) RequestView {
	return RequestView{
		ID:                 r.ID,
		HospitalName:       r.HospitalName,
		BloodGroup:         r.BloodGroup,
		Quantity:           r.Quantity,
		Timestamp:          r.Timestamp,
		Status:             r.Status,
		AcceptedByDonorID:  r.AcceptedByDonorID,
		RespondedByDonorID: r.RespondedByDonorID,
		ResolvedAt:         r.ResolvedAt,
	}
}

// NewRequestViews maps a list, keeping order.
func NewRequestViews(reqs []domain.Request) []RequestView {
	views := make([]RequestView, 0, len(reqs))
	for _, r := range reqs {
		views = append(views, NewRequestView(r))
	}
	return views
}
