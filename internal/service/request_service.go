package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/observability"
	"github.com/spec-kit/redlink/internal/repository"
)

// RequestService coordinates the emergency request workflow.
type RequestService struct {
	requests        repository.RequestRepository
	donors          *DonorService
	matcher         *MatchingService
	clock           clock.Clock
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	metrics         *observability.Metrics
	defaultHospital string
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo     repository.RequestRepository
	Donors          *DonorService
	Matcher         *MatchingService
	Clock           clock.Clock
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Metrics         *observability.Metrics
	DefaultHospital string
}

// CreateRequestInput describes a hospital broadcast.
type CreateRequestInput struct {
	HospitalName string
	BloodGroup   domain.BloodGroup
	Quantity     int
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		requests:        deps.RequestRepo,
		donors:          deps.Donors,
		matcher:         deps.Matcher,
		clock:           deps.Clock,
		dispatcher:      deps.Dispatcher,
		logger:          logger,
		metrics:         deps.Metrics,
		defaultHospital: deps.DefaultHospital,
	}
}

// CreateRequest validates and stores a new pending request at the head of the
// list, then lets the matching engine alert donors.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (domain.Request, error) {
	if in.Quantity < domain.MinRequestQuantity || in.Quantity > domain.MaxRequestQuantity {
		return domain.Request{}, domain.ErrInvalidQuantity
	}
	if !in.BloodGroup.Valid() {
		return domain.Request{}, domain.ErrInvalidBloodGroup
	}
	hospital := strings.TrimSpace(in.HospitalName)
	if hospital == "" {
		hospital = s.defaultHospital
	}

	req := domain.Request{
		ID:           uuid.NewString(),
		HospitalName: hospital,
		BloodGroup:   in.BloodGroup,
		Quantity:     in.Quantity,
		Timestamp:    s.clock.Now(),
		Status:       domain.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return domain.Request{}, err
	}
	s.metrics.RequestCreated(string(req.BloodGroup))
	s.logger.Info("request broadcast",
		zap.String("request_id", req.ID),
		zap.String("hospital", req.HospitalName),
		zap.String("blood_group", string(req.BloodGroup)),
		zap.Int("quantity", req.Quantity))

	publishEvents(ctx, s.dispatcher, s.clock, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: req.ID,
		Timestamp: req.Timestamp,
		Payload: events.RequestCreatedPayload{
			HospitalName: req.HospitalName,
			BloodGroup:   req.BloodGroup,
			Quantity:     req.Quantity,
		},
	})
	if s.matcher != nil {
		if _, err := s.matcher.EvaluateAll(ctx); err != nil {
			s.logger.Warn("matching after broadcast failed", zap.String("request_id", req.ID), zap.Error(err))
		}
	}
	return req, nil
}

// RespondToRequest resolves a pending request on behalf of donorID. A request
// resolves once: later calls get domain.ErrRequestAlreadyResolved and change
// nothing. Accepting records the donation on the donor.
func (s *RequestService) RespondToRequest(ctx context.Context, requestID, donorID string, response domain.RequestStatus) (domain.Request, error) {
	if !response.Resolved() {
		return domain.Request{}, domain.ErrInvalidResponse
	}
	if _, err := s.donors.Status(ctx, donorID); err != nil {
		return domain.Request{}, err
	}

	updated, err := s.requests.Resolve(ctx, requestID, response, donorID, s.clock.Now())
	if err != nil {
		return domain.Request{}, err
	}
	s.metrics.RequestResolved(string(updated.Status))
	s.logger.Info("request resolved",
		zap.String("request_id", updated.ID),
		zap.String("donor_id", donorID),
		zap.String("status", string(updated.Status)))

	if updated.Status == domain.RequestStatusAccepted {
		if _, err := s.donors.RecordDonation(ctx, donorID); err != nil {
			s.logger.Warn("recording donation failed", zap.String("donor_id", donorID), zap.Error(err))
		}
	}
	publishEvents(ctx, s.dispatcher, s.clock, events.Event{
		Type:      events.EventRequestResolved,
		DonorID:   donorID,
		RequestID: updated.ID,
		Payload: events.RequestResolvedPayload{
			Status:     updated.Status,
			BloodGroup: updated.BloodGroup,
		},
	})
	return updated, nil
}

// Get returns a single request.
func (s *RequestService) Get(ctx context.Context, requestID string) (domain.Request, error) {
	return s.requests.GetByID(ctx, requestID)
}

// List returns the full request history, newest first.
func (s *RequestService) List(ctx context.Context) ([]domain.Request, error) {
	return s.requests.List(ctx)
}

// RequestsMatching returns every request of group, newest first, all statuses.
func (s *RequestService) RequestsMatching(ctx context.Context, group domain.BloodGroup) ([]domain.Request, error) {
	if !group.Valid() {
		return nil, domain.ErrInvalidBloodGroup
	}
	return s.requests.ListByBloodGroup(ctx, group)
}
