package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/redlink/internal/availability"
	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/config"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/observability"
	"github.com/spec-kit/redlink/internal/oneshot"
	"github.com/spec-kit/redlink/internal/repository"
)

// MatchingService decides which requests concern which donors and raises alerts.
type MatchingService struct {
	requests   repository.RequestRepository
	donors     repository.DonorRepository
	alerted    *oneshot.Latch
	clock      clock.Clock
	policy     config.AlertPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// MatchingDependencies bundles collaborators for the matching service.
type MatchingDependencies struct {
	RequestRepo repository.RequestRepository
	DonorRepo   repository.DonorRepository
	Clock       clock.Clock
	Policy      config.AlertPolicy
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewMatchingService constructs the service. An empty policy means AlertPolicyLatest.
func NewMatchingService(deps MatchingDependencies) *MatchingService {
	policy := deps.Policy
	if policy == "" {
		policy = config.AlertPolicyLatest
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{
		requests:   deps.RequestRepo,
		donors:     deps.DonorRepo,
		alerted:    oneshot.NewLatch(),
		clock:      deps.Clock,
		policy:     policy,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
	}
}

// RelevantPending returns pending requests of the donor's blood group, newest
// first, whatever the donor's availability.
func (m *MatchingService) RelevantPending(ctx context.Context, donor domain.Donor) ([]domain.Request, error) {
	matching, err := m.requests.ListByBloodGroup(ctx, donor.BloodGroup)
	if err != nil {
		return nil, err
	}
	pending := matching[:0]
	for _, req := range matching {
		if req.Pending() {
			pending = append(pending, req)
		}
	}
	return pending, nil
}

// ShouldAlert reports whether req warrants alerting donor at now.
func (m *MatchingService) ShouldAlert(req domain.Request, donor domain.Donor, now time.Time) bool {
	return req.Pending() &&
		req.BloodGroup == donor.BloodGroup &&
		availability.IsEffectivelyAvailable(donor, now)
}

// Alerted reports whether an alert for the pair has already been emitted.
func (m *MatchingService) Alerted(requestID, donorID string) bool {
	return m.alerted.Fired(alertKey(requestID, donorID))
}

// EvaluateDonor emits an alert for every candidate request that should alert
// donor and has not alerted it before. It returns the requests alerted now.
func (m *MatchingService) EvaluateDonor(ctx context.Context, donor domain.Donor) ([]domain.Request, error) {
	now := m.clock.Now()
	if !availability.IsEffectivelyAvailable(donor, now) {
		return nil, nil
	}
	candidates, err := m.candidates(ctx, donor)
	if err != nil {
		return nil, err
	}

	var (
		alerted []domain.Request
		pending []events.Event
	)
	for _, req := range candidates {
		if !m.ShouldAlert(req, donor, now) {
			continue
		}
		if !m.alerted.Fire(alertKey(req.ID, donor.ID)) {
			continue
		}
		alerted = append(alerted, req)
		m.metrics.AlertEmitted()
		pending = append(pending, events.Event{
			Type:      events.EventDonorAlerted,
			DonorID:   donor.ID,
			RequestID: req.ID,
			Timestamp: now,
			Payload:   events.DonorAlertedPayload{Request: req, Donor: donor},
		})
	}
	publishEvents(ctx, m.dispatcher, m.clock, pending...)
	return alerted, nil
}

// EvaluateAll runs EvaluateDonor for every donor session and returns the number of alerts.
func (m *MatchingService) EvaluateAll(ctx context.Context) (int, error) {
	donors, err := m.donors.List(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, donor := range donors {
		alerted, err := m.EvaluateDonor(ctx, donor)
		if err != nil {
			m.logger.Warn("matching evaluation failed", zap.String("donor_id", donor.ID), zap.Error(err))
			continue
		}
		total += len(alerted)
	}
	return total, nil
}

// ForgetDonor drops the alert markers of a closed session.
func (m *MatchingService) ForgetDonor(donorID string) {
	m.alerted.Forget(donorID)
}

// candidates applies the alert policy. Under AlertPolicyLatest only the newest
// request of the donor's group is considered, even when it is already resolved,
// so that older pending requests do not resurface as alerts.
func (m *MatchingService) candidates(ctx context.Context, donor domain.Donor) ([]domain.Request, error) {
	matching, err := m.requests.ListByBloodGroup(ctx, donor.BloodGroup)
	if err != nil {
		return nil, err
	}
	if len(matching) == 0 {
		return nil, nil
	}
	if m.policy == config.AlertPolicyLatest {
		return matching[:1], nil
	}
	return matching, nil
}

func alertKey(requestID, donorID string) oneshot.Key {
	return oneshot.Key{Entity: donorID, Kind: "alert/" + requestID}
}
