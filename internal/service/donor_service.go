package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/redlink/internal/auth"
	"github.com/spec-kit/redlink/internal/availability"
	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/eligibility"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/observability"
	"github.com/spec-kit/redlink/internal/oneshot"
	"github.com/spec-kit/redlink/internal/repository"
	"github.com/spec-kit/redlink/internal/scheduler"
)

const edgeHardLock = "hard_lock"

// DonorService runs the availability state machine of donor sessions.
//
// Every operation first reconciles the donor against the clock inside the
// repository update, so a deadline that passed before the call is already
// applied when the action is checked. The deadline poller only exists to fire
// one-shot events at the moment a deadline elapses.
type DonorService struct {
	donors     repository.DonorRepository
	deadlines  *scheduler.Scheduler
	edges      *oneshot.Edges
	matcher    *MatchingService
	clock      clock.Clock
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	bcryptCost int
}

// DonorDependencies bundles collaborators for the donor service.
type DonorDependencies struct {
	DonorRepo  repository.DonorRepository
	Scheduler  *scheduler.Scheduler
	Matcher    *MatchingService
	Clock      clock.Clock
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	BcryptCost int
}

// AuthenticateInput describes a donor login or first registration.
type AuthenticateInput struct {
	Name           string
	BloodGroup     domain.BloodGroup
	Age            int
	WeightKg       float64
	LastDonationAt *time.Time
	Credential     string
}

// DonorStatus is the authoritative view of a donor at a given instant.
type DonorStatus struct {
	Donor                domain.Donor
	State                domain.AvailabilityState
	EffectivelyAvailable bool
	HardLocked           bool
	RecoveryDeadline     *time.Time
	EvaluatedAt          time.Time
}

// NewDonorService constructs the service.
func NewDonorService(deps DonorDependencies) *DonorService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sched := deps.Scheduler
	if sched == nil {
		sched = scheduler.New()
	}
	return &DonorService{
		donors:     deps.DonorRepo,
		deadlines:  sched,
		edges:      oneshot.NewEdges(),
		matcher:    deps.Matcher,
		clock:      deps.Clock,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		bcryptCost: deps.BcryptCost,
	}
}

// Authenticate opens a donor session. A name that already has a session resumes
// it when the credential matches; otherwise the registration rules apply and
// nothing is stored when they fail.
func (s *DonorService) Authenticate(ctx context.Context, in AuthenticateInput) (DonorStatus, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return DonorStatus{}, domain.ErrDonorNameRequired
	}

	existing, err := s.donors.GetByName(ctx, name)
	switch {
	case err == nil:
		if err := auth.CompareCredential(existing.CredentialHash, in.Credential); err != nil {
			return DonorStatus{}, err
		}
		s.logger.Info("donor session resumed", zap.String("donor_id", existing.ID))
		return s.Status(ctx, existing.ID)
	case !errors.Is(err, domain.ErrDonorNotFound):
		return DonorStatus{}, err
	}

	if !in.BloodGroup.Valid() {
		return DonorStatus{}, domain.ErrInvalidBloodGroup
	}
	if err := eligibility.CheckRegistration(in.Age, in.WeightKg); err != nil {
		return DonorStatus{}, err
	}
	now := s.clock.Now()
	if in.LastDonationAt != nil && in.LastDonationAt.After(now) {
		return DonorStatus{}, domain.ErrInvalidLastDonation
	}

	hash, err := auth.HashCredential(in.Credential, s.bcryptCost)
	if err != nil {
		return DonorStatus{}, err
	}

	donor := domain.Donor{
		ID:             uuid.NewString(),
		Name:           name,
		BloodGroup:     in.BloodGroup,
		Age:            in.Age,
		WeightKg:       in.WeightKg,
		LastDonationAt: copyTime(in.LastDonationAt),
		CredentialHash: hash,
		CreatedAt:      now,
	}
	if err := s.donors.Create(ctx, donor); err != nil {
		return DonorStatus{}, err
	}
	s.metrics.DonorSessionOpened()
	s.logger.Info("donor session opened",
		zap.String("donor_id", donor.ID),
		zap.String("blood_group", string(donor.BloodGroup)))

	if eligibility.IsInRecovery(donor.LastDonationAt, now) {
		s.scheduleRecoveryEnd(donor.ID, *donor.LastDonationAt)
	}
	s.emit(ctx, s.observeLock(donor, now))
	return s.statusOf(donor, now), nil
}

// Logout destroys the session and every pending deadline of the donor.
func (s *DonorService) Logout(ctx context.Context, donorID string) error {
	if err := s.donors.Delete(ctx, donorID); err != nil {
		return err
	}
	cancelled := s.deadlines.CancelDonor(donorID)
	s.edges.Forget(donorID)
	if s.matcher != nil {
		s.matcher.ForgetDonor(donorID)
	}
	s.metrics.DonorSessionClosed()
	s.logger.Info("donor session closed", zap.String("donor_id", donorID), zap.Int("cancelled_deadlines", cancelled))
	publishEvents(ctx, s.dispatcher, s.clock, events.Event{
		Type:    events.EventDonorSessionClosed,
		DonorID: donorID,
	})
	return nil
}

// SetAvailability flips the manual availability flag. It is rejected with
// domain.ErrHardLocked, leaving the flag untouched, while the donor is locked.
// A manual toggle replaces any scheduled pause.
func (s *DonorService) SetAvailability(ctx context.Context, donorID string, available bool) (DonorStatus, error) {
	return s.mutate(ctx, donorID, func(d *domain.Donor, now time.Time) error {
		if eligibility.IsHardLocked(*d, now) {
			return domain.ErrHardLocked
		}
		d.IsAvailable = available
		if d.ScheduledReactivationAt != nil {
			d.ScheduledReactivationAt = nil
			s.deadlines.Cancel(d.ID, scheduler.KindReactivation)
		}
		return nil
	})
}

// ScheduleUnavailability pauses the donor for hours (1, 4, 8 or 24). When the
// pause elapses a reactivation prompt is emitted once; the manual flag is not changed.
func (s *DonorService) ScheduleUnavailability(ctx context.Context, donorID string, hours int) (DonorStatus, error) {
	duration, err := availability.PauseDuration(hours)
	if err != nil {
		return DonorStatus{}, err
	}
	return s.mutate(ctx, donorID, func(d *domain.Donor, now time.Time) error {
		if eligibility.IsHardLocked(*d, now) {
			return domain.ErrHardLocked
		}
		until := now.Add(duration)
		d.ScheduledReactivationAt = &until
		s.deadlines.Schedule(scheduler.Entry{Deadline: until, DonorID: d.ID, Kind: scheduler.KindReactivation})
		return nil
	})
}

// ClearSchedule removes a pending scheduled pause without emitting a prompt.
func (s *DonorService) ClearSchedule(ctx context.Context, donorID string) (DonorStatus, error) {
	return s.mutate(ctx, donorID, func(d *domain.Donor, _ time.Time) error {
		if d.ScheduledReactivationAt != nil {
			d.ScheduledReactivationAt = nil
			s.deadlines.Cancel(d.ID, scheduler.KindReactivation)
		}
		return nil
	})
}

// ChangeBloodGroup updates the donor's registered blood group.
func (s *DonorService) ChangeBloodGroup(ctx context.Context, donorID string, group domain.BloodGroup) (DonorStatus, error) {
	if !group.Valid() {
		return DonorStatus{}, domain.ErrInvalidBloodGroup
	}
	return s.mutate(ctx, donorID, func(d *domain.Donor, _ time.Time) error {
		d.BloodGroup = group
		return nil
	})
}

// RecordDonation applies an accepted donation: the count grows, the recovery
// window restarts and its end is scheduled.
func (s *DonorService) RecordDonation(ctx context.Context, donorID string) (DonorStatus, error) {
	return s.mutate(ctx, donorID, func(d *domain.Donor, now time.Time) error {
		*d = eligibility.RecordDonation(*d, now)
		s.scheduleRecoveryEnd(d.ID, now)
		return nil
	})
}

// Status recomputes the donor's state from stored facts and the current time.
// Reading applies elapsed deadlines, so it may emit the events they trigger.
func (s *DonorService) Status(ctx context.Context, donorID string) (DonorStatus, error) {
	return s.mutate(ctx, donorID, nil)
}

// Tick reconciles every donor whose deadline has elapsed and returns how many
// deadlines were processed. Deadlines of closed sessions are dropped.
func (s *DonorService) Tick(ctx context.Context) int {
	due := s.deadlines.Due(s.clock.Now())
	for _, entry := range due {
		if _, err := s.mutate(ctx, entry.DonorID, nil); err != nil {
			if errors.Is(err, domain.ErrDonorNotFound) {
				continue
			}
			s.logger.Warn("deadline reconcile failed",
				zap.String("donor_id", entry.DonorID),
				zap.String("kind", string(entry.Kind)),
				zap.Error(err))
		}
	}
	return len(due)
}

// NextDeadline returns the earliest pending deadline, if any.
func (s *DonorService) NextDeadline() (scheduler.Entry, bool) {
	return s.deadlines.Next()
}

// mutate reconciles the donor at the current instant, runs action on the
// reconciled record and commits the result as one repository update. A
// non-nil error from action is a guard rejection: the reconciled record is
// still committed, the action's intent is not.
func (s *DonorService) mutate(ctx context.Context, donorID string, action func(*domain.Donor, time.Time) error) (DonorStatus, error) {
	now := s.clock.Now()
	var (
		pending   []events.Event
		actionErr error
	)
	donor, err := s.donors.Update(ctx, donorID, func(d *domain.Donor) error {
		out := availability.Reconcile(*d, now)
		*d = out.Donor
		if out.ScheduleElapsed {
			s.deadlines.Cancel(d.ID, scheduler.KindReactivation)
			pending = append(pending, events.Event{
				Type:      events.EventReactivationPrompt,
				DonorID:   d.ID,
				Timestamp: now,
				Payload: events.ReactivationPromptPayload{
					ScheduledFor: out.ElapsedAt,
					State:        out.State,
				},
			})
		}
		if action != nil {
			if actionErr = action(d, now); actionErr != nil {
				*d = out.Donor
			}
		}
		pending = append(pending, s.observeLock(*d, now)...)
		return nil
	})
	if err != nil {
		return DonorStatus{}, err
	}

	s.emit(ctx, pending)
	if s.matcher != nil {
		if _, err := s.matcher.EvaluateDonor(ctx, donor); err != nil {
			s.logger.Warn("matching evaluation failed", zap.String("donor_id", donor.ID), zap.Error(err))
		}
	}
	return s.statusOf(donor, now), actionErr
}

func (s *DonorService) emit(ctx context.Context, pending []events.Event) {
	for _, event := range pending {
		s.metrics.AvailabilityEvent(string(event.Type))
	}
	publishEvents(ctx, s.dispatcher, s.clock, pending...)
}

// observeLock turns the hard-lock level into advisory and release events on its edges.
func (s *DonorService) observeLock(d domain.Donor, now time.Time) []events.Event {
	locked := eligibility.IsHardLocked(d, now)
	switch s.edges.Observe(oneshot.Key{Entity: d.ID, Kind: edgeHardLock}, locked) {
	case oneshot.Rising:
		payload := events.HardLockAdvisoryPayload{DonationCount: d.DonationCount}
		if eligibility.IsInRecovery(d.LastDonationAt, now) {
			deadline := eligibility.RecoveryDeadline(*d.LastDonationAt)
			payload.RecoveryDeadline = &deadline
		}
		return []events.Event{{
			Type:      events.EventHardLockAdvisory,
			DonorID:   d.ID,
			Timestamp: now,
			Payload:   payload,
		}}
	case oneshot.Falling:
		return []events.Event{{
			Type:      events.EventHardLockReleased,
			DonorID:   d.ID,
			Timestamp: now,
			Payload:   events.HardLockReleasedPayload{State: availability.Evaluate(d, now)},
		}}
	default:
		return nil
	}
}

func (s *DonorService) scheduleRecoveryEnd(donorID string, lastDonation time.Time) {
	s.deadlines.Schedule(scheduler.Entry{
		Deadline: eligibility.RecoveryDeadline(lastDonation),
		DonorID:  donorID,
		Kind:     scheduler.KindRecoveryEnd,
	})
}

func (s *DonorService) statusOf(d domain.Donor, now time.Time) DonorStatus {
	status := DonorStatus{
		Donor:       d,
		State:       availability.Evaluate(d, now),
		HardLocked:  eligibility.IsHardLocked(d, now),
		EvaluatedAt: now,
	}
	status.EffectivelyAvailable = status.State == domain.AvailabilityOnline
	if eligibility.IsInRecovery(d.LastDonationAt, now) {
		deadline := eligibility.RecoveryDeadline(*d.LastDonationAt)
		status.RecoveryDeadline = &deadline
	}
	return status
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
