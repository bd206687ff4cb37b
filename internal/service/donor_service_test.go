package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/redlink/internal/config"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/eligibility"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/scheduler"
)

type DonorServiceSuite struct {
	suite.Suite
	ctx context.Context
	e   *engine
}

func TestDonorServiceSuite(t *testing.T) {
	suite.Run(t, new(DonorServiceSuite))
}

func (s *DonorServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.e = newEngine(config.AlertPolicyLatest)
}

func (s *DonorServiceSuite) login(name string, group domain.BloodGroup) DonorStatus {
	status, err := s.e.donors.Authenticate(s.ctx, donorInput(name, group))
	s.Require().NoError(err)
	return status
}

func (s *DonorServiceSuite) online(name string, group domain.BloodGroup) string {
	status := s.login(name, group)
	status, err := s.e.donors.SetAvailability(s.ctx, status.Donor.ID, true)
	s.Require().NoError(err)
	s.Require().Equal(domain.AvailabilityOnline, status.State)
	return status.Donor.ID
}

func (s *DonorServiceSuite) TestNewDonorStartsPaused() {
	status := s.login("Asha", domain.BloodGroupOPos)
	s.False(status.Donor.IsAvailable)
	s.Equal(domain.AvailabilityPaused, status.State)
	s.False(status.EffectivelyAvailable)
	s.Zero(status.Donor.DonationCount)
	s.NotEmpty(status.Donor.CredentialHash)
	s.NotEqual("secret", status.Donor.CredentialHash)
}

func (s *DonorServiceSuite) TestRegistrationRules() {
	in := donorInput("Young", domain.BloodGroupOPos)
	in.Age = 17
	_, err := s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrIneligibleAge)

	in = donorInput("Light", domain.BloodGroupOPos)
	in.WeightKg = 49.9
	_, err = s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrIneligibleWeight)

	in = donorInput("Both", domain.BloodGroupOPos)
	in.Age, in.WeightKg = 16, 40
	_, err = s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrIneligibleAge)

	in = donorInput("Nobody", "C+")
	_, err = s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidBloodGroup)

	_, err = s.e.donors.Authenticate(s.ctx, donorInput("   ", domain.BloodGroupOPos))
	s.ErrorIs(err, domain.ErrDonorNameRequired)

	future := testEpoch.Add(time.Hour)
	in = donorInput("Future", domain.BloodGroupOPos)
	in.LastDonationAt = &future
	_, err = s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidLastDonation)

	// Boundary values are accepted and failed attempts stored nothing.
	in = donorInput("Young", domain.BloodGroupOPos)
	in.Age, in.WeightKg = eligibility.MinAge, eligibility.MinWeightKg
	status, err := s.e.donors.Authenticate(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(eligibility.MinAge, status.Donor.Age)
}

func (s *DonorServiceSuite) TestReloginResumesSession() {
	first := s.login("Asha", domain.BloodGroupOPos)

	in := donorInput("  ASHA ", domain.BloodGroupBNeg)
	again, err := s.e.donors.Authenticate(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(first.Donor.ID, again.Donor.ID)
	s.Equal(domain.BloodGroupOPos, again.Donor.BloodGroup)

	in.Credential = "wrong"
	_, err = s.e.donors.Authenticate(s.ctx, in)
	s.ErrorIs(err, domain.ErrInvalidCredential)
}

func (s *DonorServiceSuite) TestRecentDonationLocksAtLogin() {
	last := testEpoch.Add(-30 * 24 * time.Hour)
	in := donorInput("Ravi", domain.BloodGroupBPos)
	in.LastDonationAt = &last

	status, err := s.e.donors.Authenticate(s.ctx, in)
	s.Require().NoError(err)
	s.True(status.HardLocked)
	s.Equal(domain.AvailabilityHardLocked, status.State)
	s.Require().NotNil(status.RecoveryDeadline)
	s.True(status.RecoveryDeadline.Equal(last.Add(eligibility.RecoveryWindow)))
	s.Len(s.e.recorder.of(events.EventHardLockAdvisory, status.Donor.ID), 1)

	next, ok := s.e.donors.NextDeadline()
	s.Require().True(ok)
	s.Equal(scheduler.KindRecoveryEnd, next.Kind)
	s.True(next.Deadline.Equal(*status.RecoveryDeadline))

	_, err = s.e.donors.SetAvailability(s.ctx, status.Donor.ID, true)
	s.ErrorIs(err, domain.ErrHardLocked)
}

func (s *DonorServiceSuite) TestScheduledPausePromptsOnce() {
	id := s.online("Asha", domain.BloodGroupOPos)

	status, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 8)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityScheduledPause, status.State)
	s.True(status.Donor.IsAvailable)
	s.False(status.EffectivelyAvailable)

	s.e.clock.Advance(8*time.Hour - time.Second)
	s.Zero(s.e.donors.Tick(s.ctx))
	s.Empty(s.e.recorder.of(events.EventReactivationPrompt, id))

	s.e.clock.Advance(time.Second)
	s.Equal(1, s.e.donors.Tick(s.ctx))
	prompts := s.e.recorder.of(events.EventReactivationPrompt, id)
	s.Require().Len(prompts, 1)
	payload, ok := prompts[0].Payload.(events.ReactivationPromptPayload)
	s.Require().True(ok)
	s.True(payload.ScheduledFor.Equal(testEpoch.Add(8 * time.Hour)))
	s.Equal(domain.AvailabilityOnline, payload.State)

	s.e.clock.Advance(time.Second)
	s.Zero(s.e.donors.Tick(s.ctx))
	status, err = s.e.donors.Status(s.ctx, id)
	s.Require().NoError(err)
	s.Nil(status.Donor.ScheduledReactivationAt)
	s.Equal(domain.AvailabilityOnline, status.State)
	s.Len(s.e.recorder.of(events.EventReactivationPrompt, id), 1)
}

func (s *DonorServiceSuite) TestElapsedPauseAppliedOnRead() {
	id := s.online("Asha", domain.BloodGroupOPos)
	_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 1)
	s.Require().NoError(err)

	s.e.clock.Advance(2 * time.Hour)
	status, err := s.e.donors.Status(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityOnline, status.State)
	s.Len(s.e.recorder.of(events.EventReactivationPrompt, id), 1)

	s.Zero(s.e.donors.Tick(s.ctx))
	s.Len(s.e.recorder.of(events.EventReactivationPrompt, id), 1)
}

func (s *DonorServiceSuite) TestPauseOfPausedDonorEndsPaused() {
	id := s.login("Asha", domain.BloodGroupOPos).Donor.ID
	_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 4)
	s.Require().NoError(err)

	s.e.clock.Advance(4 * time.Hour)
	s.Equal(1, s.e.donors.Tick(s.ctx))
	status, err := s.e.donors.Status(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityPaused, status.State)
}

func (s *DonorServiceSuite) TestInvalidPauseDuration() {
	id := s.online("Asha", domain.BloodGroupOPos)
	for _, hours := range []int{0, 2, 3, 12, 48, -1} {
		_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, hours)
		s.ErrorIs(err, domain.ErrInvalidPauseDuration, "hours=%d", hours)
	}
	_, ok := s.e.donors.NextDeadline()
	s.False(ok)
}

func (s *DonorServiceSuite) TestManualToggleClearsSchedule() {
	id := s.online("Asha", domain.BloodGroupOPos)
	_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 24)
	s.Require().NoError(err)

	status, err := s.e.donors.SetAvailability(s.ctx, id, true)
	s.Require().NoError(err)
	s.Nil(status.Donor.ScheduledReactivationAt)
	s.Equal(domain.AvailabilityOnline, status.State)

	s.e.clock.Advance(25 * time.Hour)
	s.Zero(s.e.donors.Tick(s.ctx))
	s.Empty(s.e.recorder.of(events.EventReactivationPrompt, id))
}

func (s *DonorServiceSuite) TestClearSchedule() {
	id := s.online("Asha", domain.BloodGroupOPos)
	_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 1)
	s.Require().NoError(err)

	status, err := s.e.donors.ClearSchedule(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityOnline, status.State)
	_, ok := s.e.donors.NextDeadline()
	s.False(ok)
}

func (s *DonorServiceSuite) TestLogoutCancelsDeadlines() {
	id := s.online("Asha", domain.BloodGroupOPos)
	_, err := s.e.donors.ScheduleUnavailability(s.ctx, id, 8)
	s.Require().NoError(err)

	s.Require().NoError(s.e.donors.Logout(s.ctx, id))
	_, ok := s.e.donors.NextDeadline()
	s.False(ok)

	s.e.clock.Advance(9 * time.Hour)
	s.Zero(s.e.donors.Tick(s.ctx))
	s.Empty(s.e.recorder.of(events.EventReactivationPrompt, id))
	s.Len(s.e.recorder.of(events.EventDonorSessionClosed, id), 1)

	_, err = s.e.donors.Status(s.ctx, id)
	s.ErrorIs(err, domain.ErrDonorNotFound)
	s.ErrorIs(s.e.donors.Logout(s.ctx, id), domain.ErrDonorNotFound)
}

func (s *DonorServiceSuite) TestRecoveryEndReleasesLockOnce() {
	id := s.online("Asha", domain.BloodGroupOPos)
	status, err := s.e.donors.RecordDonation(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityHardLocked, status.State)
	s.Equal(1, status.Donor.DonationCount)
	s.Len(s.e.recorder.of(events.EventHardLockAdvisory, id), 1)

	s.e.clock.Advance(eligibility.RecoveryWindow - time.Second)
	s.Zero(s.e.donors.Tick(s.ctx))
	s.Empty(s.e.recorder.of(events.EventHardLockReleased, id))

	s.e.clock.Advance(time.Second)
	s.Equal(1, s.e.donors.Tick(s.ctx))
	released := s.e.recorder.of(events.EventHardLockReleased, id)
	s.Require().Len(released, 1)
	s.Equal(events.HardLockReleasedPayload{State: domain.AvailabilityOnline}, released[0].Payload)

	status, err = s.e.donors.Status(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.AvailabilityOnline, status.State)
	s.Len(s.e.recorder.of(events.EventHardLockReleased, id), 1)
	s.Len(s.e.recorder.of(events.EventHardLockAdvisory, id), 1)
}

func (s *DonorServiceSuite) TestSecondDonationLocksPermanently() {
	id := s.online("Asha", domain.BloodGroupOPos)
	_, err := s.e.donors.RecordDonation(s.ctx, id)
	s.Require().NoError(err)
	s.e.clock.Advance(eligibility.RecoveryWindow)
	s.e.donors.Tick(s.ctx)

	status, err := s.e.donors.RecordDonation(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(eligibility.LockDonationCount, status.Donor.DonationCount)

	s.e.clock.Advance(2 * eligibility.RecoveryWindow)
	s.e.donors.Tick(s.ctx)
	status, err = s.e.donors.Status(s.ctx, id)
	s.Require().NoError(err)
	s.True(status.HardLocked)
	s.Nil(status.RecoveryDeadline)
	s.Equal(domain.AvailabilityHardLocked, status.State)

	_, err = s.e.donors.SetAvailability(s.ctx, id, false)
	s.ErrorIs(err, domain.ErrHardLocked)
	_, err = s.e.donors.ScheduleUnavailability(s.ctx, id, 1)
	s.ErrorIs(err, domain.ErrHardLocked)
	s.Len(s.e.recorder.of(events.EventHardLockReleased, id), 1)
	s.Len(s.e.recorder.of(events.EventHardLockAdvisory, id), 2)
}

func (s *DonorServiceSuite) TestHardLockRejectionLeavesFlagUntouched() {
	id := s.login("Asha", domain.BloodGroupOPos).Donor.ID
	_, err := s.e.donors.RecordDonation(s.ctx, id)
	s.Require().NoError(err)

	status, err := s.e.donors.SetAvailability(s.ctx, id, true)
	s.ErrorIs(err, domain.ErrHardLocked)
	s.False(status.Donor.IsAvailable)
	s.Equal(domain.AvailabilityHardLocked, status.State)
}

func (s *DonorServiceSuite) TestChangeBloodGroup() {
	id := s.login("Asha", domain.BloodGroupOPos).Donor.ID
	status, err := s.e.donors.ChangeBloodGroup(s.ctx, id, domain.BloodGroupABNeg)
	s.Require().NoError(err)
	s.Equal(domain.BloodGroupABNeg, status.Donor.BloodGroup)

	_, err = s.e.donors.ChangeBloodGroup(s.ctx, id, domain.BloodGroup(strings.ToLower("ab-")))
	s.ErrorIs(err, domain.ErrInvalidBloodGroup)
}
