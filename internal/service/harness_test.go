package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/redlink/internal/clock"
	"github.com/spec-kit/redlink/internal/config"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/events"
	"github.com/spec-kit/redlink/internal/observability"
	"github.com/spec-kit/redlink/internal/repository"
)

var testEpoch = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// of returns recorded events of kind, optionally restricted to one donor.
func (r *eventRecorder) of(kind events.EventType, donorID string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, event := range r.events {
		if event.Type != kind {
			continue
		}
		if donorID != "" && event.DonorID != donorID {
			continue
		}
		out = append(out, event)
	}
	return out
}

type engine struct {
	clock    *clock.Manual
	recorder *eventRecorder
	metrics  *observability.Metrics
	requests repository.RequestRepository
	donors   *DonorService
	matcher  *MatchingService
	service  *RequestService
	notifier *NotificationService
}

func newEngine(policy config.AlertPolicy) *engine {
	clk := clock.NewManual(testEpoch)
	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher(logger)
	metrics := observability.NewMetrics()
	requestRepo := repository.NewRequestRepository()
	donorRepo := repository.NewDonorRepository()

	recorder := &eventRecorder{}
	for _, kind := range []events.EventType{
		events.EventRequestCreated,
		events.EventRequestResolved,
		events.EventDonorAlerted,
		events.EventReactivationPrompt,
		events.EventHardLockAdvisory,
		events.EventHardLockReleased,
		events.EventDonorSessionClosed,
	} {
		dispatcher.Subscribe(kind, recorder.record)
	}

	matcher := NewMatchingService(MatchingDependencies{
		RequestRepo: requestRepo,
		DonorRepo:   donorRepo,
		Clock:       clk,
		Policy:      policy,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})
	donors := NewDonorService(DonorDependencies{
		DonorRepo:  donorRepo,
		Matcher:    matcher,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		BcryptCost: bcrypt.MinCost,
	})
	requests := NewRequestService(RequestDependencies{
		RequestRepo:     requestRepo,
		Donors:          donors,
		Matcher:         matcher,
		Clock:           clk,
		Dispatcher:      dispatcher,
		Logger:          logger,
		Metrics:         metrics,
		DefaultHospital: "City General Hospital",
	})
	notifier := NewNotificationService(dispatcher, logger, config.NotificationConfig{BannerCapacity: 3})
	notifier.RegisterHandlers()

	return &engine{
		clock:    clk,
		recorder: recorder,
		metrics:  metrics,
		requests: requestRepo,
		donors:   donors,
		matcher:  matcher,
		service:  requests,
		notifier: notifier,
	}
}

func donorInput(name string, group domain.BloodGroup) AuthenticateInput {
	return AuthenticateInput{
		Name:       name,
		BloodGroup: group,
		Age:        25,
		WeightKg:   70,
		Credential: "secret",
	}
}
