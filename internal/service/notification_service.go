package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/redlink/internal/config"
	"github.com/spec-kit/redlink/internal/events"
)

const defaultBannerCapacity = 20

// Banner is an in-app notification waiting to be shown to a donor.
type Banner struct {
	ID        string           `json:"id"`
	Kind      events.EventType `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	RequestID string           `json:"request_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	mu      sync.Mutex
	banners map[string][]Banner
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BannerCapacity <= 0 {
		cfg.BannerCapacity = defaultBannerCapacity
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		banners:    make(map[string][]Banner),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDonorAlerted, n.handleDonorAlerted)
	n.dispatcher.Subscribe(events.EventReactivationPrompt, n.handleReactivationPrompt)
	n.dispatcher.Subscribe(events.EventHardLockAdvisory, n.handleHardLockAdvisory)
	n.dispatcher.Subscribe(events.EventHardLockReleased, n.handleHardLockReleased)
	n.dispatcher.Subscribe(events.EventRequestCreated, n.handleRequestCreated)
	n.dispatcher.Subscribe(events.EventRequestResolved, n.handleRequestResolved)
	n.dispatcher.Subscribe(events.EventDonorSessionClosed, n.handleDonorSessionClosed)
}

// DrainBanners returns the donor's pending banners, oldest first, and clears them.
func (n *NotificationService) DrainBanners(donorID string) []Banner {
	n.mu.Lock()
	defer n.mu.Unlock()
	banners := n.banners[donorID]
	delete(n.banners, donorID)
	return banners
}

func (n *NotificationService) handleDonorAlerted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DonorAlertedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	req := payload.Request
	n.logger.Info("DonorAlerted",
		zap.String("donor_id", event.DonorID),
		zap.String("request_id", req.ID),
		zap.String("blood_group", string(req.BloodGroup)))

	n.sendPushNotificationStub(ctx, event,
		fmt.Sprintf("Emergency: %s Needed", req.BloodGroup),
		fmt.Sprintf("%s needs %d units urgently.", req.HospitalName, req.Quantity))
	n.pushBanner(event.DonorID, Banner{
		ID:        event.ID,
		Kind:      event.Type,
		Title:     "EMERGENCY ALERT",
		Message:   fmt.Sprintf("%s needs %s blood immediately.", req.HospitalName, req.BloodGroup),
		RequestID: req.ID,
		CreatedAt: event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleReactivationPrompt(ctx context.Context, event events.Event) error {
	n.logger.Info("ReactivationPrompt", zap.String("donor_id", event.DonorID), zap.Any("payload", event.Payload))
	n.pushBanner(event.DonorID, Banner{
		ID:        event.ID,
		Kind:      event.Type,
		Title:     "Pause ended",
		Message:   "Your scheduled pause is over. Confirm you are available to receive emergency alerts again.",
		CreatedAt: event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleHardLockAdvisory(ctx context.Context, event events.Event) error {
	n.logger.Info("HardLockAdvisory", zap.String("donor_id", event.DonorID), zap.Any("payload", event.Payload))
	message := "You have reached the donation limit for this period. Alerts are paused."
	if payload, ok := event.Payload.(events.HardLockAdvisoryPayload); ok && payload.RecoveryDeadline != nil {
		message = fmt.Sprintf("Thank you for donating. Alerts are paused until %s while you recover.",
			payload.RecoveryDeadline.Format("2006-01-02"))
	}
	n.pushBanner(event.DonorID, Banner{
		ID:        event.ID,
		Kind:      event.Type,
		Title:     "Availability locked",
		Message:   message,
		CreatedAt: event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleHardLockReleased(ctx context.Context, event events.Event) error {
	n.logger.Info("HardLockReleased", zap.String("donor_id", event.DonorID), zap.Any("payload", event.Payload))
	n.pushBanner(event.DonorID, Banner{
		ID:        event.ID,
		Kind:      event.Type,
		Title:     "Recovery complete",
		Message:   "You can manage your availability again.",
		CreatedAt: event.Timestamp,
	})
	return nil
}

func (n *NotificationService) handleRequestCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestCreated", zap.String("request_id", event.RequestID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRequestResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("RequestResolved",
		zap.String("request_id", event.RequestID),
		zap.String("donor_id", event.DonorID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDonorSessionClosed(_ context.Context, event events.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.banners, event.DonorID)
	return nil
}

// pushBanner appends to the donor's inbox, dropping the oldest banners beyond capacity.
func (n *NotificationService) pushBanner(donorID string, banner Banner) {
	if donorID == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	inbox := append(n.banners[donorID], banner)
	if over := len(inbox) - n.cfg.BannerCapacity; over > 0 {
		inbox = append([]Banner(nil), inbox[over:]...)
	}
	n.banners[donorID] = inbox
}

func (n *NotificationService) sendPushNotificationStub(ctx context.Context, event events.Event, title, body string) {
	if !n.cfg.PushEnabled {
		return
	}
	n.logger.Debug("sendPushNotificationStub",
		zap.String("donor_id", event.DonorID),
		zap.String("title", title),
		zap.String("body", body))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("request_id", event.RequestID),
		zap.String("event_type", string(event.Type)))
}
