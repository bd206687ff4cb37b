package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redlink/internal/api/dto"
	"github.com/spec-kit/redlink/internal/auth"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/service"
	apperrors "github.com/spec-kit/redlink/pkg/util"
)

// DonorsHandler exposes donor session endpoints.
type DonorsHandler struct {
	donors        *service.DonorService
	matcher       *service.MatchingService
	notifications *service.NotificationService
	tokens        *auth.TokenManager
}

// NewDonorsHandler constructs handler.
func NewDonorsHandler(donors *service.DonorService, matcher *service.MatchingService, notifications *service.NotificationService, tokens *auth.TokenManager) *DonorsHandler {
	return &DonorsHandler{donors: donors, matcher: matcher, notifications: notifications, tokens: tokens}
}

// Login handles POST /donors/login.
func (h *DonorsHandler) Login(c *fiber.Ctx) error {
	var req dto.DonorLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	input := service.AuthenticateInput{
		Name:       req.Name,
		BloodGroup: domain.BloodGroup(strings.ToUpper(strings.TrimSpace(req.BloodGroup))),
		Age:        req.Age,
		WeightKg:   req.WeightKg,
		Credential: req.Credential,
	}
	if req.LastDonationDate != "" {
		last, err := parseDate(req.LastDonationDate)
		if err != nil {
			return apperrors.NewValidationError("last_donation_date must be RFC 3339 or YYYY-MM-DD", nil)
		}
		input.LastDonationAt = &last
	}

	status, err := h.donors.Authenticate(c.UserContext(), input)
	if err != nil {
		return err
	}
	token, exp, err := h.tokens.GenerateToken(status.Donor.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"donor": donorView(status),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /donors/logout.
func (h *DonorsHandler) Logout(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.donors.Logout(c.UserContext(), principal.DonorID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /donors/me.
func (h *DonorsHandler) Me(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	status, err := h.donors.Status(c.UserContext(), principal.DonorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donorView(status)})
}

// SetAvailability handles PUT /donors/me/availability.
func (h *DonorsHandler) SetAvailability(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil || req.Available == nil {
		return apperrors.NewValidationError("available required", nil)
	}
	status, err := h.donors.SetAvailability(c.UserContext(), principal.DonorID, *req.Available)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donorView(status)})
}

// Schedule handles POST /donors/me/schedule.
func (h *DonorsHandler) Schedule(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := h.donors.ScheduleUnavailability(c.UserContext(), principal.DonorID, req.Hours)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": donorView(status)})
}

// ClearSchedule handles DELETE /donors/me/schedule.
func (h *DonorsHandler) ClearSchedule(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	status, err := h.donors.ClearSchedule(c.UserContext(), principal.DonorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donorView(status)})
}

// ChangeBloodGroup handles PUT /donors/me/blood-group.
func (h *DonorsHandler) ChangeBloodGroup(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BloodGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return err
	}
	status, err := h.donors.ChangeBloodGroup(c.UserContext(), principal.DonorID, group)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": donorView(status)})
}

// Feed handles GET /donors/me/feed: pending requests of the donor's blood
// group, newest first, listed whatever the donor's availability.
func (h *DonorsHandler) Feed(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	status, err := h.donors.Status(c.UserContext(), principal.DonorID)
	if err != nil {
		return err
	}
	pending, err := h.matcher.RelevantPending(c.UserContext(), status.Donor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FeedResponse{
		Donor:    donorView(status),
		Requests: dto.NewRequestViews(pending),
	}})
}

// Notifications handles GET /donors/me/notifications and drains the inbox.
func (h *DonorsHandler) Notifications(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	// Reading the status first applies elapsed deadlines, so their banners are included.
	if _, err := h.donors.Status(c.UserContext(), principal.DonorID); err != nil {
		return err
	}
	banners := h.notifications.DrainBanners(principal.DonorID)
	if banners == nil {
		banners = []service.Banner{}
	}
	return c.JSON(fiber.Map{"data": banners})
}

func donorPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.DonorID == "" {
		return nil, apperrors.NewUnauthorized("donor required")
	}
	return principal, nil
}

func donorView(status service.DonorStatus) dto.DonorView {
	d := status.Donor
	return dto.DonorView{
		ID:                      d.ID,
		Name:                    d.Name,
		BloodGroup:              d.BloodGroup,
		Age:                     d.Age,
		WeightKg:                d.WeightKg,
		LastDonationAt:          d.LastDonationAt,
		DonationCount:           d.DonationCount,
		IsAvailable:             d.IsAvailable,
		ScheduledReactivationAt: d.ScheduledReactivationAt,
		State:                   status.State,
		EffectivelyAvailable:    status.EffectivelyAvailable,
		HardLocked:              status.HardLocked,
		RecoveryDeadline:        status.RecoveryDeadline,
		EvaluatedAt:             status.EvaluatedAt,
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
