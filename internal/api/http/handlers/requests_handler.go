package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/redlink/internal/api/dto"
	"github.com/spec-kit/redlink/internal/domain"
	"github.com/spec-kit/redlink/internal/service"
	apperrors "github.com/spec-kit/redlink/pkg/util"
)

// RequestsHandler serves the hospital console and donor responses.
type RequestsHandler struct {
	service *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{service: requestService}
}

// Create handles POST /hospital/requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		return err
	}
	created, err := h.service.CreateRequest(c.UserContext(), service.CreateRequestInput{
		HospitalName: req.HospitalName,
		BloodGroup:   group,
		Quantity:     req.Quantity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRequestView(created)})
}

// List handles GET /hospital/requests, optionally filtered by ?blood_group=.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	var (
		reqs []domain.Request
		err  error
	)
	if raw := c.Query("blood_group"); raw != "" {
		group, parseErr := domain.ParseBloodGroup(raw)
		if parseErr != nil {
			return parseErr
		}
		reqs, err = h.service.RequestsMatching(c.UserContext(), group)
	} else {
		reqs, err = h.service.List(c.UserContext())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestViews(reqs)})
}

// Respond handles POST /requests/:id/respond.
func (h *RequestsHandler) Respond(c *fiber.Ctx) error {
	principal, err := donorPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	response := domain.RequestStatus(strings.ToUpper(strings.TrimSpace(req.Response)))
	updated, err := h.service.RespondToRequest(c.UserContext(), c.Params("id"), principal.DonorID, response)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRequestView(updated)})
}
