package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TicketsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewTicketsHandler(db *gorm.DB, access *services.AccessService) *TicketsHandler {
	return &TicketsHandler{DB: db, Access: access}
}

type createTicketTypeRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

// CreateTicketType checks existence, then visibility, then authorization,
// each with its own status code.
func (h *TicketsHandler) CreateTicketType(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req createTicketTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "name", Message: "name is required"})
	}
	if req.Amount < 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "amount", Message: "amount must not be negative"})
	}
	if req.Quantity < 1 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}
	if event.IsPrivate {
		return utils.Error(c, fiber.StatusBadRequest, "ticketing is only available for public events")
	}

	isOrganizer, err := h.Access.IsOrganizerOf(eventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isOrganizer {
		return utils.Error(c, fiber.StatusForbidden, "only organizers can create ticket types")
	}

	ticketType := models.TicketType{
		EventID:  eventID,
		Name:     req.Name,
		Amount:   req.Amount,
		Quantity: req.Quantity,
	}
	if err := h.DB.Create(&ticketType).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating ticket type")
	}

	return utils.JSON(c, fiber.StatusCreated, ticketType)
}

func (h *TicketsHandler) GetTicketTypes(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var types []models.TicketType
	if err := h.DB.Where("event_id = ?", eventID).Order("created_at").Find(&types).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing ticket types")
	}

	return utils.JSON(c, fiber.StatusOK, types)
}

type purchaseRequest struct {
	TicketTypeID string `json:"ticketTypeId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Address      string `json:"address"`
	BuyerEmail   string `json:"buyerEmail"`
}

// Purchase is capacity-gated before the insert and unique per
// (ticketType, buyerEmail). The capacity check and the sold-count increment
// are separate writes; concurrent purchases can oversell the last ticket.
func (h *TicketsHandler) Purchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	ticketTypeID, err := parseUUID(req.TicketTypeID)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "ticketTypeId", Message: "invalid ticket type id"})
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Address = strings.TrimSpace(req.Address)
	req.BuyerEmail = strings.ToLower(strings.TrimSpace(req.BuyerEmail))
	if req.FirstName == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "firstName", Message: "firstName is required"})
	}
	if req.LastName == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "lastName", Message: "lastName is required"})
	}
	if req.Address == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "address", Message: "address is required"})
	}
	if !isValidEmail(req.BuyerEmail) {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "buyerEmail", Message: "invalid email"})
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	var ticketType models.TicketType
	if err := h.DB.First(&ticketType, "id = ?", ticketTypeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "ticket type not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading ticket type")
	}

	if ticketType.SoldCount >= ticketType.Quantity {
		return utils.Error(c, fiber.StatusBadRequest, "no tickets left")
	}

	var existing int64
	if err := h.DB.Model(&models.Ticket{}).
		Where("ticket_type_id = ? AND buyer_email = ?", ticketTypeID, req.BuyerEmail).
		Count(&existing).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing ticket")
	}
	if existing > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "only one ticket per type per buyer")
	}

	ticket := models.Ticket{
		TicketTypeID: ticketTypeID,
		EventID:      ticketType.EventID,
		BuyerEmail:   req.BuyerEmail,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Address:      req.Address,
	}
	if err := h.DB.Create(&ticket).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusBadRequest, "only one ticket per type per buyer")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating ticket")
	}

	if err := h.DB.Model(&models.TicketType{}).
		Where("id = ?", ticketTypeID).
		Update("sold_count", gorm.Expr("sold_count + 1")).Error; err != nil {
		logger.Error("ticket_sold_count_increment_failed", err, map[string]interface{}{
			"ticket_type_id": ticketTypeID.String(),
			"ticket_id":      ticket.ID.String(),
		})
	}

	return utils.JSON(c, fiber.StatusCreated, ticket)
}

// GetByEvent is organizer-only.
func (h *TicketsHandler) GetByEvent(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}

	isOrganizer, err := h.Access.IsOrganizerOf(eventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isOrganizer {
		logger.WarnWithUser(currentUser.ID.String(), "permission_denied", map[string]interface{}{
			"action":   "ticket_listing",
			"event_id": eventID.String(),
		})
		return utils.Error(c, fiber.StatusForbidden, "organizer access required")
	}

	var tickets []models.Ticket
	if err := h.DB.Where("event_id = ?", eventID).Order("created_at").Find(&tickets).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing tickets")
	}

	return utils.JSON(c, fiber.StatusOK, tickets)
}
