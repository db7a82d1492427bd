package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/internal/services"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CarpoolsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewCarpoolsHandler(db *gorm.DB, access *services.AccessService) *CarpoolsHandler {
	return &CarpoolsHandler{DB: db, Access: access}
}

type createCarpoolRequest struct {
	DepartureLocation        string  `json:"departureLocation"`
	DepartureTime            string  `json:"departureTime"`
	Price                    float64 `json:"price"`
	AvailableSeats           int     `json:"availableSeats"`
	MaxTimeDifferenceMinutes *int    `json:"maxTimeDifferenceMinutes"`
}

// Create requires the event's carpool feature and participancy; the actor
// becomes the driver.
func (h *CarpoolsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req createCarpoolRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.DepartureLocation = strings.TrimSpace(req.DepartureLocation)
	if req.DepartureLocation == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "departureLocation", Message: "departure location is required"})
	}
	departureTime, err := parseDate(req.DepartureTime)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "departureTime", Message: "invalid departure time"})
	}
	if req.Price < 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "price", Message: "price must not be negative"})
	}
	if req.AvailableSeats < 1 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "availableSeats", Message: "at least one seat is required"})
	}
	if req.MaxTimeDifferenceMinutes != nil && *req.MaxTimeDifferenceMinutes < 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "maxTimeDifferenceMinutes", Message: "must not be negative"})
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
	if !event.CarpoolEnabled {
		return utils.Error(c, fiber.StatusBadRequest, "carpool is not enabled for this event")
	}

	isParticipant, err := h.Access.IsParticipantOf(eventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isParticipant {
		return utils.Error(c, fiber.StatusForbidden, "only participants can offer a carpool")
	}

	carpool := models.Carpool{
		EventID:                  eventID,
		DriverID:                 currentUser.ID,
		DepartureLocation:        req.DepartureLocation,
		DepartureTime:            departureTime,
		Price:                    req.Price,
		AvailableSeats:           req.AvailableSeats,
		MaxTimeDifferenceMinutes: 30,
	}
	if req.MaxTimeDifferenceMinutes != nil {
		carpool.MaxTimeDifferenceMinutes = *req.MaxTimeDifferenceMinutes
	}
	if err := h.DB.Create(&carpool).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating carpool")
	}

	var populated models.Carpool
	if err := h.DB.Preload("Driver").Preload("Passengers").First(&populated, "id = ?", carpool.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading carpool")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

func (h *CarpoolsHandler) GetByEvent(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var carpools []models.Carpool
	if err := h.DB.
		Preload("Driver").
		Preload("Passengers").
		Where("event_id = ?", eventID).
		Order("departure_time").
		Find(&carpools).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing carpools")
	}

	return utils.JSON(c, fiber.StatusOK, carpools)
}

// Join runs three independent checks in order, each with its own message:
// seats left, actor is not the driver, actor has not already joined.
func (h *CarpoolsHandler) Join(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	carpoolID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid carpool id")
	}

	var carpool models.Carpool
	if err := h.DB.Preload("Passengers").First(&carpool, "id = ?", carpoolID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "carpool not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading carpool")
	}

	if len(carpool.Passengers) >= carpool.AvailableSeats {
		return utils.Error(c, fiber.StatusBadRequest, "no seats left")
	}
	if carpool.DriverID == currentUser.ID {
		return utils.Error(c, fiber.StatusBadRequest, "you are already the driver")
	}
	alreadyJoined, err := h.Access.IsCarpoolPassenger(carpoolID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if alreadyJoined {
		return utils.Error(c, fiber.StatusBadRequest, "you have already joined this carpool")
	}

	if err := h.DB.Model(&carpool).Association("Passengers").Append(currentUser); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed joining carpool")
	}

	var populated models.Carpool
	if err := h.DB.Preload("Driver").Preload("Passengers").First(&populated, "id = ?", carpoolID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading carpool")
	}

	return utils.JSON(c, fiber.StatusOK, populated)
}
