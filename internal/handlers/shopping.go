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

type ShoppingHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
}

func NewShoppingHandler(db *gorm.DB, access *services.AccessService) *ShoppingHandler {
	return &ShoppingHandler{DB: db, Access: access}
}

type addShoppingItemRequest struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	ArrivalTime string `json:"arrivalTime"`
}

// AddItem requires the event's shopping-list feature and participancy. The
// per-event item-name uniqueness is enforced by the store and mapped to a
// plain Bad Request, as the original did.
func (h *ShoppingHandler) AddItem(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req addShoppingItemRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "name", Message: "name is required"})
	}
	if req.Quantity < 1 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "quantity", Message: "quantity must be at least 1"})
	}
	arrivalTime, err := parseDate(req.ArrivalTime)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "arrivalTime", Message: "invalid arrival time"})
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
	if !event.ShoppingListEnabled {
		return utils.Error(c, fiber.StatusBadRequest, "shopping list is not enabled for this event")
	}

	isParticipant, err := h.Access.IsParticipantOf(eventID, currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking permissions")
	}
	if !isParticipant {
		return utils.Error(c, fiber.StatusForbidden, "only participants can add items")
	}

	item := models.ShoppingItem{
		EventID:     eventID,
		Name:        req.Name,
		Quantity:    req.Quantity,
		ArrivalTime: arrivalTime,
		BroughtByID: currentUser.ID,
	}
	if err := h.DB.Create(&item).Error; err != nil {
		if isDuplicateKey(err) {
			return utils.Error(c, fiber.StatusBadRequest, "this item already exists for this event")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating item")
	}

	var populated models.ShoppingItem
	if err := h.DB.Preload("BroughtBy").First(&populated, "id = ?", item.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading item")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

func (h *ShoppingHandler) GetByEvent(c *fiber.Ctx) error {
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

	var items []models.ShoppingItem
	if err := h.DB.
		Preload("BroughtBy").
		Where("event_id = ?", eventID).
		Order("created_at").
		Find(&items).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing items")
	}

	return utils.JSON(c, fiber.StatusOK, items)
}

// DeleteItem is restricted to the original contributor; there is no
// organizer override.
func (h *ShoppingHandler) DeleteItem(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	eventID, err := parseUUID(c.Params("eventId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}
	itemID, err := parseUUID(c.Params("itemId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid item id")
	}

	var item models.ShoppingItem
	if err := h.DB.First(&item, "id = ? AND event_id = ?", itemID, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "item not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading item")
	}

	if item.BroughtByID != currentUser.ID {
		logger.WarnWithUser(currentUser.ID.String(), "permission_denied", map[string]interface{}{
			"action":  "shopping_item_delete",
			"item_id": itemID.String(),
		})
		return utils.Error(c, fiber.StatusForbidden, "you can only delete your own items")
	}

	if err := h.DB.Delete(&models.ShoppingItem{}, "id = ?", itemID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting item")
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"message": "item deleted"})
}
