package handlers

import (
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/logger"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventsHandler struct {
	DB *gorm.DB
}

func NewEventsHandler(db *gorm.DB) *EventsHandler {
	return &EventsHandler{DB: db}
}

type createEventRequest struct {
	Name                string   `json:"name"`
	Description         *string  `json:"description"`
	StartDate           string   `json:"startDate"`
	EndDate             string   `json:"endDate"`
	Location            string   `json:"location"`
	CoverPhoto          *string  `json:"coverPhoto"`
	IsPrivate           *bool    `json:"isPrivate"`
	Organizers          []string `json:"organizers"`
	Participants        []string `json:"participants"`
	GroupID             *string  `json:"groupId"`
	ShoppingListEnabled *bool    `json:"shoppingListEnabled"`
	CarpoolEnabled      *bool    `json:"carpoolEnabled"`
}

// Create persists the event, then cascades one discussion thread and one
// photo album. The cascades are best-effort: a failed cascade write is
// logged and the event still exists.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)

	var req createEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "name", Message: "name is required"})
	}
	if req.Location == "" {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "location", Message: "location is required"})
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "startDate", Message: "invalid start date"})
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "endDate", Message: "invalid end date"})
	}
	if len(req.Organizers) == 0 {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "organizers", Message: "at least one organizer is required"})
	}
	organizerIDs, err := parseUUIDList(req.Organizers)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "organizers", Message: "invalid organizer id"})
	}
	participantIDs, err := parseUUIDList(req.Participants)
	if err != nil {
		fieldErrors = append(fieldErrors, utils.FieldError{Field: "participants", Message: "invalid participant id"})
	}
	var groupID *uuid.UUID
	if req.GroupID != nil {
		parsed, err := parseUUID(*req.GroupID)
		if err != nil {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "groupId", Message: "invalid group id"})
		} else {
			groupID = &parsed
		}
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	organizers, err := findUsersByID(h.DB, organizerIDs)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "organizer user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading organizers")
	}
	var participants []models.User
	if len(participantIDs) > 0 {
		participants, err = findUsersByID(h.DB, participantIDs)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "participant user not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading participants")
		}
	}

	event := models.Event{
		Name:         req.Name,
		StartDate:    startDate,
		EndDate:      endDate,
		Location:     req.Location,
		CoverPhoto:   req.CoverPhoto,
		GroupID:      groupID,
		Organizers:   organizers,
		Participants: participants,
	}
	if req.Description != nil {
		event.Description = strings.TrimSpace(*req.Description)
	}
	event.IsPrivate = req.IsPrivate != nil && *req.IsPrivate
	event.ShoppingListEnabled = req.ShoppingListEnabled != nil && *req.ShoppingListEnabled
	event.CarpoolEnabled = req.CarpoolEnabled != nil && *req.CarpoolEnabled

	if err := h.DB.Create(&event).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating event")
	}

	thread := models.DiscussionThread{EventID: &event.ID}
	if err := h.DB.Create(&thread).Error; err != nil {
		logger.Error("event_thread_cascade_failed", err, map[string]interface{}{
			"event_id": event.ID.String(),
		})
	}
	album := models.PhotoAlbum{EventID: event.ID, Name: models.DefaultAlbumName}
	if err := h.DB.Create(&album).Error; err != nil {
		logger.Error("event_album_cascade_failed", err, map[string]interface{}{
			"event_id": event.ID.String(),
		})
	}

	if currentUser != nil {
		logger.InfoWithUser(currentUser.ID.String(), "event_created", map[string]interface{}{
			"event_id":   event.ID.String(),
			"event_name": event.Name,
		})
	}

	return utils.JSON(c, fiber.StatusCreated, event)
}

var eventFilterColumns = map[string]string{
	"name":     "name",
	"location": "location",
	"groupId":  "group_id",
}

func (h *EventsHandler) List(c *fiber.Ctx) error {
	query := applyQueryFilters(h.DB.Model(&models.Event{}), c.Queries(), eventFilterColumns)

	var events []models.Event
	if err := query.
		Preload("Organizers").
		Preload("Participants").
		Order("start_date").
		Find(&events).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing events")
	}

	return utils.JSON(c, fiber.StatusOK, events)
}

func (h *EventsHandler) Get(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var event models.Event
	if err := h.DB.
		Preload("Organizers").
		Preload("Participants").
		First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}

	return utils.JSON(c, fiber.StatusOK, event)
}

type updateEventRequest struct {
	Name                *string `json:"name"`
	Description         *string `json:"description"`
	StartDate           *string `json:"startDate"`
	EndDate             *string `json:"endDate"`
	Location            *string `json:"location"`
	CoverPhoto          *string `json:"coverPhoto"`
	IsPrivate           *bool   `json:"isPrivate"`
	ShoppingListEnabled *bool   `json:"shoppingListEnabled"`
	CarpoolEnabled      *bool   `json:"carpoolEnabled"`
}

// Update is whitelist-bound: organizers and participants cannot be changed
// through this path.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req updateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.StartDate != nil {
		parsed, err := parseDate(*req.StartDate)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid start date")
		}
		updates["start_date"] = parsed
	}
	if req.EndDate != nil {
		parsed, err := parseDate(*req.EndDate)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid end date")
		}
		updates["end_date"] = parsed
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			return utils.Error(c, fiber.StatusBadRequest, "location cannot be empty")
		}
		updates["location"] = location
	}
	if req.CoverPhoto != nil {
		updates["cover_photo"] = *req.CoverPhoto
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}
	if req.ShoppingListEnabled != nil {
		updates["shopping_list_enabled"] = *req.ShoppingListEnabled
	}
	if req.CarpoolEnabled != nil {
		updates["carpool_enabled"] = *req.CarpoolEnabled
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	result := h.DB.Model(&models.Event{}).Where("id = ?", eventID).Updates(updates)
	if result.Error != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating event")
	}
	if result.RowsAffected == 0 {
		return utils.Error(c, fiber.StatusNotFound, "event not found")
	}

	var event models.Event
	if err := h.DB.Preload("Organizers").Preload("Participants").First(&event, "id = ?", eventID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated event")
	}

	return utils.JSON(c, fiber.StatusOK, event)
}

type addParticipantRequest struct {
	UserID string `json:"userId"`
}

// AddParticipant has set semantics: re-adding a participant is a no-op that
// still succeeds.
func (h *EventsHandler) AddParticipant(c *fiber.Ctx) error {
	eventID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
	}

	var req addParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	userID, err := parseUUID(req.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	var event models.Event
	if err := h.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "event not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading event")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	if err := h.DB.Model(&event).Association("Participants").Append(&user); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed adding participant")
	}

	var updated models.Event
	if err := h.DB.Preload("Organizers").Preload("Participants").First(&updated, "id = ?", eventID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated event")
	}

	return utils.JSON(c, fiber.StatusOK, updated)
}
