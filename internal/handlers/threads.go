package handlers

import (
	"errors"
	"strings"

	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/models"
	"github.com/gatherly/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThreadsHandler struct {
	DB *gorm.DB
}

func NewThreadsHandler(db *gorm.DB) *ThreadsHandler {
	return &ThreadsHandler{DB: db}
}

type createThreadRequest struct {
	GroupID *string `json:"groupId"`
	EventID *string `json:"eventId"`
}

// Create enforces the group-xor-event constraint twice: here at the request
// boundary, and again in the model's BeforeSave hook.
func (h *ThreadsHandler) Create(c *fiber.Ctx) error {
	var req createThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var fieldErrors []utils.FieldError
	var groupID, eventID *uuid.UUID
	if req.GroupID != nil && *req.GroupID != "" {
		parsed, err := parseUUID(*req.GroupID)
		if err != nil {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "groupId", Message: "invalid group id"})
		} else {
			groupID = &parsed
		}
	}
	if req.EventID != nil && *req.EventID != "" {
		parsed, err := parseUUID(*req.EventID)
		if err != nil {
			fieldErrors = append(fieldErrors, utils.FieldError{Field: "eventId", Message: "invalid event id"})
		} else {
			eventID = &parsed
		}
	}
	if (groupID == nil) == (eventID == nil) {
		fieldErrors = append(fieldErrors, utils.FieldError{
			Field:   "groupId",
			Message: "a thread must reference a group or an event, not both",
		})
	}
	if len(fieldErrors) > 0 {
		return utils.ValidationError(c, fieldErrors)
	}

	thread := models.DiscussionThread{GroupID: groupID, EventID: eventID}
	if err := h.DB.Create(&thread).Error; err != nil {
		if errors.Is(err, models.ErrThreadTarget) {
			return utils.Error(c, fiber.StatusBadRequest, models.ErrThreadTarget.Error())
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating thread")
	}

	return utils.JSON(c, fiber.StatusCreated, thread)
}

// GetByGroupOrEvent requires exactly one of the groupId/eventId query keys.
func (h *ThreadsHandler) GetByGroupOrEvent(c *fiber.Ctx) error {
	groupParam := strings.TrimSpace(c.Query("groupId"))
	eventParam := strings.TrimSpace(c.Query("eventId"))

	if groupParam == "" && eventParam == "" {
		return utils.Error(c, fiber.StatusBadRequest, "groupId or eventId required")
	}
	if groupParam != "" && eventParam != "" {
		return utils.Error(c, fiber.StatusBadRequest, "only one of groupId or eventId is allowed")
	}

	query := h.DB
	if groupParam != "" {
		groupID, err := parseUUID(groupParam)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
		}
		query = query.Where("group_id = ?", groupID)
	} else {
		eventID, err := parseUUID(eventParam)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid event id")
		}
		query = query.Where("event_id = ?", eventID)
	}

	var thread models.DiscussionThread
	if err := preloadThreadMessages(query).First(&thread).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "thread not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading thread")
	}

	return utils.JSON(c, fiber.StatusOK, thread)
}

func (h *ThreadsHandler) Get(c *fiber.Ctx) error {
	threadID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid thread id")
	}

	var thread models.DiscussionThread
	if err := preloadThreadMessages(h.DB).First(&thread, "id = ?", threadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "thread not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading thread")
	}

	return utils.JSON(c, fiber.StatusOK, thread)
}

type createMessageRequest struct {
	Content string `json:"content"`
}

// AddMessage creates the message row; the thread's flat list is derived from
// the message's thread reference, so no second linking write exists.
func (h *ThreadsHandler) AddMessage(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	threadID, err := parseUUID(c.Params("threadId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid thread id")
	}

	var req createMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return utils.ValidationError(c, []utils.FieldError{{Field: "content", Message: "content is required"}})
	}

	var thread models.DiscussionThread
	if err := h.DB.First(&thread, "id = ?", threadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "thread not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading thread")
	}

	message := models.Message{
		Content:  req.Content,
		AuthorID: currentUser.ID,
		ThreadID: threadID,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating message")
	}

	var populated models.Message
	if err := h.DB.Preload("Author").Preload("Replies").First(&populated, "id = ?", message.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading message")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

// AddReply links the new message both under its parent and into the thread's
// flat message list. The double linkage keeps thread rendering simple and is
// intentional.
func (h *ThreadsHandler) AddReply(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	threadID, err := parseUUID(c.Params("threadId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid thread id")
	}
	parentID, err := parseUUID(c.Params("parentId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parent message id")
	}

	var req createMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return utils.ValidationError(c, []utils.FieldError{{Field: "content", Message: "content is required"}})
	}

	var parent models.Message
	if err := h.DB.First(&parent, "id = ? AND thread_id = ?", parentID, threadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "parent message not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading parent message")
	}

	message := models.Message{
		Content:         req.Content,
		AuthorID:        currentUser.ID,
		ThreadID:        threadID,
		ParentMessageID: &parentID,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating reply")
	}

	var populated models.Message
	if err := h.DB.Preload("Author").Preload("Replies").First(&populated, "id = ?", message.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading reply")
	}

	return utils.JSON(c, fiber.StatusCreated, populated)
}

func preloadThreadMessages(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at")
		}).
		Preload("Messages.Author").
		Preload("Messages.Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at")
		}).
		Preload("Messages.Replies.Author")
}
